package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ordersvc/api/health"
	"ordersvc/api/item"
	"ordersvc/api/middleware"
	"ordersvc/api/order"
	catalogapp "ordersvc/application/catalog"
	orderapp "ordersvc/application/order"
	"ordersvc/config"
	"ordersvc/domain/catalog"
	"ordersvc/infrastructure/persistence/mocks"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Name: "ordersvc", Version: "test", Env: "test"},
		CORS:    config.CORSConfig{AllowOrigins: []string{"http://localhost:3000"}, AllowMethods: []string{"GET", "POST"}},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func newEngine(t *testing.T, cfg *config.Config, checks map[string]health.Checker) *gin.Engine {
	t.Helper()
	items := mocks.NewMockItemRepository()
	orders := mocks.NewMockOrderRepository()
	factory := mocks.NewMockUnitOfWorkFactory()

	router := NewRouter(cfg,
		health.NewController(cfg, checks),
		order.NewController(orderapp.NewApplicationService(orders, catalog.RepositoryLookup{Repo: items}, factory)),
		item.NewController(catalogapp.NewApplicationService(items, factory)),
	)
	router.SetupRoutes()
	return router.GetEngine()
}

type caller struct {
	userID string
	roles  string
}

var (
	anonymous = caller{}
	alice     = caller{userID: "alice"}
	bob       = caller{userID: "bob"}
	admin     = caller{userID: "root", roles: "admin"}
)

func do(t *testing.T, engine *gin.Engine, who caller, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if who.userID != "" {
		req.Header.Set(middleware.UserIDHeader, who.userID)
	}
	if who.roles != "" {
		req.Header.Set(middleware.UserRolesHeader, who.roles)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func data(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	d, ok := decode(t, rec)["data"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	return d
}

func createItem(t *testing.T, engine *gin.Engine, name, price string) string {
	t.Helper()
	rec := do(t, engine, admin, http.MethodPost, "/api/v1/items", map[string]string{"name": name, "price": price})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return data(t, rec)["id"].(string)
}

func TestHealthEndpoints(t *testing.T) {
	engine := newEngine(t, testConfig(), nil)

	rec := do(t, engine, anonymous, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])

	rec = do(t, engine, anonymous, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, engine, anonymous, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthReportsFailingDependency(t *testing.T) {
	engine := newEngine(t, testConfig(), map[string]health.Checker{
		"database": func(context.Context) error { return errors.New("connection refused") },
		"redis":    func(context.Context) error { return nil },
	})

	rec := do(t, engine, anonymous, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	checks := decode(t, rec)["checks"].(map[string]any)
	assert.Equal(t, "unhealthy", checks["database"].(map[string]any)["status"])
	assert.Equal(t, "healthy", checks["redis"].(map[string]any)["status"])

	rec = do(t, engine, anonymous, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, []any{"database"}, decode(t, rec)["failing"])
}

func TestOrderLifecycle(t *testing.T) {
	engine := newEngine(t, testConfig(), nil)
	pen := createItem(t, engine, "Pen", "10.00")
	book := createItem(t, engine, "Book", "20.00")

	rec := do(t, engine, alice, http.MethodPost, "/api/v1/orders", map[string]any{
		"items": []map[string]any{{"item_id": pen, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := data(t, rec)
	orderID := created["id"].(string)
	assert.Equal(t, "alice", created["user_id"])
	assert.Equal(t, "PENDING", created["status"])
	assert.Equal(t, "20.00", created["total_price"])

	rec = do(t, engine, bob, http.MethodGet, "/api/v1/orders/"+orderID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decode(t, rec)["error"])

	rec = do(t, engine, alice, http.MethodPost, "/api/v1/orders/"+orderID+"/items", map[string]any{"item_id": book, "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "40.00", data(t, rec)["total_price"])

	rec = do(t, engine, alice, http.MethodDelete, "/api/v1/orders/"+orderID+"/items/"+pen+"?quantity=1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "30.00", data(t, rec)["total_price"])

	rec = do(t, engine, alice, http.MethodDelete, "/api/v1/orders/"+orderID+"/items/"+pen+"?quantity=5", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "QUANTITY_EXCEEDED", decode(t, rec)["error"])

	rec = do(t, engine, alice, http.MethodGet, "/api/v1/orders/user/alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["data"], 1)

	rec = do(t, engine, admin, http.MethodPut, "/api/v1/orders/"+orderID, map[string]any{"status": "DELIVERED"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_ORDER_STATE", decode(t, rec)["error"])

	rec = do(t, engine, admin, http.MethodPut, "/api/v1/orders/"+orderID, map[string]any{"status": "CONFIRMED"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "CONFIRMED", data(t, rec)["status"])

	rec = do(t, engine, alice, http.MethodDelete, "/api/v1/orders/"+orderID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, engine, admin, http.MethodDelete, "/api/v1/orders/"+orderID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, engine, alice, http.MethodGet, "/api/v1/orders/"+orderID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ORDER_NOT_FOUND", decode(t, rec)["error"])
}

func TestSearchOrders(t *testing.T) {
	engine := newEngine(t, testConfig(), nil)
	pen := createItem(t, engine, "Pen", "10.00")
	for _, who := range []caller{alice, bob} {
		rec := do(t, engine, who, http.MethodPost, "/api/v1/orders", map[string]any{
			"items": []map[string]any{{"item_id": pen, "quantity": 1}},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := do(t, engine, alice, http.MethodGet, "/api/v1/orders", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, engine, admin, http.MethodGet, "/api/v1/orders?status=pending&size=1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Len(t, body["data"], 1)
	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 2, pagination["total_items"])
	assert.EqualValues(t, 2, pagination["total_pages"])

	future := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	rec = do(t, engine, admin, http.MethodGet, "/api/v1/orders?created_after="+future, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["data"])

	rec = do(t, engine, admin, http.MethodGet, "/api/v1/orders?created_before=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, engine, admin, http.MethodGet, "/api/v1/orders?status=SHIPPED", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, rec)["error"])
}

func TestCreateOrderErrors(t *testing.T) {
	engine := newEngine(t, testConfig(), nil)

	rec := do(t, engine, anonymous, http.MethodPost, "/api/v1/orders", map[string]any{
		"items": []map[string]any{{"item_id": "x", "quantity": 1}},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, engine, alice, http.MethodPost, "/api/v1/orders", `{"items": [`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, engine, alice, http.MethodPost, "/api/v1/orders", map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, engine, alice, http.MethodPost, "/api/v1/orders", map[string]any{
		"items": []map[string]any{{"item_id": "missing", "quantity": 1}},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ITEM_NOT_FOUND", decode(t, rec)["error"])
}

func TestItemEndpoints(t *testing.T) {
	engine := newEngine(t, testConfig(), nil)

	rec := do(t, engine, alice, http.MethodPost, "/api/v1/items", map[string]string{"name": "Pen", "price": "1.00"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	id := createItem(t, engine, "Pen", "1.00")
	createItem(t, engine, "Apple", "0.50")

	rec = do(t, engine, anonymous, http.MethodGet, "/api/v1/items", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode(t, rec)["data"].([]any)
	require.Len(t, listed, 2)
	assert.Equal(t, "Apple", listed[0].(map[string]any)["name"])

	rec = do(t, engine, admin, http.MethodPut, "/api/v1/items/"+id, map[string]string{"price": "1.50"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "1.50", data(t, rec)["price"])

	rec = do(t, engine, admin, http.MethodPut, "/api/v1/items/"+id, map[string]string{"price": "-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, engine, admin, http.MethodDelete, "/api/v1/items/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, engine, anonymous, http.MethodGet, "/api/v1/items/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBearerAuthentication(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.AuthConfig{Enabled: true, JWTSecret: "s3cret", Issuer: "ordersvc-test"}
	engine := newEngine(t, cfg, nil)

	rec := do(t, engine, alice, http.MethodGet, "/api/v1/orders/user/alice", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "identity headers are ignored when tokens are required")

	get := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/user/alice", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		return rec
	}

	token, err := middleware.SignToken(&cfg.Auth, "alice", []string{"USER"}, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(token).Code)

	rec = get("not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decode(t, rec)["error"])

	expired, err := middleware.SignToken(&cfg.Auth, "alice", nil, -time.Minute)
	require.NoError(t, err)
	rec = get(expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token expired", decode(t, rec)["message"])

	foreign := cfg.Auth
	foreign.JWTSecret = "other"
	forged, err := middleware.SignToken(&foreign, "root", []string{"ADMIN"}, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(forged).Code)
}

func TestRequestIDAndMetrics(t *testing.T) {
	engine := newEngine(t, testConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/missing", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "req-42", decode(t, rec)["request_id"])

	rec = do(t, engine, anonymous, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ordersvc_http_requests_total{method="GET",route="/api/v1/items/:id",status="404"}`)
}
