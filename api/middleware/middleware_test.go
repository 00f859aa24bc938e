package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"ordersvc/api/ctxutil"
	"ordersvc/api/response"
	"ordersvc/config"
	"ordersvc/infrastructure/persistence"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestRequestIDReachesRequestContext(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestIDMiddleware())
	var fromGin, fromCtx string
	engine.GET("/", func(c *gin.Context) {
		fromGin = response.GetRequestID(c)
		fromCtx = persistence.RequestIDFromContext(c.Request.Context())
	})

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, fromGin)
	assert.Equal(t, generated, fromCtx)
}

func TestRecoveryAnswers500(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestIDMiddleware(), RecoveryMiddleware())
	engine.GET("/", func(c *gin.Context) { panic("boom") })

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

func TestCORS(t *testing.T) {
	engine := gin.New()
	engine.Use(CORSMiddleware(&config.CORSConfig{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           600,
	}))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := serve(engine, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = serve(engine, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitPerClient(t *testing.T) {
	engine := gin.New()
	engine.Use(RateLimitMiddleware(&config.RateLimitConfig{Enabled: true, Rate: 0.001, Burst: 1}))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, http.StatusOK, serve(engine, first).Code)

	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.RemoteAddr = "10.0.0.1:1235"
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, second).Code)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	assert.Equal(t, http.StatusOK, serve(engine, other).Code)
}

func TestHeaderIdentityWhenAuthDisabled(t *testing.T) {
	engine := gin.New()
	engine.Use(AuthMiddleware(&config.AuthConfig{}))
	var roles []string
	var userID string
	engine.GET("/", func(c *gin.Context) {
		actor := ctxutil.Actor(c)
		userID, roles = actor.UserID, actor.Roles
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserIDHeader, "alice")
	req.Header.Set(UserRolesHeader, "user, admin")
	serve(engine, req)
	assert.Equal(t, "alice", userID)
	assert.Equal(t, []string{"USER", "ADMIN"}, roles)
}

func TestAuthRejectsNonBearerScheme(t *testing.T) {
	engine := gin.New()
	engine.Use(AuthMiddleware(&config.AuthConfig{Enabled: true, JWTSecret: "s"}))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, serve(engine, req).Code)
}
