package catalog

import (
	"context"
	"errors"
	"testing"

	"ordersvc/domain/catalog"
	"ordersvc/domain/identity"
	"ordersvc/domain/shared"
	"ordersvc/infrastructure/persistence/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin    = identity.Actor{UserID: "root", Roles: []string{identity.RoleAdmin}}
	customer = identity.Actor{UserID: "alice"}
)

func newService() (*ApplicationService, *mocks.MockUnitOfWorkFactory) {
	factory := mocks.NewMockUnitOfWorkFactory()
	return NewApplicationService(mocks.NewMockItemRepository(), factory), factory
}

func TestCreateItem(t *testing.T) {
	svc, factory := newService()

	resp, err := svc.CreateItem(context.Background(), admin, CreateItemRequest{Name: "  Kettle ", Price: shared.MustParseMoney("29.90")})
	require.NoError(t, err)
	assert.Equal(t, "Kettle", resp.Name)
	assert.Equal(t, "29.90", resp.Price.String())
	assert.Equal(t, []string{"item.created"}, factory.Outbox.EventNames())

	_, err = svc.CreateItem(context.Background(), customer, CreateItemRequest{Name: "Kettle"})
	assert.True(t, errors.Is(err, shared.ErrForbidden))

	_, err = svc.CreateItem(context.Background(), admin, CreateItemRequest{Name: "Bad", Price: shared.MustParseMoney("-1.00")})
	assert.True(t, errors.Is(err, catalog.ErrInvalidItem))
}

func TestUpdateAndDeleteItem(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	created, err := svc.CreateItem(ctx, admin, CreateItemRequest{Name: "Kettle", Price: shared.MustParseMoney("29.90")})
	require.NoError(t, err)

	price := shared.MustParseMoney("31.00")
	updated, err := svc.UpdateItem(ctx, admin, created.ID, UpdateItemRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Kettle", updated.Name)
	assert.Equal(t, "31.00", updated.Price.String())
	assert.Equal(t, 2, updated.Version)

	_, err = svc.UpdateItem(ctx, customer, created.ID, UpdateItemRequest{Price: &price})
	assert.True(t, errors.Is(err, shared.ErrForbidden))

	require.NoError(t, svc.DeleteItem(ctx, admin, created.ID))

	_, err = svc.GetItem(ctx, created.ID)
	assert.True(t, errors.Is(err, catalog.ErrItemNotFound))
	err = svc.DeleteItem(ctx, admin, created.ID)
	assert.True(t, errors.Is(err, catalog.ErrItemNotFound))
}

func TestListItems(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	for _, name := range []string{"Mug", "Plate", "Bowl"} {
		_, err := svc.CreateItem(ctx, admin, CreateItemRequest{Name: name, Price: shared.MustParseMoney("3.00")})
		require.NoError(t, err)
	}

	page, err := svc.ListItems(ctx, shared.PageRequest{Page: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Bowl", page.Items[0].Name)
}
