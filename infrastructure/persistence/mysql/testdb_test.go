package mysql

import (
	"context"
	"testing"
	"time"

	"ordersvc/domain/catalog"
	"ordersvc/domain/order"
	"ordersvc/domain/shared"
	"ordersvc/pkg/logger"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with the schema
// applied. One connection keeps every statement on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.NewGormLogger(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

type itemLookup struct {
	repo *ItemRepository
}

func (l itemLookup) FindItem(ctx context.Context, id string) (*catalog.Item, error) {
	return catalog.RepositoryLookup{Repo: l.repo}.FindItem(ctx, id)
}

func saveItem(t *testing.T, repo *ItemRepository, name, price string) *catalog.Item {
	t.Helper()
	item, err := catalog.NewItem(name, shared.MustParseMoney(price))
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), item))
	return item
}

// newOrderAt builds an unsaved order whose creation time is fixed.
func newOrderAt(t *testing.T, lookup catalog.Lookup, userID string, createdAt time.Time, lines ...order.LineRequest) *order.Order {
	t.Helper()
	o, err := order.NewOrder(context.Background(), userID, lines, lookup)
	require.NoError(t, err)
	dto := o.ToDTO()
	dto.CreatedAt = createdAt
	dto.UpdatedAt = createdAt
	return order.RebuildFromDTO(dto)
}

func at(hour int) time.Time {
	return time.Date(2024, 3, 1, hour, 0, 0, 0, time.UTC)
}
