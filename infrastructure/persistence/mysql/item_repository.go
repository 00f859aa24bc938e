package mysql

import (
	"context"
	"errors"
	"time"

	"ordersvc/domain/catalog"
	"ordersvc/domain/shared"
	"ordersvc/infrastructure/persistence"
	"ordersvc/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

// ItemRepository MySQL/GORM implementation of the catalog repository
type ItemRepository struct {
	db *gorm.DB
}

// NewItemRepository Create item repository
func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Save inserts or updates the item under an optimistic lock.
func (r *ItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	itemPO := po.FromItemDomain(item)
	db := r.getDB(ctx)

	if itemPO.Version == 0 {
		itemPO.Version = 1
		if err := db.Create(itemPO).Error; err != nil {
			return wrapError("item", "insert", err)
		}
		item.IncrementVersionForSave()
		return nil
	}

	result := db.Model(&po.ItemPO{}).
		Where("id = ? AND version = ?", itemPO.ID, itemPO.Version).
		Updates(map[string]any{
			"name":       itemPO.Name,
			"price":      itemPO.Price,
			"deleted":    itemPO.Deleted,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return wrapError("item", "update", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&po.ItemPO{}).Where("id = ?", itemPO.ID).Count(&count).Error; err != nil {
			return wrapError("item", "count", err)
		}
		if count == 0 {
			return catalog.NewItemNotFoundError(itemPO.ID)
		}
		return catalog.NewConcurrentModificationError(itemPO.ID)
	}

	item.IncrementVersionForSave()
	return nil
}

// FindByID returns the item, soft-deleted ones included.
func (r *ItemRepository) FindByID(ctx context.Context, id string) (*catalog.Item, error) {
	var itemPO po.ItemPO
	if err := r.getDB(ctx).First(&itemPO, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.NewItemNotFoundError(id)
		}
		return nil, wrapError("item", "find", err)
	}
	return itemPO.ToDomain(), nil
}

// FindAll pages through non-deleted items ordered by name.
func (r *ItemRepository) FindAll(ctx context.Context, page shared.PageRequest) (shared.Page[*catalog.Item], error) {
	page = page.Normalize()
	db := r.getDB(ctx)

	var total int64
	if err := db.Model(&po.ItemPO{}).Where("deleted = ?", false).Count(&total).Error; err != nil {
		return shared.Page[*catalog.Item]{}, wrapError("item", "count", err)
	}

	var itemPOs []po.ItemPO
	if err := db.Where("deleted = ?", false).
		Order("name ASC").Order("id ASC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&itemPOs).Error; err != nil {
		return shared.Page[*catalog.Item]{}, wrapError("item", "list", err)
	}

	items := make([]*catalog.Item, len(itemPOs))
	for i := range itemPOs {
		items[i] = itemPOs[i].ToDomain()
	}
	return shared.NewPage(items, page, total), nil
}

var _ catalog.Repository = (*ItemRepository)(nil)
