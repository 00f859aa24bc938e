package mysql

import (
	"context"
	"errors"
	"time"

	"ordersvc/domain/order"
	"ordersvc/domain/shared"
	"ordersvc/infrastructure/persistence"
	"ordersvc/infrastructure/persistence/mysql/po"
	"ordersvc/infrastructure/persistence/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository MySQL/GORM implementation of order repository
// GORM associations are not used; lines are written and read explicitly so
// the aggregate boundary stays visible.
type OrderRepository struct {
	db         *gorm.DB
	translator *specification.OrderTranslator
}

// NewOrderRepository Create order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db, translator: specification.NewOrderTranslator()}
}

// getDB returns the transaction from context if available, otherwise the default db
func (r *OrderRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// NextIdentity Generate new order ID
func (r *OrderRepository) NextIdentity() string {
	return uuid.NewString()
}

// Save inserts version 0 aggregates and updates the rest under an optimistic
// lock. Uses the UoW transaction from ctx or opens its own.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	orderPO, linePOs := po.FromOrderDomain(o)

	var err error
	if tx := persistence.TxFromContext(ctx); tx != nil {
		err = r.saveWithTx(tx, orderPO, linePOs)
	} else {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return r.saveWithTx(tx, orderPO, linePOs)
		})
	}
	if err != nil {
		return err
	}

	o.IncrementVersionForSave()
	return nil
}

// saveWithTx performs the actual save operations within a transaction
func (r *OrderRepository) saveWithTx(tx *gorm.DB, orderPO *po.OrderPO, linePOs []po.OrderLinePO) error {
	if orderPO.Version == 0 {
		orderPO.Version = 1
		if err := tx.Create(orderPO).Error; err != nil {
			return wrapError("order", "insert", err)
		}
	} else {
		result := tx.Model(&po.OrderPO{}).
			Where("id = ? AND version = ?", orderPO.ID, orderPO.Version).
			Updates(map[string]any{
				"status":      orderPO.Status,
				"total_price": orderPO.TotalPrice,
				"deleted":     orderPO.Deleted,
				"version":     gorm.Expr("version + 1"),
				"updated_at":  time.Now(),
			})
		if result.Error != nil {
			return wrapError("order", "update", result.Error)
		}
		if result.RowsAffected == 0 {
			return r.missingOrStale(tx, orderPO.ID)
		}

		// Lines are rewritten as a whole: delete then insert.
		if err := tx.Where("order_id = ?", orderPO.ID).Delete(&po.OrderLinePO{}).Error; err != nil {
			return wrapError("order", "delete lines", err)
		}
	}

	if len(linePOs) > 0 {
		if err := tx.Create(&linePOs).Error; err != nil {
			return wrapError("order", "insert lines", err)
		}
	}
	return nil
}

// missingOrStale tells a vanished row apart from a version conflict.
func (r *OrderRepository) missingOrStale(tx *gorm.DB, id string) error {
	var count int64
	if err := tx.Model(&po.OrderPO{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return wrapError("order", "count", err)
	}
	if count == 0 {
		return order.NewOrderNotFoundError(id)
	}
	return order.NewConcurrentModificationError(id)
}

// FindByID Find order by ID. Soft-deleted orders are returned.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	db := r.getDB(ctx)
	var orderPO po.OrderPO

	if err := db.First(&orderPO, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.NewOrderNotFoundError(id)
		}
		return nil, wrapError("order", "find", err)
	}

	orders, err := r.withLines(db, []po.OrderPO{orderPO})
	if err != nil {
		return nil, err
	}
	return orders[0], nil
}

// FindByUserID Find the non-deleted orders of a user, newest first
func (r *OrderRepository) FindByUserID(ctx context.Context, userID string) ([]*order.Order, error) {
	db := r.getDB(ctx)
	var orderPOs []po.OrderPO

	if err := db.Where("user_id = ? AND deleted = ?", userID, false).
		Order("created_at DESC").Order("id DESC").
		Find(&orderPOs).Error; err != nil {
		return nil, wrapError("order", "find by user", err)
	}

	return r.withLines(db, orderPOs)
}

// Query pages through the orders matching spec, newest first.
func (r *OrderRepository) Query(ctx context.Context, spec shared.Specification[*order.Order], page shared.PageRequest) (shared.Page[*order.Order], error) {
	page = page.Normalize()
	scope, err := r.translator.Translate(spec)
	if err != nil {
		return shared.Page[*order.Order]{}, shared.NewValidationError("order", "filter", err.Error())
	}

	db := r.getDB(ctx)
	var total int64
	if err := db.Model(&po.OrderPO{}).Scopes(scope).Count(&total).Error; err != nil {
		return shared.Page[*order.Order]{}, wrapError("order", "count", err)
	}

	var orderPOs []po.OrderPO
	if err := db.Model(&po.OrderPO{}).Scopes(scope).
		Order("created_at DESC").Order("id DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&orderPOs).Error; err != nil {
		return shared.Page[*order.Order]{}, wrapError("order", "query", err)
	}

	orders, err := r.withLines(db, orderPOs)
	if err != nil {
		return shared.Page[*order.Order]{}, err
	}
	return shared.NewPage(orders, page, total), nil
}

// withLines loads the lines of all given orders with one query
// (no Preload, to keep aggregate boundaries explicit).
func (r *OrderRepository) withLines(db *gorm.DB, orderPOs []po.OrderPO) ([]*order.Order, error) {
	if len(orderPOs) == 0 {
		return []*order.Order{}, nil
	}
	ids := make([]string, len(orderPOs))
	for i, o := range orderPOs {
		ids[i] = o.ID
	}

	var linePOs []po.OrderLinePO
	if err := db.Where("order_id IN ?", ids).Order("position ASC").Find(&linePOs).Error; err != nil {
		return nil, wrapError("order", "load lines", err)
	}
	byOrder := make(map[string][]po.OrderLinePO, len(orderPOs))
	for _, l := range linePOs {
		byOrder[l.OrderID] = append(byOrder[l.OrderID], l)
	}

	orders := make([]*order.Order, len(orderPOs))
	for i := range orderPOs {
		orders[i] = orderPOs[i].ToDomain(byOrder[orderPOs[i].ID])
	}
	return orders, nil
}

// Remove soft-deletes the order.
func (r *OrderRepository) Remove(ctx context.Context, id string) error {
	o, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	o.MarkDeleted()
	return r.Save(ctx, o)
}

// Compile-time interface implementation check
var _ order.Repository = (*OrderRepository)(nil)
