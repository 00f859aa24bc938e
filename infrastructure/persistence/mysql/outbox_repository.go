package mysql

import (
	"context"
	"fmt"
	"time"

	"ordersvc/domain/shared"
	"ordersvc/infrastructure/persistence"
	"ordersvc/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

const maxLastErrorLen = 512

// OutboxRepository stores domain events next to the order rows that raised
// them and tracks their relay state.
type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// SaveEvent joins the unit of work transaction found in ctx.
func (r *OutboxRepository) SaveEvent(ctx context.Context, event shared.DomainEvent) error {
	if err := shared.ValidateEvent(event); err != nil {
		return fmt.Errorf("invalid domain event: %w", err)
	}
	row, err := po.FromDomainEvent(event)
	if err != nil {
		return fmt.Errorf("failed to convert domain event: %w", err)
	}
	if err := r.getDB(ctx).Create(row).Error; err != nil {
		return wrapError("outbox", "insert", err)
	}
	return nil
}

// GetPendingEvents returns up to limit pending events, oldest first.
func (r *OutboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]*po.OutboxEventPO, error) {
	var rows []*po.OutboxEventPO
	err := r.getDB(ctx).
		Where("status = ?", string(po.EventStatusPending)).
		Order("created_at ASC").Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, wrapError("outbox", "get pending", err)
	}
	return rows, nil
}

// transition moves one row to status, guarded by its current status when
// from is not empty. It reports whether a row changed.
func (r *OutboxRepository) transition(ctx context.Context, id string, from, to po.EventStatus, extra map[string]any) (bool, error) {
	updates := map[string]any{"status": string(to), "updated_at": time.Now()}
	for k, v := range extra {
		updates[k] = v
	}
	q := r.getDB(ctx).Model(&po.OutboxEventPO{}).Where("id = ?", id)
	if from != "" {
		q = q.Where("status = ?", string(from))
	}
	result := q.Updates(updates)
	if result.Error != nil {
		return false, wrapError("outbox", "mark "+string(to), result.Error)
	}
	return result.RowsAffected > 0, nil
}

// MarkEventProcessing claims a pending event. Returns false when another
// worker claimed it first.
func (r *OutboxRepository) MarkEventProcessing(ctx context.Context, eventID string) (bool, error) {
	return r.transition(ctx, eventID, po.EventStatusPending, po.EventStatusProcessing, nil)
}

func (r *OutboxRepository) MarkEventPublished(ctx context.Context, eventID string) error {
	changed, err := r.transition(ctx, eventID, "", po.EventStatusPublished, map[string]any{"last_error": ""})
	if err != nil {
		return err
	}
	if !changed {
		return fmt.Errorf("outbox event not found: %s", eventID)
	}
	return nil
}

// MarkEventFailed records a failed publish. The event goes back to PENDING
// until maxRetries failures were recorded, then stays FAILED.
func (r *OutboxRepository) MarkEventFailed(ctx context.Context, eventID string, maxRetries int, cause error) error {
	var row po.OutboxEventPO
	if err := r.getDB(ctx).Select("retry_count").First(&row, "id = ?", eventID).Error; err != nil {
		return wrapError("outbox", "find", err)
	}

	retries := row.RetryCount + 1
	next := po.EventStatusPending
	if retries >= maxRetries {
		next = po.EventStatusFailed
	}
	lastError := ""
	if cause != nil {
		lastError = cause.Error()
		if len(lastError) > maxLastErrorLen {
			lastError = lastError[:maxLastErrorLen]
		}
	}
	_, err := r.transition(ctx, eventID, "", next, map[string]any{
		"retry_count": retries,
		"last_error":  lastError,
	})
	return err
}

// CountByStatus backs the relay tests and operational checks.
func (r *OutboxRepository) CountByStatus(ctx context.Context, status po.EventStatus) (int64, error) {
	var count int64
	if err := r.getDB(ctx).Model(&po.OutboxEventPO{}).Where("status = ?", string(status)).Count(&count).Error; err != nil {
		return 0, wrapError("outbox", "count", err)
	}
	return count, nil
}

var _ shared.OutboxRepository = (*OutboxRepository)(nil)
