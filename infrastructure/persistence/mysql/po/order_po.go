package po

import (
	"time"

	"ordersvc/domain/order"
	"ordersvc/domain/shared"

	"github.com/shopspring/decimal"
)

// OrderPO Order persistence object
// Note: Only used for database mapping, does not contain any business logic
// Defining GORM associations is prohibited here
type OrderPO struct {
	ID         string          `gorm:"primaryKey;size:64"`
	UserID     string          `gorm:"size:64;index;not null"`
	Status     string          `gorm:"size:20;index;not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Deleted    bool            `gorm:"index;not null;default:false"`
	Version    int             `gorm:"not null;default:0"`
	CreatedAt  time.Time       `gorm:"index;not null"`
	UpdatedAt  time.Time       `gorm:"not null"`
}

// TableName Specify table name
func (OrderPO) TableName() string {
	return "orders"
}

// OrderLinePO Order line persistence object. Deleted lines stay in the table.
type OrderLinePO struct {
	ID        string          `gorm:"primaryKey;size:64"`
	OrderID   string          `gorm:"size:64;index;not null"`
	ItemID    string          `gorm:"size:64;index;not null"`
	ItemName  string          `gorm:"size:255;not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity  int             `gorm:"not null"`
	Deleted   bool            `gorm:"not null;default:false"`
	Position  int             `gorm:"not null"`
}

// TableName Specify table name
func (OrderLinePO) TableName() string {
	return "order_lines"
}

// FromOrderDomain Convert domain model to persistence object
func FromOrderDomain(o *order.Order) (*OrderPO, []OrderLinePO) {
	dto := o.ToDTO()
	orderPO := &OrderPO{
		ID:         dto.ID,
		UserID:     dto.UserID,
		Status:     string(dto.Status),
		TotalPrice: dto.TotalPrice.Amount(),
		Deleted:    dto.Deleted,
		Version:    dto.Version,
		CreatedAt:  dto.CreatedAt,
		UpdatedAt:  dto.UpdatedAt,
	}

	linePOs := make([]OrderLinePO, len(dto.Lines))
	for i, line := range dto.Lines {
		linePOs[i] = OrderLinePO{
			ID:        line.ID,
			OrderID:   dto.ID,
			ItemID:    line.ItemID,
			ItemName:  line.ItemName,
			UnitPrice: line.UnitPrice.Amount(),
			Quantity:  line.Quantity,
			Deleted:   line.Deleted,
			Position:  i,
		}
	}

	return orderPO, linePOs
}

// ToDomain Convert persistence object to domain model.
// linePOs must be ordered by Position.
func (p *OrderPO) ToDomain(linePOs []OrderLinePO) *order.Order {
	lines := make([]order.LineReconstructionDTO, len(linePOs))
	for i, l := range linePOs {
		lines[i] = order.LineReconstructionDTO{
			ID:        l.ID,
			ItemID:    l.ItemID,
			ItemName:  l.ItemName,
			UnitPrice: shared.NewMoney(l.UnitPrice),
			Quantity:  l.Quantity,
			Deleted:   l.Deleted,
		}
	}

	return order.RebuildFromDTO(order.ReconstructionDTO{
		ID:         p.ID,
		UserID:     p.UserID,
		Lines:      lines,
		TotalPrice: shared.NewMoney(p.TotalPrice),
		Status:     order.Status(p.Status),
		Deleted:    p.Deleted,
		Version:    p.Version,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	})
}
