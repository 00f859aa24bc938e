package po

import (
	"time"

	"ordersvc/domain/catalog"
	"ordersvc/domain/shared"

	"github.com/shopspring/decimal"
)

// ItemPO Catalog item persistence object
type ItemPO struct {
	ID        string          `gorm:"primaryKey;size:64"`
	Name      string          `gorm:"size:255;index;not null"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Deleted   bool            `gorm:"index;not null;default:false"`
	Version   int             `gorm:"not null;default:0"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName Specify table name
func (ItemPO) TableName() string {
	return "items"
}

// FromItemDomain Convert domain model to persistence object
func FromItemDomain(item *catalog.Item) *ItemPO {
	dto := item.ToDTO()
	return &ItemPO{
		ID:        dto.ID,
		Name:      dto.Name,
		Price:     dto.Price.Amount(),
		Deleted:   dto.Deleted,
		Version:   dto.Version,
		CreatedAt: dto.CreatedAt,
		UpdatedAt: dto.UpdatedAt,
	}
}

// ToDomain Convert persistence object to domain model
func (p *ItemPO) ToDomain() *catalog.Item {
	return catalog.RebuildFromDTO(catalog.ReconstructionDTO{
		ID:        p.ID,
		Name:      p.Name,
		Price:     shared.NewMoney(p.Price),
		Deleted:   p.Deleted,
		Version:   p.Version,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	})
}
