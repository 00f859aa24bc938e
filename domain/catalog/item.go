/*
Package catalog Item subdomain

An Item is a sellable thing with a name and a unit price. Orders reference
items by identifier only and snapshot name and price onto their lines, so
the catalog never holds back-references to orders.
*/
package catalog

import (
	"strings"
	"time"

	"ordersvc/domain/shared"

	"github.com/google/uuid"
)

// MaxNameLength mirrors the width of the name column.
const MaxNameLength = 255

// Item Item aggregate root
type Item struct {
	id        string
	name      string
	price     shared.Money
	deleted   bool
	version   int
	createdAt time.Time
	updatedAt time.Time

	events []shared.DomainEvent
}

// NewItem creates an item with a validated name and a non-negative price.
func NewItem(name string, price shared.Money) (*Item, error) {
	name = strings.TrimSpace(name)
	if err := validate(name, price); err != nil {
		return nil, err
	}

	now := time.Now()
	item := &Item{
		id:        uuid.NewString(),
		name:      name,
		price:     price,
		createdAt: now,
		updatedAt: now,
	}
	item.events = append(item.events, NewItemCreatedEvent(item.id, item.name, item.price))
	return item, nil
}

func validate(name string, price shared.Money) error {
	if name == "" {
		return NewInvalidItemError("name", "item name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return NewInvalidItemError("name", "item name is too long")
	}
	if price.IsNegative() {
		return NewInvalidItemError("price", "item price cannot be negative")
	}
	return nil
}

// ============================================================================
// Behavior
// ============================================================================

// Update changes name and price. Nil arguments keep the current value.
func (i *Item) Update(name *string, price *shared.Money) error {
	if i.deleted {
		return NewItemNotFoundError(i.id)
	}

	newName := i.name
	if name != nil {
		newName = strings.TrimSpace(*name)
	}
	newPrice := i.price
	if price != nil {
		newPrice = *price
	}
	if err := validate(newName, newPrice); err != nil {
		return err
	}

	i.name = newName
	i.price = newPrice
	i.updatedAt = time.Now()
	i.events = append(i.events, NewItemUpdatedEvent(i.id, i.name, i.price))
	return nil
}

// MarkDeleted soft-deletes the item. Existing order lines keep their snapshot.
func (i *Item) MarkDeleted() {
	if i.deleted {
		return
	}
	i.deleted = true
	i.updatedAt = time.Now()
	i.events = append(i.events, NewItemDeletedEvent(i.id))
}

// IncrementVersionForSave is called by the repository after a successful write.
func (i *Item) IncrementVersionForSave() {
	i.version++
}

// PullEvents returns and clears the recorded events.
func (i *Item) PullEvents() []shared.DomainEvent {
	events := i.events
	i.events = nil
	return events
}

func (i *Item) ID() string           { return i.id }
func (i *Item) Name() string         { return i.name }
func (i *Item) Price() shared.Money  { return i.price }
func (i *Item) IsDeleted() bool      { return i.deleted }
func (i *Item) Version() int         { return i.version }
func (i *Item) CreatedAt() time.Time { return i.createdAt }
func (i *Item) UpdatedAt() time.Time { return i.updatedAt }
func (i *Item) IsNew() bool          { return i.version == 0 }

var _ shared.AggregateRoot = (*Item)(nil)

// ============================================================================
// Reconstruction - repository use only
// ============================================================================

// ReconstructionDTO carries persisted state back into the aggregate.
type ReconstructionDTO struct {
	ID        string
	Name      string
	Price     shared.Money
	Deleted   bool
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RebuildFromDTO reconstructs an Item loaded from storage.
func RebuildFromDTO(dto ReconstructionDTO) *Item {
	return &Item{
		id:        dto.ID,
		name:      dto.Name,
		price:     dto.Price,
		deleted:   dto.Deleted,
		version:   dto.Version,
		createdAt: dto.CreatedAt,
		updatedAt: dto.UpdatedAt,
	}
}

// ToDTO snapshots the item for storage.
func (i *Item) ToDTO() ReconstructionDTO {
	return ReconstructionDTO{
		ID:        i.id,
		Name:      i.name,
		Price:     i.price,
		Deleted:   i.deleted,
		Version:   i.version,
		CreatedAt: i.createdAt,
		UpdatedAt: i.updatedAt,
	}
}
