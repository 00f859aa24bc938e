/*
Package order Order subdomain

The Order aggregate owns its lines and keeps them consistent with the total
price. Items are referenced by identifier only. Each line carries the item's
name and unit price as last read from the catalog; RefreshPrices re-reads
them before a recomputation so the total follows the current catalog price.
A line whose item was soft-deleted keeps its last known price.

Invariants after every mutation batch followed by RecomputeTotalPrice:
 1. totalPrice equals the sum of quantity x unitPrice over active lines.
 2. At most one active line per item, and no active line with quantity <= 0.
 3. Status only moves along the transition table in status.go.
*/
package order

import (
	"context"
	"errors"
	"time"

	"ordersvc/domain/catalog"
	"ordersvc/domain/shared"

	"github.com/google/uuid"
)

// Order Order aggregate root
type Order struct {
	id         string
	userID     string
	lines      []OrderLine
	totalPrice shared.Money
	status     Status
	deleted    bool
	version    int // optimistic lock version, owned by the repository
	createdAt  time.Time
	updatedAt  time.Time

	events []shared.DomainEvent
}

// OrderLine is an entity inside the aggregate. Deleted lines are kept for
// history and excluded from every invariant.
type OrderLine struct {
	id        string
	itemID    string
	itemName  string
	unitPrice shared.Money
	quantity  int
	deleted   bool
}

func (l OrderLine) ID() string              { return l.id }
func (l OrderLine) ItemID() string          { return l.itemID }
func (l OrderLine) ItemName() string        { return l.itemName }
func (l OrderLine) UnitPrice() shared.Money { return l.unitPrice }
func (l OrderLine) Quantity() int           { return l.quantity }
func (l OrderLine) IsDeleted() bool         { return l.deleted }

// Subtotal is quantity x unit price.
func (l OrderLine) Subtotal() shared.Money {
	return l.unitPrice.Multiply(l.quantity)
}

// LineRequest asks for quantity units of an item.
type LineRequest struct {
	ItemID   string
	Quantity int
}

// ============================================================================
// Factory
// ============================================================================

// NewOrder places a PENDING order for userID. Every referenced item is
// resolved before the aggregate is built, so a missing item leaves nothing
// half constructed.
func NewOrder(ctx context.Context, userID string, requests []LineRequest, lookup catalog.Lookup) (*Order, error) {
	if userID == "" {
		return nil, shared.NewValidationError("order", "user_id", "user id is required")
	}
	if len(requests) == 0 {
		return nil, ErrEmptyOrderItems
	}

	resolved, err := resolveLines(ctx, requests, lookup)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &Order{
		id:         uuid.NewString(),
		userID:     userID,
		totalPrice: shared.ZeroMoney(),
		status:     StatusPending,
		createdAt:  now,
		updatedAt:  now,
	}
	for _, r := range resolved {
		if err := order.AddItem(r.item, r.quantity); err != nil {
			return nil, err
		}
	}
	order.RecomputeTotalPrice()

	order.events = append(order.events, NewOrderPlacedEvent(order.id, userID, order.totalPrice))
	return order, nil
}

type resolvedLine struct {
	item     *catalog.Item
	quantity int
}

// resolveLines validates quantities and looks up every item up front.
func resolveLines(ctx context.Context, requests []LineRequest, lookup catalog.Lookup) ([]resolvedLine, error) {
	resolved := make([]resolvedLine, 0, len(requests))
	for _, req := range requests {
		if req.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		item, err := lookup.FindItem(ctx, req.ItemID)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, resolvedLine{item: item, quantity: req.Quantity})
	}
	return resolved, nil
}

// ============================================================================
// Line mutation
// ============================================================================
//
// AddItem and RemoveItem do not recompute the total, so a batch of changes
// pays for a single recomputation. Callers finish a batch with
// RecomputeTotalPrice inside the same unit of work.

// AddItem merges quantity into the active line for item, refreshing its
// snapshot price, or appends a new line.
func (o *Order) AddItem(item *catalog.Item, quantity int) error {
	if !o.status.AllowsLineChanges() {
		return NewCannotModifyOrderError(o.status)
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if item == nil || item.IsDeleted() {
		id := ""
		if item != nil {
			id = item.ID()
		}
		return catalog.NewItemNotFoundError(id)
	}

	if idx := o.activeLineIndex(item.ID()); idx >= 0 {
		line := &o.lines[idx]
		line.quantity += quantity
		line.unitPrice = item.Price()
		line.itemName = item.Name()
	} else {
		o.lines = append(o.lines, OrderLine{
			id:        uuid.NewString(),
			itemID:    item.ID(),
			itemName:  item.Name(),
			unitPrice: item.Price(),
			quantity:  quantity,
		})
	}
	o.updatedAt = time.Now()
	return nil
}

// RemoveItem takes quantity units of itemID out of the order. Removing the
// exact held quantity soft-deletes the line. Asking for more than is held
// fails with ErrQuantityExceeded and changes nothing.
func (o *Order) RemoveItem(itemID string, quantity int) error {
	if !o.status.AllowsLineChanges() {
		return NewCannotModifyOrderError(o.status)
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	idx := o.activeLineIndex(itemID)
	if idx < 0 {
		return NewItemNotInOrderError(itemID)
	}

	line := &o.lines[idx]
	switch {
	case quantity > line.quantity:
		return NewQuantityExceededError(itemID, line.quantity, quantity)
	case quantity == line.quantity:
		line.deleted = true
	default:
		line.quantity -= quantity
	}
	o.updatedAt = time.Now()
	return nil
}

// RecomputeTotalPrice replaces the total with the sum over active lines.
func (o *Order) RecomputeTotalPrice() {
	total := shared.ZeroMoney()
	for _, line := range o.lines {
		if line.deleted {
			continue
		}
		total = total.Add(line.Subtotal())
	}
	o.totalPrice = total
}

// RefreshPrices re-reads name and unit price for every active line from
// lookup. Items that are no longer found keep their last known values; any
// other lookup failure aborts and leaves the lines untouched.
func (o *Order) RefreshPrices(ctx context.Context, lookup catalog.Lookup) error {
	type refresh struct {
		idx  int
		item *catalog.Item
	}
	var fresh []refresh
	for i, line := range o.lines {
		if line.deleted {
			continue
		}
		item, err := lookup.FindItem(ctx, line.itemID)
		if errors.Is(err, catalog.ErrItemNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		fresh = append(fresh, refresh{idx: i, item: item})
	}
	for _, r := range fresh {
		o.lines[r.idx].unitPrice = r.item.Price()
		o.lines[r.idx].itemName = r.item.Name()
	}
	return nil
}

// ReplaceAllLines resolves every requested item first and only then retires
// all active lines, adds the new ones and recomputes the total once.
func (o *Order) ReplaceAllLines(ctx context.Context, requests []LineRequest, lookup catalog.Lookup) error {
	if !o.status.AllowsLineChanges() {
		return NewCannotModifyOrderError(o.status)
	}

	resolved, err := resolveLines(ctx, requests, lookup)
	if err != nil {
		return err
	}

	for i := range o.lines {
		o.lines[i].deleted = true
	}
	for _, r := range resolved {
		if err := o.AddItem(r.item, r.quantity); err != nil {
			return err
		}
	}
	o.RecomputeTotalPrice()
	o.updatedAt = time.Now()

	o.events = append(o.events, NewOrderLinesChangedEvent(o.id, o.totalPrice))
	return nil
}

func (o *Order) activeLineIndex(itemID string) int {
	for i, line := range o.lines {
		if !line.deleted && line.itemID == itemID {
			return i
		}
	}
	return -1
}

// ============================================================================
// Status and lifecycle
// ============================================================================

// ChangeStatus moves the order along the transition table.
// Moving to the current status is a no-op.
func (o *Order) ChangeStatus(target Status, reason string) error {
	if !target.IsValid() {
		return NewInvalidStatusError(string(target))
	}
	if o.status == target {
		return nil
	}
	if !o.status.CanTransitionTo(target) {
		return NewInvalidTransitionError(o.status, target)
	}

	from := o.status
	o.status = target
	o.updatedAt = time.Now()
	o.events = append(o.events, NewOrderStatusChangedEvent(o.id, from, target, reason))
	return nil
}

// MarkDeleted soft-deletes the order.
func (o *Order) MarkDeleted() {
	if o.deleted {
		return
	}
	o.deleted = true
	o.updatedAt = time.Now()
	o.events = append(o.events, NewOrderDeletedEvent(o.id))
}

// Restore clears the soft-delete flag.
func (o *Order) Restore() {
	if !o.deleted {
		return
	}
	o.deleted = false
	o.updatedAt = time.Now()
}

// IncrementVersionForSave is called by the repository after a successful write.
func (o *Order) IncrementVersionForSave() {
	o.version++
}

// PullEvents returns the recorded events and clears them.
// The unit of work calls it inside the transaction to fill the outbox.
func (o *Order) PullEvents() []shared.DomainEvent {
	events := o.events
	o.events = nil
	return events
}

// ============================================================================
// Getters
// ============================================================================

func (o *Order) ID() string               { return o.id }
func (o *Order) UserID() string           { return o.userID }
func (o *Order) TotalPrice() shared.Money { return o.totalPrice }
func (o *Order) Status() Status           { return o.status }
func (o *Order) IsDeleted() bool          { return o.deleted }
func (o *Order) Version() int             { return o.version }
func (o *Order) CreatedAt() time.Time     { return o.createdAt }
func (o *Order) UpdatedAt() time.Time     { return o.updatedAt }
func (o *Order) IsNew() bool              { return o.version == 0 }

// Lines returns a copy of every line, deleted ones included.
func (o *Order) Lines() []OrderLine {
	lines := make([]OrderLine, len(o.lines))
	copy(lines, o.lines)
	return lines
}

// ActiveLines returns a copy of the non-deleted lines.
func (o *Order) ActiveLines() []OrderLine {
	lines := make([]OrderLine, 0, len(o.lines))
	for _, line := range o.lines {
		if !line.deleted {
			lines = append(lines, line)
		}
	}
	return lines
}

// ActiveLine returns the active line for itemID.
func (o *Order) ActiveLine(itemID string) (OrderLine, bool) {
	if idx := o.activeLineIndex(itemID); idx >= 0 {
		return o.lines[idx], true
	}
	return OrderLine{}, false
}

var _ shared.AggregateRoot = (*Order)(nil)

// ============================================================================
// ReconstructionDTO - repository use only
// ============================================================================

// ReconstructionDTO carries persisted state back into the aggregate.
type ReconstructionDTO struct {
	ID         string
	UserID     string
	Lines      []LineReconstructionDTO
	TotalPrice shared.Money
	Status     Status
	Deleted    bool
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LineReconstructionDTO carries one persisted line.
type LineReconstructionDTO struct {
	ID        string
	ItemID    string
	ItemName  string
	UnitPrice shared.Money
	Quantity  int
	Deleted   bool
}

// RebuildFromDTO reconstructs an Order loaded from storage.
func RebuildFromDTO(dto ReconstructionDTO) *Order {
	lines := make([]OrderLine, len(dto.Lines))
	for i, l := range dto.Lines {
		lines[i] = OrderLine{
			id:        l.ID,
			itemID:    l.ItemID,
			itemName:  l.ItemName,
			unitPrice: l.UnitPrice,
			quantity:  l.Quantity,
			deleted:   l.Deleted,
		}
	}
	return &Order{
		id:         dto.ID,
		userID:     dto.UserID,
		lines:      lines,
		totalPrice: dto.TotalPrice,
		status:     dto.Status,
		deleted:    dto.Deleted,
		version:    dto.Version,
		createdAt:  dto.CreatedAt,
		updatedAt:  dto.UpdatedAt,
	}
}

// ToDTO snapshots the aggregate for storage.
func (o *Order) ToDTO() ReconstructionDTO {
	lines := make([]LineReconstructionDTO, len(o.lines))
	for i, l := range o.lines {
		lines[i] = LineReconstructionDTO{
			ID:        l.id,
			ItemID:    l.itemID,
			ItemName:  l.itemName,
			UnitPrice: l.unitPrice,
			Quantity:  l.quantity,
			Deleted:   l.deleted,
		}
	}
	return ReconstructionDTO{
		ID:         o.id,
		UserID:     o.userID,
		Lines:      lines,
		TotalPrice: o.totalPrice,
		Status:     o.status,
		Deleted:    o.deleted,
		Version:    o.version,
		CreatedAt:  o.createdAt,
		UpdatedAt:  o.updatedAt,
	}
}
