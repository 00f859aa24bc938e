package catalog

import (
	"time"

	"ordersvc/domain/shared"
)

type ItemCreatedEvent struct {
	itemID     string
	name       string
	price      shared.Money
	occurredOn time.Time
}

func NewItemCreatedEvent(itemID, name string, price shared.Money) *ItemCreatedEvent {
	return &ItemCreatedEvent{itemID: itemID, name: name, price: price, occurredOn: time.Now()}
}

func (e *ItemCreatedEvent) EventName() string      { return "item.created" }
func (e *ItemCreatedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *ItemCreatedEvent) GetAggregateID() string { return e.itemID }
func (e *ItemCreatedEvent) Payload() map[string]any {
	return map[string]any{"name": e.name, "price": e.price.String()}
}

type ItemUpdatedEvent struct {
	itemID     string
	name       string
	price      shared.Money
	occurredOn time.Time
}

func NewItemUpdatedEvent(itemID, name string, price shared.Money) *ItemUpdatedEvent {
	return &ItemUpdatedEvent{itemID: itemID, name: name, price: price, occurredOn: time.Now()}
}

func (e *ItemUpdatedEvent) EventName() string      { return "item.updated" }
func (e *ItemUpdatedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *ItemUpdatedEvent) GetAggregateID() string { return e.itemID }
func (e *ItemUpdatedEvent) Payload() map[string]any {
	return map[string]any{"name": e.name, "price": e.price.String()}
}

type ItemDeletedEvent struct {
	itemID     string
	occurredOn time.Time
}

func NewItemDeletedEvent(itemID string) *ItemDeletedEvent {
	return &ItemDeletedEvent{itemID: itemID, occurredOn: time.Now()}
}

func (e *ItemDeletedEvent) EventName() string      { return "item.deleted" }
func (e *ItemDeletedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *ItemDeletedEvent) GetAggregateID() string { return e.itemID }
