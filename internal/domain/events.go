package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderEventType определяет тип события заказа.
type OrderEventType string

const (
	OrderEventCreated   OrderEventType = "order.created"
	OrderEventCompleted OrderEventType = "order.completed"
	OrderEventDeleted   OrderEventType = "order.deleted"
)

// OrderEvent описывает изменение состояния заказа.
type OrderEvent struct {
	EventID    string         `json:"event_id"`
	EventType  OrderEventType `json:"event_type"`
	OrderID    int            `json:"order_id"`
	Customer   string         `json:"customer"`
	Collection Collection     `json:"collection"`
	Total      string         `json:"total"`
	Items      int            `json:"items"`
	Urgent     bool           `json:"urgent"`
	Timestamp  time.Time      `json:"timestamp"`
}

// NewOrderEvent создаёт событие с уникальным идентификатором.
func NewOrderEvent(eventType OrderEventType, order Order, collection Collection, at time.Time) OrderEvent {
	return OrderEvent{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OrderID:    order.ID(),
		Customer:   order.CustomerName(),
		Collection: collection,
		Total:      order.Total().String(),
		Items:      order.ItemCount(),
		Urgent:     order.Urgent(),
		Timestamp:  at.UTC(),
	}
}
