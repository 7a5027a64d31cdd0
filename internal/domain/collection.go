package domain

import (
	"fmt"
	"strings"
)

// Collection указывает, в какой последовательности (и в каком файле) находится заказ.
type Collection string

const (
	// CollectionPending — очередь ожидающих заказов (FIFO).
	CollectionPending Collection = "pending"
	// CollectionCompleted — история выполненных заказов (LIFO, сверху самый новый).
	CollectionCompleted Collection = "completed"
)

// Valid проверяет, что значение относится к поддерживаемым коллекциям.
func (c Collection) Valid() bool {
	switch c {
	case CollectionPending, CollectionCompleted:
		return true
	default:
		return false
	}
}

// ParseCollection принимает имя коллекции или номер пункта меню (1 — pending, 2 — completed).
func ParseCollection(s string) (Collection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", string(CollectionPending):
		return CollectionPending, nil
	case "2", string(CollectionCompleted):
		return CollectionCompleted, nil
	default:
		return "", fmt.Errorf("collection %q: %w", s, ErrInvalidSelection)
	}
}
