package domain

import "iter"

// OrderSource отдаёт обе коллекции в порядке, нужном для сохранения.
type OrderSource interface {
	// Pending — ожидающие заказы от головы очереди к хвосту.
	Pending() iter.Seq[Order]
	// CompletedOldestFirst — история от самого старого к вершине стека.
	CompletedOldestFirst() iter.Seq[Order]
}

// OrderSink принимает заказы при загрузке из хранилища.
type OrderSink interface {
	// Reset очищает обе коллекции.
	Reset()
	EnqueuePending(order Order)
	PushCompleted(order Order)
}

// EventPublisher публикует события жизненного цикла заказа.
type EventPublisher interface {
	// Publish передаёт событие наружу; ошибка не должна влиять на операцию над заказом.
	Publish(event OrderEvent) error
}
