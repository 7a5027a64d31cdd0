package kafka

// Topics для Kafka
const (
	TopicOrderEvents = "counter.order.events"
)

// Kafka headers событий заказа
const (
	HeaderEventType  = "x-event-type"
	HeaderCollection = "x-collection"
)
