package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Операции с файлами заказов для метрик.
const (
	OperationSave   = "save"
	OperationLoad   = "load"
	OperationView   = "view"
	OperationDelete = "delete"
)

// OrderMetrics содержит метрики жизненного цикла заказов и работы с файлами.
type OrderMetrics struct {
	// Счётчики операций над заказами
	ordersCreated   *prometheus.CounterVec
	ordersProcessed prometheus.Counter
	ordersDeleted   *prometheus.CounterVec

	// Текущее состояние коллекций
	pendingOrders   prometheus.Gauge
	completedOrders prometheus.Gauge

	// Файловое хранилище
	persistenceDuration *prometheus.HistogramVec
	persistenceErrors   *prometheus.CounterVec
	skippedRecords      prometheus.Counter
}

// NewOrderMetrics создаёт метрики в реестре по умолчанию.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "counter_orders_created_total",
			Help: "Total number of orders created",
		}, []string{"urgent"}),
		ordersProcessed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "counter_orders_processed_total",
			Help: "Total number of pending orders moved to the completed history",
		}),
		ordersDeleted: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "counter_orders_deleted_total",
			Help: "Total number of order records deleted from saved files",
		}, []string{"collection"}),
		pendingOrders: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "counter_pending_orders",
			Help: "Number of orders waiting in the pending queue",
		}),
		completedOrders: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "counter_completed_orders",
			Help: "Number of orders in the completed history",
		}),
		persistenceDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "counter_persistence_duration_seconds",
			Help:    "Duration of order file operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"operation"}),
		persistenceErrors: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "counter_persistence_errors_total",
			Help: "Total number of failed order file operations",
		}, []string{"operation"}),
		skippedRecords: registerCounter(registerer, prometheus.CounterOpts{
			Name: "counter_skipped_records_total",
			Help: "Total number of unreadable order records skipped while loading",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *OrderMetrics) RecordOrderCreated(urgent bool) {
	m.ordersCreated.WithLabelValues(strconv.FormatBool(urgent)).Inc()
}

// RecordOrderProcessed увеличивает счётчик обработанных заказов.
func (m *OrderMetrics) RecordOrderProcessed() {
	m.ordersProcessed.Inc()
}

// RecordOrderDeleted увеличивает счётчик удалённых из файла записей.
func (m *OrderMetrics) RecordOrderDeleted(collection string) {
	m.ordersDeleted.WithLabelValues(collection).Inc()
}

// SetCollectionSizes фиксирует текущие размеры очереди и истории.
func (m *OrderMetrics) SetCollectionSizes(pending, completed int) {
	m.pendingOrders.Set(float64(pending))
	m.completedOrders.Set(float64(completed))
}

// RecordPersistence записывает длительность файловой операции и её ошибку, если была.
func (m *OrderMetrics) RecordPersistence(operation string, duration time.Duration, err error) {
	m.persistenceDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.persistenceErrors.WithLabelValues(operation).Inc()
	}
}

// RecordSkippedRecords добавляет пропущенные при загрузке строки.
func (m *OrderMetrics) RecordSkippedRecords(n int) {
	if n > 0 {
		m.skippedRecords.Add(float64(n))
	}
}
