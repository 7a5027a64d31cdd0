// Package orders реализует движок стойки: очередь заказов, историю,
// поиск, отчёт и работу с сохранёнными файлами.
package orders

import (
	"errors"
	"fmt"
	"iter"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/counter/internal/catalog"
	"github.com/vladislavdragonenkov/counter/internal/domain"
	"github.com/vladislavdragonenkov/counter/internal/metrics"
	"github.com/vladislavdragonenkov/counter/internal/storage/flatfile"
	"github.com/vladislavdragonenkov/counter/internal/storage/memory"
)

// FileRepository описывает файловое хранилище обеих коллекций.
type FileRepository interface {
	SaveAll(src domain.OrderSource) error
	LoadAll(dst domain.OrderSink) (flatfile.LoadResult, error)
	ReadAll(kind domain.Collection) ([]domain.Order, error)
	DeleteAt(kind domain.Collection, displayIndex int) (domain.Order, error)
}

// Dependencies содержит зависимости движка. Publisher необязателен.
type Dependencies struct {
	Store     *memory.Store
	Files     FileRepository
	Catalog   *catalog.Catalog
	Publisher domain.EventPublisher
	Metrics   *metrics.OrderMetrics
	Logger    *log.Entry
	Clock     func() time.Time
}

// SavedOrders — содержимое обоих файлов в порядке строк.
type SavedOrders struct {
	Pending   []domain.Order
	Completed []domain.Order
}

// DeleteResult — итог удаления записи из файла и последующей перезагрузки.
type DeleteResult struct {
	Order domain.Order
	// Reload — итог LoadAll после удаления; ReloadErr — его ошибка, если была.
	Reload    flatfile.LoadResult
	ReloadErr error
}

// Service — движок заказов одной интерактивной сессии.
type Service struct {
	store     *memory.Store
	files     FileRepository
	catalog   *catalog.Catalog
	publisher domain.EventPublisher
	metrics   *metrics.OrderMetrics
	logger    *log.Entry
	now       func() time.Time
}

// NewService конструирует движок; незаданные зависимости заменяются значениями по умолчанию.
func NewService(deps Dependencies) *Service {
	s := &Service{
		store:     deps.Store,
		files:     deps.Files,
		catalog:   deps.Catalog,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		now:       deps.Clock,
	}
	if s.logger == nil {
		s.logger = log.New().WithField("component", "orders")
	}
	if s.store == nil {
		s.store = memory.NewStore()
	}
	if s.files == nil {
		s.files = flatfile.NewRepository(flatfile.DefaultPendingPath, flatfile.DefaultCompletedPath, s.logger.WithField("layer", "flatfile"))
	}
	if s.catalog == nil {
		s.catalog = catalog.Default()
	}
	if s.metrics == nil {
		s.metrics = metrics.NewOrderMetrics()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Catalog возвращает каталог, из которого выбираются позиции.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// AddOrder создаёт заказ. Срочный заказ сразу попадает на вершину истории,
// обычный — в хвост очереди. Возвращает заказ и коллекцию, в которую он попал.
func (s *Service) AddOrder(id int, customer string, items []domain.Item, urgent bool) (domain.Order, domain.Collection) {
	order := domain.NewOrder(id, customer, items, urgent, s.now())

	where := domain.CollectionPending
	if urgent {
		where = domain.CollectionCompleted
		s.store.PushCompleted(order)
	} else {
		s.store.EnqueuePending(order)
	}

	s.metrics.RecordOrderCreated(urgent)
	s.syncGauges()
	s.logger.WithFields(log.Fields{
		"order_id": order.ID(),
		"urgent":   urgent,
		"items":    order.ItemCount(),
		"total":    order.Total().String(),
	}).Info("order registered")

	s.publish(domain.OrderEventCreated, order, where)
	if urgent {
		s.publish(domain.OrderEventCompleted, order, where)
	}
	return order, where
}

// ProcessNext переносит самый старый ожидающий заказ в историю.
func (s *Service) ProcessNext() (domain.Order, error) {
	order, err := s.store.ProcessNext()
	if err != nil {
		return domain.Order{}, err
	}

	s.metrics.RecordOrderProcessed()
	s.syncGauges()
	s.logger.WithField("order_id", order.ID()).Info("order processed")
	s.publish(domain.OrderEventCompleted, order, domain.CollectionCompleted)
	return order, nil
}

// Pending перечисляет ожидающие заказы в порядке поступления.
func (s *Service) Pending() iter.Seq[domain.Order] {
	return s.store.Pending()
}

// Completed перечисляет историю от самого нового заказа.
func (s *Service) Completed() iter.Seq[domain.Order] {
	return s.store.CompletedNewestFirst()
}

// Counts возвращает размеры очереди и истории.
func (s *Service) Counts() (pending, completed int) {
	return s.store.PendingLen(), s.store.CompletedLen()
}

// FindByID ищет заказ сначала в истории, затем в очереди.
func (s *Service) FindByID(id int) (domain.Order, domain.Collection, error) {
	return s.store.FindByID(id)
}

// FinancialReport строит отчёт по истории выполненных заказов.
func (s *Service) FinancialReport() (domain.FinancialReport, error) {
	return s.store.FinancialReport()
}

// Save перезаписывает оба файла текущим состоянием.
func (s *Service) Save() error {
	start := time.Now()
	err := s.files.SaveAll(s.store)
	s.metrics.RecordPersistence(metrics.OperationSave, time.Since(start), err)
	if err != nil {
		s.logger.WithError(err).Warn("failed to save orders")
		return fmt.Errorf("save orders: %w", err)
	}
	pending, completed := s.Counts()
	s.logger.WithFields(log.Fields{
		"pending":   pending,
		"completed": completed,
	}).Info("orders saved")
	return nil
}

// Load заменяет состояние содержимым файлов. Очистка выполняется всегда,
// даже если файлы недоступны.
func (s *Service) Load() (flatfile.LoadResult, error) {
	start := time.Now()
	result, err := s.files.LoadAll(s.store)
	s.metrics.RecordPersistence(metrics.OperationLoad, time.Since(start), err)
	s.syncGauges()
	if err != nil {
		s.logger.WithError(err).Warn("failed to load orders")
		return flatfile.LoadResult{}, fmt.Errorf("load orders: %w", err)
	}

	s.metrics.RecordSkippedRecords(result.Skipped)
	s.logger.WithFields(log.Fields{
		"pending":   result.Pending,
		"completed": result.Completed,
		"skipped":   result.Skipped,
	}).Info("orders loaded")
	return result, nil
}

// SavedOrders читает оба файла для просмотра, не затрагивая состояние в памяти.
func (s *Service) SavedOrders() (SavedOrders, error) {
	start := time.Now()
	saved, err := s.readSaved()
	s.metrics.RecordPersistence(metrics.OperationView, time.Since(start), err)
	if err != nil {
		return SavedOrders{}, fmt.Errorf("read saved orders: %w", err)
	}
	return saved, nil
}

func (s *Service) readSaved() (SavedOrders, error) {
	pending, err := s.files.ReadAll(domain.CollectionPending)
	if err != nil {
		return SavedOrders{}, err
	}
	completed, err := s.files.ReadAll(domain.CollectionCompleted)
	if err != nil {
		return SavedOrders{}, err
	}
	return SavedOrders{Pending: pending, Completed: completed}, nil
}

// SavedOrdersIn читает один файл; номера в списке (с 1) совпадают с индексами для DeleteSaved.
func (s *Service) SavedOrdersIn(kind domain.Collection) ([]domain.Order, error) {
	orders, err := s.files.ReadAll(kind)
	if err != nil {
		return nil, fmt.Errorf("read saved %s orders: %w", kind, err)
	}
	return orders, nil
}

// DeleteSaved удаляет запись из файла коллекции и перезагружает оба файла.
// Ошибка возвращается только если удаление не выполнено; сбой перезагрузки
// отражается в DeleteResult.ReloadErr.
func (s *Service) DeleteSaved(kind domain.Collection, displayIndex int) (DeleteResult, error) {
	start := time.Now()
	removed, err := s.files.DeleteAt(kind, displayIndex)
	s.metrics.RecordPersistence(metrics.OperationDelete, time.Since(start), err)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidSelection) {
			s.logger.WithError(err).WithField("collection", kind).Warn("failed to delete saved order")
		}
		return DeleteResult{}, fmt.Errorf("delete saved %s order: %w", kind, err)
	}

	s.metrics.RecordOrderDeleted(string(kind))
	s.publish(domain.OrderEventDeleted, removed, kind)

	result := DeleteResult{Order: removed}
	result.Reload, result.ReloadErr = s.Load()
	return result, nil
}

func (s *Service) syncGauges() {
	s.metrics.SetCollectionSizes(s.store.PendingLen(), s.store.CompletedLen())
}

// publish отправляет событие; сбой публикации не влияет на операцию.
func (s *Service) publish(eventType domain.OrderEventType, order domain.Order, where domain.Collection) {
	if s.publisher == nil {
		return
	}
	event := domain.NewOrderEvent(eventType, order, where, s.now())
	if err := s.publisher.Publish(event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id":   order.ID(),
			"event_type": eventType,
		}).Warn("failed to publish order event")
	}
}
