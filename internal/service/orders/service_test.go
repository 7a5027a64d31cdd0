package orders_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/counter/internal/catalog"
	"github.com/vladislavdragonenkov/counter/internal/domain"
	"github.com/vladislavdragonenkov/counter/internal/metrics"
	"github.com/vladislavdragonenkov/counter/internal/service/orders"
	"github.com/vladislavdragonenkov/counter/internal/storage/flatfile"
	"github.com/vladislavdragonenkov/counter/internal/storage/memory"
)

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: false, DisableTimestamp: true})
	logger.SetLevel(logrus.DebugLevel)
	return logger.WithField("component", "test")
}

type stubPublisher struct {
	mu     sync.Mutex
	events []domain.OrderEvent
	err    error
}

func (p *stubPublisher) Publish(event domain.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *stubPublisher) types() []domain.OrderEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.OrderEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

type fixture struct {
	svc       *orders.Service
	publisher *stubPublisher
	pending   string
	completed string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	pending := filepath.Join(dir, flatfile.DefaultPendingPath)
	completed := filepath.Join(dir, flatfile.DefaultCompletedPath)
	logger := loggerForTests()
	publisher := &stubPublisher{}
	clock := time.Date(2024, time.August, 10, 15, 4, 5, 0, time.Local)

	svc := orders.NewService(orders.Dependencies{
		Store:     memory.NewStore(),
		Files:     flatfile.NewRepository(pending, completed, logger),
		Catalog:   catalog.Default(),
		Publisher: publisher,
		Metrics:   metrics.NewOrderMetrics(),
		Logger:    logger,
		Clock:     func() time.Time { return clock },
	})
	return fixture{svc: svc, publisher: publisher, pending: pending, completed: completed}
}

func item(name, price string) domain.Item {
	return domain.NewItem(name, decimal.RequireFromString(price))
}

func collectIDs(seq func(func(domain.Order) bool)) []int {
	var out []int
	for o := range seq {
		out = append(out, o.ID())
	}
	return out
}

func TestService_EspressoLatteScenario(t *testing.T) {
	f := newFixture(t)

	_, where := f.svc.AddOrder(1, "Ana", []domain.Item{item("Espresso", "15.00")}, false)
	require.Equal(t, domain.CollectionPending, where)
	_, where = f.svc.AddOrder(2, "Luis", []domain.Item{item("Latte", "19.50")}, true)
	require.Equal(t, domain.CollectionCompleted, where)

	require.Equal(t, []int{1}, collectIDs(f.svc.Pending()))
	require.Equal(t, []int{2}, collectIDs(f.svc.Completed()))

	processed, err := f.svc.ProcessNext()
	require.NoError(t, err)
	require.Equal(t, 1, processed.ID())
	require.Equal(t, []int{1, 2}, collectIDs(f.svc.Completed()))

	found, in, err := f.svc.FindByID(1)
	require.NoError(t, err)
	require.Equal(t, domain.CollectionCompleted, in)
	require.Equal(t, "Ana", found.CustomerName())

	report, err := f.svc.FinancialReport()
	require.NoError(t, err)
	require.Equal(t, 2, report.Orders)
	require.True(t, report.Revenue.Equal(decimal.RequireFromString("34.50")))
	require.True(t, report.Average.Equal(decimal.RequireFromString("17.25")))
	require.Equal(t, map[string]int{"Espresso": 1, "Latte": 1}, report.ItemsSold)

	require.Equal(t, []domain.OrderEventType{
		domain.OrderEventCreated,
		domain.OrderEventCreated,
		domain.OrderEventCompleted,
		domain.OrderEventCompleted,
	}, f.publisher.types())
}

func TestService_AddOrderUsesClock(t *testing.T) {
	f := newFixture(t)

	order, _ := f.svc.AddOrder(3, "Marta", nil, false)

	require.Equal(t, "10/08/2024 15:04:05", order.CreatedAt())
	require.True(t, order.Total().IsZero())
}

func TestService_ProcessNextEmpty(t *testing.T) {
	f := newFixture(t)
	f.svc.AddOrder(9, "Ana", nil, true)

	_, err := f.svc.ProcessNext()
	require.ErrorIs(t, err, domain.ErrEmptyQueue)

	pending, completed := f.svc.Counts()
	require.Equal(t, 0, pending)
	require.Equal(t, 1, completed)
}

func TestService_PublishFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	f.svc.AddOrder(1, "Ana", nil, false)
	_, err := f.svc.ProcessNext()
	require.NoError(t, err)

	_, completed := f.svc.Counts()
	require.Equal(t, 1, completed)
}

func TestService_WithoutPublisher(t *testing.T) {
	svc := orders.NewService(orders.Dependencies{
		Files:  flatfile.NewRepository(filepath.Join(t.TempDir(), "p"), filepath.Join(t.TempDir(), "c"), nil),
		Logger: loggerForTests(),
	})

	svc.AddOrder(1, "Ana", nil, true)
	require.Equal(t, 10, svc.Catalog().Len())
	require.Equal(t, []int{1}, collectIDs(svc.Completed()))
}

func TestService_SaveLoadRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.svc.AddOrder(1, "Ana", []domain.Item{item("Espresso", "15")}, false)
	f.svc.AddOrder(2, "Luis", []domain.Item{item("Latte", "19.5")}, false)
	f.svc.AddOrder(3, "Marta", []domain.Item{item("Encanelados", "21.75")}, true)
	_, err := f.svc.ProcessNext()
	require.NoError(t, err)
	f.svc.AddOrder(4, "Pedro", nil, true)

	wantPending := collectIDs(f.svc.Pending())
	wantCompleted := collectIDs(f.svc.Completed())

	require.NoError(t, f.svc.Save())
	f.svc.AddOrder(5, "unsaved", nil, false)

	result, err := f.svc.Load()
	require.NoError(t, err)
	require.Equal(t, flatfile.LoadResult{Pending: 1, Completed: 3}, result)
	require.Equal(t, wantPending, collectIDs(f.svc.Pending()))
	require.Equal(t, wantCompleted, collectIDs(f.svc.Completed()))
}

func TestService_LoadMissingFilesClearsState(t *testing.T) {
	f := newFixture(t)
	f.svc.AddOrder(1, "Ana", nil, false)
	f.svc.AddOrder(2, "Luis", nil, true)

	_, err := f.svc.Load()
	require.ErrorIs(t, err, domain.ErrFileUnavailable)

	pending, completed := f.svc.Counts()
	require.Zero(t, pending)
	require.Zero(t, completed)
}

func TestService_SaveFileUnavailable(t *testing.T) {
	svc := orders.NewService(orders.Dependencies{
		Files:  flatfile.NewRepository(filepath.Join(t.TempDir(), "missing", "p"), filepath.Join(t.TempDir(), "c"), loggerForTests()),
		Logger: loggerForTests(),
	})
	svc.AddOrder(1, "Ana", nil, false)

	require.ErrorIs(t, svc.Save(), domain.ErrFileUnavailable)
	pending, _ := svc.Counts()
	require.Equal(t, 1, pending)
}

func TestService_SavedOrders(t *testing.T) {
	f := newFixture(t)
	f.svc.AddOrder(1, "Ana", nil, false)
	f.svc.AddOrder(2, "Luis", nil, true)
	f.svc.AddOrder(3, "Marta", nil, true)
	require.NoError(t, f.svc.Save())

	saved, err := f.svc.SavedOrders()
	require.NoError(t, err)
	require.Len(t, saved.Pending, 1)
	// Файл истории хранит заказы от старых к новым.
	require.Equal(t, 2, saved.Completed[0].ID())
	require.Equal(t, 3, saved.Completed[1].ID())

	require.NoError(t, os.Remove(f.completed))
	_, err = f.svc.SavedOrders()
	require.ErrorIs(t, err, domain.ErrFileUnavailable)

	pendingOnly, err := f.svc.SavedOrdersIn(domain.CollectionPending)
	require.NoError(t, err)
	require.Len(t, pendingOnly, 1)
}

func TestService_DeleteSavedReloads(t *testing.T) {
	f := newFixture(t)
	f.svc.AddOrder(1, "Ana", nil, false)
	f.svc.AddOrder(2, "Luis", nil, false)
	f.svc.AddOrder(3, "Marta", nil, false)
	f.svc.AddOrder(4, "Pedro", nil, true)
	require.NoError(t, f.svc.Save())

	// Состояние в памяти, не попавшее в файлы, пропадает после перезагрузки.
	f.svc.AddOrder(5, "unsaved", nil, false)

	result, err := f.svc.DeleteSaved(domain.CollectionPending, 2)
	require.NoError(t, err)
	require.NoError(t, result.ReloadErr)
	require.Equal(t, 2, result.Order.ID())
	require.Equal(t, flatfile.LoadResult{Pending: 2, Completed: 1}, result.Reload)

	require.Equal(t, []int{1, 3}, collectIDs(f.svc.Pending()))
	require.Equal(t, []int{4}, collectIDs(f.svc.Completed()))
	require.Contains(t, f.publisher.types(), domain.OrderEventDeleted)
}

func TestService_DeleteSavedInvalidSelection(t *testing.T) {
	f := newFixture(t)
	f.svc.AddOrder(1, "Ana", nil, false)
	require.NoError(t, f.svc.Save())
	f.svc.AddOrder(2, "unsaved", nil, false)

	_, err := f.svc.DeleteSaved(domain.CollectionPending, 5)
	require.ErrorIs(t, err, domain.ErrInvalidSelection)

	// Без удаления перезагрузки нет: несохранённый заказ на месте.
	require.Equal(t, []int{1, 2}, collectIDs(f.svc.Pending()))
}

func TestService_DeleteSavedReloadFailure(t *testing.T) {
	f := newFixture(t)
	f.svc.AddOrder(1, "Ana", nil, false)
	f.svc.AddOrder(2, "Luis", nil, false)
	require.NoError(t, f.svc.Save())
	require.NoError(t, os.Remove(f.completed))

	result, err := f.svc.DeleteSaved(domain.CollectionPending, 1)
	require.NoError(t, err)
	require.Equal(t, 1, result.Order.ID())
	require.ErrorIs(t, result.ReloadErr, domain.ErrFileUnavailable)

	pending, completed := f.svc.Counts()
	require.Zero(t, pending)
	require.Zero(t, completed)
}
