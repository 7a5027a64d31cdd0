package memory

import (
	"fmt"
	"iter"

	"github.com/eapache/queue"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/counter/internal/domain"
)

// Store хранит ожидающие заказы в очереди (FIFO) и выполненные в стеке (LIFO).
// Не предназначен для конкурентного доступа: вся работа идёт в одной сессии.
type Store struct {
	pending   *queue.Queue
	completed []domain.Order
}

// NewStore возвращает пустое хранилище.
func NewStore() *Store {
	return &Store{pending: queue.New()}
}

// EnqueuePending ставит заказ в хвост очереди.
func (s *Store) EnqueuePending(order domain.Order) {
	s.pending.Add(order)
}

// PushCompleted кладёт заказ на вершину истории.
func (s *Store) PushCompleted(order domain.Order) {
	s.completed = append(s.completed, order)
}

// ProcessNext снимает голову очереди и переносит её на вершину истории.
// При пустой очереди возвращает ErrEmptyQueue и ничего не меняет.
func (s *Store) ProcessNext() (domain.Order, error) {
	if s.pending.Length() == 0 {
		return domain.Order{}, domain.ErrEmptyQueue
	}
	order := s.pending.Remove().(domain.Order)
	s.PushCompleted(order)
	return order, nil
}

// Pending перечисляет очередь от головы к хвосту, не изменяя её.
func (s *Store) Pending() iter.Seq[domain.Order] {
	return func(yield func(domain.Order) bool) {
		for i := 0; i < s.pending.Length(); i++ {
			if !yield(s.pending.Get(i).(domain.Order)) {
				return
			}
		}
	}
}

// CompletedNewestFirst перечисляет историю от вершины стека к основанию.
func (s *Store) CompletedNewestFirst() iter.Seq[domain.Order] {
	return func(yield func(domain.Order) bool) {
		for i := len(s.completed) - 1; i >= 0; i-- {
			if !yield(s.completed[i]) {
				return
			}
		}
	}
}

// CompletedOldestFirst перечисляет историю от основания к вершине.
func (s *Store) CompletedOldestFirst() iter.Seq[domain.Order] {
	return func(yield func(domain.Order) bool) {
		for _, order := range s.completed {
			if !yield(order) {
				return
			}
		}
	}
}

// FindByID ищет сначала в истории (от новых к старым), затем в очереди.
// При совпадении id в обеих коллекциях побеждает выполненный заказ.
func (s *Store) FindByID(id int) (domain.Order, domain.Collection, error) {
	for order := range s.CompletedNewestFirst() {
		if order.ID() == id {
			return order, domain.CollectionCompleted, nil
		}
	}
	for order := range s.Pending() {
		if order.ID() == id {
			return order, domain.CollectionPending, nil
		}
	}
	return domain.Order{}, "", fmt.Errorf("order id %d: %w", id, domain.ErrOrderNotFound)
}

// FinancialReport считает выручку, средний чек и проданные единицы по истории.
func (s *Store) FinancialReport() (domain.FinancialReport, error) {
	if len(s.completed) == 0 {
		return domain.FinancialReport{}, domain.ErrNoCompletedOrders
	}

	report := domain.FinancialReport{
		Revenue:   decimal.Zero,
		ItemsSold: make(map[string]int),
	}
	for _, order := range s.completed {
		report.Orders++
		report.Revenue = report.Revenue.Add(order.Total())
		for _, item := range order.Items() {
			report.ItemsSold[item.Name]++
		}
	}
	report.Average = report.Revenue.Div(decimal.NewFromInt(int64(report.Orders)))
	return report, nil
}

// PendingLen возвращает длину очереди.
func (s *Store) PendingLen() int {
	return s.pending.Length()
}

// CompletedLen возвращает размер истории.
func (s *Store) CompletedLen() int {
	return len(s.completed)
}

// Reset очищает обе коллекции.
func (s *Store) Reset() {
	s.pending = queue.New()
	s.completed = nil
}

var (
	_ domain.OrderSource = (*Store)(nil)
	_ domain.OrderSink   = (*Store)(nil)
)
