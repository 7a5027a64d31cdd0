package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/counter/internal/domain"
	"github.com/vladislavdragonenkov/counter/internal/storage/memory"
)

var now = time.Date(2024, time.May, 1, 12, 0, 0, 0, time.Local)

func newOrder(id int, urgent bool, items ...domain.Item) domain.Order {
	return domain.NewOrder(id, "customer", items, urgent, now)
}

func item(name, price string) domain.Item {
	return domain.NewItem(name, decimal.RequireFromString(price))
}

func ids(seq func(func(domain.Order) bool)) []int {
	var out []int
	for order := range seq {
		out = append(out, order.ID())
	}
	return out
}

func TestStore_ProcessNextIsFIFO(t *testing.T) {
	store := memory.NewStore()
	for id := 1; id <= 5; id++ {
		store.EnqueuePending(newOrder(id, false))
	}

	var processed []int
	for store.PendingLen() > 0 {
		order, err := store.ProcessNext()
		require.NoError(t, err)
		processed = append(processed, order.ID())
	}

	require.Equal(t, []int{1, 2, 3, 4, 5}, processed)
	require.Equal(t, 5, store.CompletedLen())
}

func TestStore_CompletedNewestFirstIsLIFO(t *testing.T) {
	store := memory.NewStore()
	store.PushCompleted(newOrder(10, true))
	store.EnqueuePending(newOrder(11, false))
	store.EnqueuePending(newOrder(12, false))
	_, err := store.ProcessNext()
	require.NoError(t, err)
	store.PushCompleted(newOrder(13, true))
	_, err = store.ProcessNext()
	require.NoError(t, err)

	require.Equal(t, []int{12, 13, 11, 10}, ids(store.CompletedNewestFirst()))
	require.Equal(t, []int{10, 11, 13, 12}, ids(store.CompletedOldestFirst()))
}

func TestStore_ProcessNextEmpty(t *testing.T) {
	store := memory.NewStore()
	store.PushCompleted(newOrder(1, true))

	_, err := store.ProcessNext()
	require.ErrorIs(t, err, domain.ErrEmptyQueue)
	require.Equal(t, 0, store.PendingLen())
	require.Equal(t, []int{1}, ids(store.CompletedNewestFirst()))
}

func TestStore_IterationIsNonDestructiveAndRestartable(t *testing.T) {
	store := memory.NewStore()
	store.EnqueuePending(newOrder(1, false))
	store.EnqueuePending(newOrder(2, false))
	store.EnqueuePending(newOrder(3, false))

	seq := store.Pending()
	require.Equal(t, []int{1, 2, 3}, ids(seq))
	require.Equal(t, []int{1, 2, 3}, ids(seq))

	// Досрочный выход из цикла не должен ломать последующие обходы.
	for order := range seq {
		if order.ID() == 2 {
			break
		}
	}
	require.Equal(t, 3, store.PendingLen())
	require.Equal(t, []int{1, 2, 3}, ids(store.Pending()))
}

func TestStore_FindByIDPrefersCompleted(t *testing.T) {
	store := memory.NewStore()
	pendingDup := domain.NewOrder(5, "pending-one", nil, false, now)
	completedDup := domain.NewOrder(5, "completed-one", nil, true, now)
	store.EnqueuePending(newOrder(4, false))
	store.EnqueuePending(pendingDup)
	store.PushCompleted(completedDup)

	order, where, err := store.FindByID(5)
	require.NoError(t, err)
	require.Equal(t, domain.CollectionCompleted, where)
	require.Equal(t, "completed-one", order.CustomerName())

	order, where, err = store.FindByID(4)
	require.NoError(t, err)
	require.Equal(t, domain.CollectionPending, where)
	require.Equal(t, 4, order.ID())

	_, _, err = store.FindByID(42)
	require.True(t, errors.Is(err, domain.ErrOrderNotFound))
}

func TestStore_FindByIDNewestCompletedWins(t *testing.T) {
	store := memory.NewStore()
	store.PushCompleted(domain.NewOrder(9, "older", nil, false, now))
	store.PushCompleted(domain.NewOrder(9, "newer", nil, false, now))

	order, _, err := store.FindByID(9)
	require.NoError(t, err)
	require.Equal(t, "newer", order.CustomerName())
}

func TestStore_FinancialReport(t *testing.T) {
	store := memory.NewStore()
	store.EnqueuePending(newOrder(1, false, item("Espresso", "15.00")))
	store.PushCompleted(newOrder(2, true, item("Latte", "19.50")))
	_, err := store.ProcessNext()
	require.NoError(t, err)

	report, err := store.FinancialReport()
	require.NoError(t, err)
	require.Equal(t, 2, report.Orders)
	require.True(t, report.Revenue.Equal(decimal.RequireFromString("34.50")), "revenue %s", report.Revenue)
	require.True(t, report.Average.Equal(decimal.RequireFromString("17.25")), "average %s", report.Average)
	require.Equal(t, map[string]int{"Espresso": 1, "Latte": 1}, report.ItemsSold)
}

func TestStore_FinancialReportCountsUnits(t *testing.T) {
	store := memory.NewStore()
	store.PushCompleted(newOrder(1, false, item("Latte", "19.50"), item("Latte", "19.50"), item("Encanelados", "21.75")))
	store.PushCompleted(newOrder(2, false, item("Latte", "19.50")))
	store.PushCompleted(newOrder(3, false))
	store.EnqueuePending(newOrder(4, false, item("Espresso", "15")))

	report, err := store.FinancialReport()
	require.NoError(t, err)
	require.Equal(t, 3, report.Orders)
	require.Equal(t, 4, report.UnitsSold())
	require.Equal(t, 3, report.ItemsSold["Latte"])
	require.NotContains(t, report.ItemsSold, "Espresso")
	require.True(t, report.Average.Equal(report.Revenue.Div(decimal.NewFromInt(3))))
}

func TestStore_FinancialReportEmpty(t *testing.T) {
	store := memory.NewStore()
	store.EnqueuePending(newOrder(1, false))

	_, err := store.FinancialReport()
	require.ErrorIs(t, err, domain.ErrNoCompletedOrders)
}

func TestStore_Reset(t *testing.T) {
	store := memory.NewStore()
	store.EnqueuePending(newOrder(1, false))
	store.PushCompleted(newOrder(2, true))

	store.Reset()

	require.Equal(t, 0, store.PendingLen())
	require.Equal(t, 0, store.CompletedLen())
	require.Empty(t, ids(store.Pending()))
}
