package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// FinancialReport агрегирует историю выполненных заказов.
type FinancialReport struct {
	// Orders — количество выполненных заказов.
	Orders int
	// Revenue — сумма Total по всем выполненным заказам.
	Revenue decimal.Decimal
	// Average = Revenue / Orders.
	Average decimal.Decimal
	// ItemsSold — проданные единицы по названию позиции (штуки, не выручка).
	ItemsSold map[string]int
}

// ItemNames возвращает названия проданных позиций в алфавитном порядке.
func (r FinancialReport) ItemNames() []string {
	names := make([]string, 0, len(r.ItemsSold))
	for name := range r.ItemsSold {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnitsSold — общее число пар (заказ, позиция).
func (r FinancialReport) UnitsSold() int {
	var n int
	for _, count := range r.ItemsSold {
		n += count
	}
	return n
}
