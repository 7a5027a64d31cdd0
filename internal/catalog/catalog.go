// Package catalog содержит неизменяемую таблицу товаров стойки.
package catalog

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/counter/internal/domain"
)

// Catalog — таблица товаров, упорядоченная по названию.
// Порядок стабилен между запусками, поэтому номера позиций 1..N не меняются.
type Catalog struct {
	entries []domain.Item
}

// New строит каталог из таблицы "название → цена".
func New(prices map[string]decimal.Decimal) *Catalog {
	entries := make([]domain.Item, 0, len(prices))
	for name, price := range prices {
		entries = append(entries, domain.NewItem(name, price))
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return &Catalog{entries: entries}
}

// Default возвращает меню кафетерия (цены в кетцалях).
func Default() *Catalog {
	return New(map[string]decimal.Decimal{
		"Latte":                            decimal.RequireFromString("19.50"),
		"Capuchino de vainilla":            decimal.RequireFromString("23.00"),
		"Omelet de jamon y queso":          decimal.RequireFromString("27.50"),
		"Espresso":                         decimal.RequireFromString("15.00"),
		"Chocolate con leche de almendras": decimal.RequireFromString("25.25"),
		"Pan con chilerelleno":             decimal.RequireFromString("15.00"),
		"Encanelados":                      decimal.RequireFromString("21.75"),
		"Pastel de tres leches":            decimal.RequireFromString("35.50"),
		"Pastel de almendras":              decimal.RequireFromString("29.75"),
		"Pan dulce relleno de cajeta":      decimal.RequireFromString("11.50"),
	})
}

// Entries возвращает копию позиций в порядке нумерации.
func (c *Catalog) Entries() []domain.Item {
	out := make([]domain.Item, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len возвращает количество позиций.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Pick возвращает позицию по номеру (с 1).
func (c *Catalog) Pick(n int) (domain.Item, error) {
	if n < 1 || n > len(c.entries) {
		return domain.Item{}, fmt.Errorf("catalog entry %d of %d: %w", n, len(c.entries), domain.ErrInvalidSelection)
	}
	return c.entries[n-1], nil
}
