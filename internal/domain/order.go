package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout — формат даты создания заказа (DD/MM/YYYY HH:MM:SS).
const TimestampLayout = "02/01/2006 15:04:05"

// Item — позиция каталога: название и цена за единицу.
type Item struct {
	Name  string
	Price decimal.Decimal
}

// NewItem собирает позицию из названия и цены.
func NewItem(name string, price decimal.Decimal) Item {
	return Item{Name: name, Price: price}
}

// Equal сравнивает позиции по значению (цены — численно, без учёта масштаба).
func (i Item) Equal(other Item) bool {
	return i.Name == other.Name && i.Price.Equal(other.Price)
}

// Order — заказ клиента. После создания не изменяется.
type Order struct {
	id        int
	customer  string
	items     []Item
	total     decimal.Decimal
	createdAt string
	urgent    bool
}

// NewOrder создаёт заказ: сумма считается по позициям, дата фиксируется один раз.
// Пустой список позиций допустим (сумма 0), уникальность id не проверяется.
func NewOrder(id int, customer string, items []Item, urgent bool, at time.Time) Order {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price)
	}
	return Order{
		id:        id,
		customer:  customer,
		items:     cloneItems(items),
		total:     total,
		createdAt: at.Local().Format(TimestampLayout),
		urgent:    urgent,
	}
}

// RestoreOrder восстанавливает заказ из хранилища: все поля берутся как есть,
// сумма не пересчитывается.
func RestoreOrder(id int, customer string, items []Item, total decimal.Decimal, createdAt string, urgent bool) Order {
	return Order{
		id:        id,
		customer:  customer,
		items:     cloneItems(items),
		total:     total,
		createdAt: createdAt,
		urgent:    urgent,
	}
}

func (o Order) ID() int                { return o.id }
func (o Order) CustomerName() string   { return o.customer }
func (o Order) Total() decimal.Decimal { return o.total }
func (o Order) CreatedAt() string      { return o.createdAt }
func (o Order) Urgent() bool           { return o.urgent }

// Items возвращает копию позиций в порядке добавления.
func (o Order) Items() []Item {
	return cloneItems(o.items)
}

// ItemCount возвращает количество позиций без копирования.
func (o Order) ItemCount() int {
	return len(o.items)
}

// Equal сравнивает заказы поле за полем.
func (o Order) Equal(other Order) bool {
	if o.id != other.id || o.customer != other.customer || o.createdAt != other.createdAt || o.urgent != other.urgent {
		return false
	}
	if !o.total.Equal(other.total) || len(o.items) != len(other.items) {
		return false
	}
	for i := range o.items {
		if !o.items[i].Equal(other.items[i]) {
			return false
		}
	}
	return true
}

// Summary — однострочное представление для списков.
func (o Order) Summary() string {
	names := make([]string, 0, len(o.items))
	for _, item := range o.items {
		names = append(names, item.Name)
	}
	return fmt.Sprintf("%s | Fecha: %s | Total: Q%s\n    Productos: %s",
		o.header(), o.createdAt, o.total.StringFixed(2), strings.Join(names, ", "))
}

// Detail — полное описание заказа с ценой каждой позиции.
func (o Order) Detail() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s | Fecha: %s\n", o.header(), o.createdAt)
	b.WriteString("Productos:\n")
	for _, item := range o.items {
		fmt.Fprintf(&b, "  - %s: Q%s\n", item.Name, item.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total a pagar: Q%s", o.total.StringFixed(2))
	return b.String()
}

func (o Order) header() string {
	h := fmt.Sprintf("ID: %d | Cliente: %s", o.id, o.customer)
	if o.urgent {
		h += " URGENTE"
	}
	return h
}

func cloneItems(items []Item) []Item {
	if len(items) == 0 {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
