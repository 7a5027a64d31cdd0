// Package flatfile хранит заказы в текстовых файлах: одна запись на строку,
// поля разделены '|', позиция заказа кодируется как "название,цена".
package flatfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/counter/internal/domain"
)

const (
	fieldSeparator = "|"
	itemSeparator  = ","

	// id, клиент, количество позиций, сумма, дата, флаг срочности.
	minFields = 6

	urgentTrue  = "1"
	urgentFalse = "0"
)

// Encode сериализует заказ в одну строку без завершающего перевода строки.
// Цены пишутся с полной точностью, чтобы повторные сохранения ничего не теряли.
func Encode(order domain.Order) string {
	items := order.Items()
	fields := make([]string, 0, minFields+len(items))
	fields = append(fields,
		strconv.Itoa(order.ID()),
		order.CustomerName(),
		strconv.Itoa(len(items)),
	)
	for _, item := range items {
		fields = append(fields, item.Name+itemSeparator+item.Price.String())
	}
	urgent := urgentFalse
	if order.Urgent() {
		urgent = urgentTrue
	}
	fields = append(fields, order.Total().String(), order.CreatedAt(), urgent)
	return strings.Join(fields, fieldSeparator)
}

// Decode разбирает строку файла. Ошибки ErrMalformedRecord и ErrCorruptNumber
// относятся только к этой строке.
func Decode(line string) (domain.Order, error) {
	line = strings.TrimSuffix(line, "\r")
	fields := strings.Split(line, fieldSeparator)
	if len(fields) < minFields {
		return domain.Order{}, fmt.Errorf("%d fields: %w", len(fields), domain.ErrMalformedRecord)
	}

	id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return domain.Order{}, fmt.Errorf("id %q: %w", fields[0], domain.ErrCorruptNumber)
	}
	customer := fields[1]
	count, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return domain.Order{}, fmt.Errorf("item count %q: %w", fields[2], domain.ErrCorruptNumber)
	}
	if count < 0 || count > len(fields)-minFields {
		return domain.Order{}, fmt.Errorf("item count %d with %d fields: %w", count, len(fields), domain.ErrMalformedRecord)
	}

	items := make([]domain.Item, 0, count)
	for _, raw := range fields[3 : 3+count] {
		item, err := decodeItem(raw)
		if err != nil {
			return domain.Order{}, err
		}
		items = append(items, item)
	}

	rest := fields[3+count:]
	total, err := decimal.NewFromString(strings.TrimSpace(rest[0]))
	if err != nil {
		return domain.Order{}, fmt.Errorf("total %q: %w", rest[0], domain.ErrCorruptNumber)
	}
	urgent := rest[2] == urgentTrue

	return domain.RestoreOrder(id, customer, items, total, rest[1], urgent), nil
}

// decodeItem разбирает "название,цена"; текст после второй запятой игнорируется.
func decodeItem(raw string) (domain.Item, error) {
	parts := strings.SplitN(raw, itemSeparator, 3)
	if len(parts) < 2 {
		return domain.Item{}, fmt.Errorf("item %q: %w", raw, domain.ErrMalformedRecord)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return domain.Item{}, fmt.Errorf("item price %q: %w", parts[1], domain.ErrCorruptNumber)
	}
	return domain.NewItem(parts[0], price), nil
}
