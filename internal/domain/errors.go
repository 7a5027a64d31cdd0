package domain

import "errors"

var (
	// ErrEmptyQueue возвращается, если в очереди нет ожидающих заказов.
	ErrEmptyQueue = errors.New("no pending orders to process")
	// ErrOrderNotFound возвращается, если заказ не найден ни в одной коллекции.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidSelection — выбор вне допустимого диапазона (меню, каталог, удаление).
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrFileUnavailable — файл заказов не удалось открыть на чтение или запись.
	ErrFileUnavailable = errors.New("orders file unavailable")
	// ErrCorruptNumber — нечисловое значение в числовом поле записи.
	ErrCorruptNumber = errors.New("corrupt numeric field")
	// ErrMalformedRecord — строка файла не соответствует формату записи.
	ErrMalformedRecord = errors.New("malformed order record")
	// ErrNoCompletedOrders — отчёт нельзя построить по пустой истории.
	ErrNoCompletedOrders = errors.New("no completed orders")
)

// IsSkippable сообщает, что ошибка относится к одной строке файла
// и загрузка может продолжаться со следующей.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrMalformedRecord) || errors.Is(err, ErrCorruptNumber)
}
