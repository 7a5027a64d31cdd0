package flatfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/counter/internal/domain"
)

const (
	// DefaultPendingPath — файл очереди ожидающих заказов.
	DefaultPendingPath = "pedidos_pendientes.txt"
	// DefaultCompletedPath — файл истории выполненных заказов.
	DefaultCompletedPath = "pedidos_completados.txt"

	maxLineSize = 1 << 20
)

// LoadResult описывает итог загрузки обоих файлов.
type LoadResult struct {
	Pending   int
	Completed int
	// Skipped — строки, которые не удалось разобрать.
	Skipped int
}

// Repository читает и полностью перезаписывает два файла заказов.
type Repository struct {
	pendingPath   string
	completedPath string
	logger        *log.Entry
}

// NewRepository создаёт репозиторий поверх пары файлов.
func NewRepository(pendingPath, completedPath string, logger *log.Entry) *Repository {
	if logger == nil {
		logger = log.WithField("component", "flatfile")
	}
	return &Repository{
		pendingPath:   pendingPath,
		completedPath: completedPath,
		logger:        logger,
	}
}

// Path возвращает путь к файлу коллекции.
func (r *Repository) Path(kind domain.Collection) (string, error) {
	switch kind {
	case domain.CollectionPending:
		return r.pendingPath, nil
	case domain.CollectionCompleted:
		return r.completedPath, nil
	default:
		return "", fmt.Errorf("collection %q: %w", kind, domain.ErrInvalidSelection)
	}
}

// SaveAll перезаписывает оба файла: очередь от головы к хвосту,
// историю от самого старого заказа к вершине стека.
func (r *Repository) SaveAll(src domain.OrderSource) (err error) {
	pendingFile, err := createFile(r.pendingPath)
	if err != nil {
		return err
	}
	defer closeFile(pendingFile, &err)

	completedFile, err := createFile(r.completedPath)
	if err != nil {
		return err
	}
	defer closeFile(completedFile, &err)

	pending, err := writeOrders(pendingFile, src.Pending())
	if err != nil {
		return fmt.Errorf("write %s: %w", r.pendingPath, err)
	}
	completed, err := writeOrders(completedFile, src.CompletedOldestFirst())
	if err != nil {
		return fmt.Errorf("write %s: %w", r.completedPath, err)
	}

	r.logger.WithFields(log.Fields{
		"pending":   pending,
		"completed": completed,
	}).Debug("orders saved")
	return nil
}

// LoadAll очищает dst и заполняет его из файлов. Если хотя бы один файл
// недоступен, dst остаётся пустым и возвращается ErrFileUnavailable.
func (r *Repository) LoadAll(dst domain.OrderSink) (LoadResult, error) {
	dst.Reset()

	pending, err := r.readFile(r.pendingPath)
	if err != nil {
		return LoadResult{}, err
	}
	completed, err := r.readFile(r.completedPath)
	if err != nil {
		return LoadResult{}, err
	}

	var result LoadResult
	for _, rec := range pending {
		if rec.err != nil {
			result.Skipped++
			continue
		}
		dst.EnqueuePending(rec.order)
		result.Pending++
	}
	// Строки истории идут от старых к новым: последняя строка становится вершиной.
	for _, rec := range completed {
		if rec.err != nil {
			result.Skipped++
			continue
		}
		dst.PushCompleted(rec.order)
		result.Completed++
	}

	r.logger.WithFields(log.Fields{
		"pending":   result.Pending,
		"completed": result.Completed,
		"skipped":   result.Skipped,
	}).Debug("orders loaded")
	return result, nil
}

// ReadAll разбирает файл коллекции только для просмотра, в порядке строк.
func (r *Repository) ReadAll(kind domain.Collection) ([]domain.Order, error) {
	path, err := r.Path(kind)
	if err != nil {
		return nil, err
	}
	records, err := r.readFile(path)
	if err != nil {
		return nil, err
	}
	return decoded(records), nil
}

// DeleteAt удаляет запись по её номеру среди разобранных строк (с 1)
// и полностью перезаписывает файл. Неразборчивые строки при этом отбрасываются.
func (r *Repository) DeleteAt(kind domain.Collection, displayIndex int) (domain.Order, error) {
	path, err := r.Path(kind)
	if err != nil {
		return domain.Order{}, err
	}
	records, err := r.readFile(path)
	if err != nil {
		return domain.Order{}, err
	}

	valid := make([]record, 0, len(records))
	for _, rec := range records {
		if rec.err == nil {
			valid = append(valid, rec)
		}
	}
	if displayIndex < 1 || displayIndex > len(valid) {
		return domain.Order{}, fmt.Errorf("index %d of %d: %w", displayIndex, len(valid), domain.ErrInvalidSelection)
	}

	removed := valid[displayIndex-1]
	lines := make([]string, 0, len(valid)-1)
	for i, rec := range valid {
		if i != displayIndex-1 {
			lines = append(lines, rec.raw)
		}
	}
	if err := writeLines(path, lines); err != nil {
		return domain.Order{}, err
	}

	r.logger.WithFields(log.Fields{
		"file":      path,
		"order_id":  removed.order.ID(),
		"remaining": len(lines),
		"dropped":   len(records) - len(valid),
	}).Info("order record deleted")
	return removed.order, nil
}

// record связывает исходную строку с результатом её разбора.
type record struct {
	raw   string
	order domain.Order
	err   error
}

func (r *Repository) readFile(path string) (_ []record, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrFileUnavailable, path, err)
	}
	defer closeFile(f, &err)

	var records []record
	reader := bufio.NewReader(f)
	for lineNo := 1; ; lineNo++ {
		raw, oversized, readErr := nextLine(reader)
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read %s: %w", path, readErr)
		}

		var (
			order     domain.Order
			decodeErr error
		)
		if oversized {
			decodeErr = fmt.Errorf("line longer than %d bytes: %w", maxLineSize, domain.ErrMalformedRecord)
		} else {
			order, decodeErr = Decode(raw)
		}
		if decodeErr != nil {
			r.logger.WithError(decodeErr).WithFields(log.Fields{
				"file": path,
				"line": lineNo,
			}).Warn("skipping order record")
		}
		records = append(records, record{raw: raw, order: order, err: decodeErr})
	}
	return records, nil
}

// nextLine читает одну строку без завершающего перевода строки.
// Строка длиннее maxLineSize не накапливается в памяти: она дочитывается
// до конца и возвращается пустой с oversized=true.
func nextLine(r *bufio.Reader) (line string, oversized bool, err error) {
	var (
		buf  []byte
		read bool
	)
	for {
		chunk, err := r.ReadSlice('\n')
		read = read || len(chunk) > 0
		if !oversized {
			if len(buf)+len(chunk) > maxLineSize+1 {
				oversized, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}

		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if !read {
				return "", false, io.EOF
			}
		case err != nil:
			return "", false, err
		}

		line = strings.TrimSuffix(strings.TrimSuffix(string(buf), "\n"), "\r")
		return line, oversized, nil
	}
}

func decoded(records []record) []domain.Order {
	orders := make([]domain.Order, 0, len(records))
	for _, rec := range records {
		if rec.err == nil {
			orders = append(orders, rec.order)
		}
	}
	return orders
}

func createFile(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", domain.ErrFileUnavailable, path, err)
	}
	return f, nil
}

func writeLines(path string, lines []string) (err error) {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer closeFile(f, &err)

	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func writeOrders(dst io.Writer, orders iter.Seq[domain.Order]) (int, error) {
	w := bufio.NewWriter(dst)
	var n int
	for order := range orders {
		if _, err := w.WriteString(Encode(order) + "\n"); err != nil {
			return n, err
		}
		n++
	}
	return n, w.Flush()
}

// closeFile закрывает файл и добавляет ошибку закрытия к результату операции.
func closeFile(f *os.File, err *error) {
	if cerr := f.Close(); cerr != nil {
		*err = errors.Join(*err, fmt.Errorf("close %s: %w", f.Name(), cerr))
	}
}
