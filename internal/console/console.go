// Package console — интерактивное меню стойки поверх движка заказов.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/counter/internal/catalog"
	"github.com/vladislavdragonenkov/counter/internal/domain"
	"github.com/vladislavdragonenkov/counter/internal/service/orders"
	"github.com/vladislavdragonenkov/counter/internal/storage/flatfile"
)

// Engine — операции движка, доступные из меню.
type Engine interface {
	Catalog() *catalog.Catalog
	AddOrder(id int, customer string, items []domain.Item, urgent bool) (domain.Order, domain.Collection)
	ProcessNext() (domain.Order, error)
	Pending() iter.Seq[domain.Order]
	Completed() iter.Seq[domain.Order]
	Counts() (pending, completed int)
	FindByID(id int) (domain.Order, domain.Collection, error)
	FinancialReport() (domain.FinancialReport, error)
	Save() error
	Load() (flatfile.LoadResult, error)
	SavedOrders() (orders.SavedOrders, error)
	SavedOrdersIn(kind domain.Collection) ([]domain.Order, error)
	DeleteSaved(kind domain.Collection, displayIndex int) (orders.DeleteResult, error)
}

// Пункты главного меню.
const (
	actionExit = iota
	actionAddOrder
	actionProcessNext
	actionListPending
	actionListCompleted
	actionFindByID
	actionReport
	actionSave
	actionLoad
	actionViewSaved
	actionDeleteSaved
)

const menu = `
Menu Principal:
1. Agregar nuevo pedido
2. Procesar pedido pendiente
3. Mostrar pedidos pendientes
4. Mostrar historial de pedidos completados
5. Buscar pedido por ID
6. Generar reporte financiero
7. Guardar pedidos en archivos
8. Cargar pedidos desde archivos
9. Ver pedidos guardados en archivos
10. Eliminar pedido guardado en archivo
0. Salir
Ingrese una opcion: `

// Console читает выбор пользователя построчно и вызывает движок.
type Console struct {
	engine Engine
	in     *bufio.Scanner
	out    io.Writer
	logger *log.Entry
}

// New создаёт консоль поверх потоков ввода и вывода.
func New(engine Engine, in io.Reader, out io.Writer, logger *log.Entry) *Console {
	if logger == nil {
		logger = log.WithField("component", "console")
	}
	return &Console{
		engine: engine,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger,
	}
}

// Run крутит главное меню до выбора 0, конца ввода или отмены ctx.
func (c *Console) Run(ctx context.Context) error {
	c.println("\n=== Cafeteria el buen sabor ===")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.print(menu)
		choice, err := c.readInt()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if errors.Is(err, errNotANumber) {
				c.println("\nOpcion invalida. Intente de nuevo.")
				continue
			}
			return err
		}
		if choice == actionExit {
			c.println("\nGracias por su compra, vuelva pronto a el buen sabor")
			return nil
		}
		if err := c.dispatch(choice); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (c *Console) dispatch(choice int) error {
	c.logger.WithField("action", choice).Debug("menu action selected")
	switch choice {
	case actionAddOrder:
		return c.addOrder()
	case actionProcessNext:
		c.processNext()
	case actionListPending:
		c.listPending()
	case actionListCompleted:
		c.listCompleted()
	case actionFindByID:
		return c.findByID()
	case actionReport:
		c.report()
	case actionSave:
		c.save()
	case actionLoad:
		c.load()
	case actionViewSaved:
		c.viewSaved()
	case actionDeleteSaved:
		return c.deleteSaved()
	default:
		c.println("\nOpcion invalida. Intente de nuevo.")
	}
	return nil
}

var errNotANumber = errors.New("not a number")

func (c *Console) readLine() (string, error) {
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimRight(c.in.Text(), "\r"), nil
}

func (c *Console) readInt() (int, error) {
	line, err := c.readLine()
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(line))
	if convErr != nil {
		return 0, errNotANumber
	}
	return n, nil
}

func (c *Console) readYes() (bool, error) {
	line, err := c.readLine()
	if err != nil {
		return false, err
	}
	answer := strings.TrimSpace(line)
	return answer == "s" || answer == "S", nil
}

func (c *Console) print(s string) {
	_, _ = io.WriteString(c.out, s)
}

func (c *Console) println(s string) {
	_, _ = io.WriteString(c.out, s+"\n")
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// collectionLabel — подпись коллекции в интерфейсе.
func collectionLabel(kind domain.Collection) string {
	if kind == domain.CollectionCompleted {
		return "completados"
	}
	return "pendientes"
}
