package console

import (
	"errors"
	"iter"
	"strings"

	"github.com/vladislavdragonenkov/counter/internal/domain"
	"github.com/vladislavdragonenkov/counter/internal/storage/flatfile"
)

func (c *Console) addOrder() error {
	c.print("\nNombre del cliente: ")
	customer, err := c.readLine()
	if err != nil {
		return err
	}
	if strings.Contains(customer, "|") {
		c.println("\nNombre invalido: no puede contener '|'. Operacion cancelada.")
		return nil
	}

	c.print("ID del pedido: ")
	id, err := c.readInt()
	if errors.Is(err, errNotANumber) {
		c.println("\nID invalido. Operacion cancelada.")
		return nil
	}
	if err != nil {
		return err
	}

	items, err := c.selectItems()
	if err != nil {
		return err
	}

	c.print("Es un pedido urgente? (s/n): ")
	urgent, err := c.readYes()
	if err != nil {
		return err
	}

	order, _ := c.engine.AddOrder(id, customer, items, urgent)
	if urgent {
		c.println("\nPedido URGENTE registrado y procesado inmediatamente.")
	} else {
		c.println("\nPedido registrado correctamente.")
	}
	c.println("Detalle del pedido:\n" + order.Detail())
	return nil
}

func (c *Console) selectItems() ([]domain.Item, error) {
	cat := c.engine.Catalog()
	var selected []domain.Item
	for {
		c.println("\n--- Menu de productos ---")
		for i, item := range cat.Entries() {
			c.printf("%d. %s - Q%s\n", i+1, item.Name, item.Price.StringFixed(2))
		}

		c.printf("\nSeleccione un producto (1-%d): ", cat.Len())
		n, err := c.readInt()
		if err != nil && !errors.Is(err, errNotANumber) {
			return nil, err
		}
		item, pickErr := cat.Pick(n)
		if err != nil || pickErr != nil {
			c.println("Opcion invalida. Intente de nuevo.")
			continue
		}

		selected = append(selected, item)
		c.printf("Producto anadido: %s - Q%s\n", item.Name, item.Price.StringFixed(2))

		c.print("Desea agregar otro producto? (s/n): ")
		more, err := c.readYes()
		if err != nil {
			return nil, err
		}
		if !more {
			return selected, nil
		}
	}
}

func (c *Console) processNext() {
	order, err := c.engine.ProcessNext()
	if errors.Is(err, domain.ErrEmptyQueue) {
		c.println("\nNo hay pedidos pendientes para procesar.")
		return
	}
	c.println("\nProcesando pedido:\n" + order.Detail())
	c.println("Pedido completado y movido al historial.")
}

func (c *Console) listPending() {
	if pending, _ := c.engine.Counts(); pending == 0 {
		c.println("\nNo hay pedidos pendientes.")
		return
	}
	c.println("\n--- PEDIDOS PENDIENTES ---")
	c.printNumbered(c.engine.Pending())
}

func (c *Console) listCompleted() {
	if _, completed := c.engine.Counts(); completed == 0 {
		c.println("\nNo hay pedidos completados en el historial.")
		return
	}
	c.println("\n--- HISTORIAL DE PEDIDOS COMPLETADOS ---")
	c.printNumbered(c.engine.Completed())
}

func (c *Console) printNumbered(seq iter.Seq[domain.Order]) {
	n := 1
	for order := range seq {
		c.printf("%d. %s\n\n", n, order.Summary())
		n++
	}
}

func (c *Console) findByID() error {
	c.print("\nIngrese el ID del pedido a buscar: ")
	id, err := c.readInt()
	if errors.Is(err, errNotANumber) {
		c.println("\nID invalido.")
		return nil
	}
	if err != nil {
		return err
	}

	order, where, err := c.engine.FindByID(id)
	if errors.Is(err, domain.ErrOrderNotFound) {
		c.printf("\nNo se encontro ningun pedido con el ID %d.\n", id)
		return nil
	}
	state := "pendiente"
	if where == domain.CollectionCompleted {
		state = "completado"
	}
	c.printf("\nPedido encontrado (%s):\n%s\n", state, order.Detail())
	return nil
}

func (c *Console) report() {
	report, err := c.engine.FinancialReport()
	if errors.Is(err, domain.ErrNoCompletedOrders) {
		c.println("\nNo hay pedidos completados para generar un reporte.")
		return
	}

	c.println("\n--- REPORTE FINANCIERO ---")
	c.printf("Cantidad de pedidos completados: %d\n", report.Orders)
	c.printf("Ingreso total: Q%s\n", report.Revenue.StringFixed(2))
	c.printf("Promedio por pedido: Q%s\n", report.Average.StringFixed(2))
	c.println("\nProductos vendidos:")
	for _, name := range report.ItemNames() {
		c.printf("  - %s: %d unidad(es)\n", name, report.ItemsSold[name])
	}
}

func (c *Console) save() {
	if err := c.engine.Save(); err != nil {
		c.println("\nError al abrir los archivos para guardar los pedidos.")
		return
	}
	c.println("\nPedidos guardados correctamente en archivos.")
}

func (c *Console) load() {
	result, err := c.engine.Load()
	c.printLoadResult(result, err)
}

func (c *Console) printLoadResult(result flatfile.LoadResult, err error) {
	if err != nil {
		c.println("\nNo se encontraron archivos de pedidos para cargar o hubo un error al abrirlos.")
		return
	}
	c.println("\nPedidos cargados correctamente desde archivos.")
	if result.Skipped > 0 {
		c.printf("Se omitieron %d lineas con formato invalido.\n", result.Skipped)
	}
}

func (c *Console) viewSaved() {
	saved, err := c.engine.SavedOrders()
	if err != nil {
		c.println("\nNo se encontraron archivos de pedidos para visualizar o hubo un error al abrirlos.")
		return
	}

	c.println("\n--- PEDIDOS GUARDADOS EN ARCHIVOS ---")
	c.println("\nPEDIDOS PENDIENTES:")
	c.printSaved(saved.Pending, "No hay pedidos pendientes guardados.")
	c.println("\nPEDIDOS COMPLETADOS:")
	c.printSaved(saved.Completed, "No hay pedidos completados guardados.")
}

func (c *Console) printSaved(list []domain.Order, empty string) {
	if len(list) == 0 {
		c.println(empty)
		return
	}
	for i, order := range list {
		c.printf("%d. %s\n\n", i+1, order.Summary())
	}
}

func (c *Console) deleteSaved() error {
	c.print("\nQue tipo de pedido desea eliminar?\n1. Pedido pendiente\n2. Pedido completado\nIngrese opcion: ")
	line, err := c.readLine()
	if err != nil {
		return err
	}
	kind, err := domain.ParseCollection(line)
	if err != nil {
		c.println("\nOpcion invalida. Regresando al menu principal.")
		return nil
	}
	label := collectionLabel(kind)

	list, err := c.engine.SavedOrdersIn(kind)
	if err != nil {
		c.printf("\nNo se pudo abrir el archivo de pedidos %s.\n", label)
		return nil
	}
	if len(list) == 0 {
		c.printf("\nNo hay pedidos %s para eliminar.\n", label)
		return nil
	}

	c.printf("\n--- Pedidos %s disponibles para eliminar ---\n", label)
	c.printSaved(list, "")

	c.printf("Seleccione el numero del pedido a eliminar (1-%d): ", len(list))
	index, err := c.readInt()
	if err != nil && !errors.Is(err, errNotANumber) {
		return err
	}
	if err != nil {
		index = 0
	}

	result, err := c.engine.DeleteSaved(kind, index)
	switch {
	case errors.Is(err, domain.ErrInvalidSelection):
		c.println("\nSeleccion invalida. Operacion cancelada.")
		return nil
	case err != nil:
		c.println("\nError al abrir el archivo para guardar los cambios.")
		return nil
	}

	c.printf("\nPedido eliminado correctamente del archivo de pedidos %s.\n", label)
	c.printLoadResult(result.Reload, result.ReloadErr)
	return nil
}
