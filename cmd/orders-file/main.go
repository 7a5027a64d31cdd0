package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/counter/internal/domain"
	"github.com/vladislavdragonenkov/counter/internal/storage/flatfile"
)

func main() {
	os.Exit(run(os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}

// run выполняет одну операцию над файлом заказов и возвращает код выхода.
func run(args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	var (
		kind      string
		action    string
		index     int
		pending   string
		completed string
	)

	fs := flag.NewFlagSet("orders-file", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&kind, "kind", "pending", "file to work with: pending|completed")
	fs.StringVar(&action, "action", "list", "operation: list|delete")
	fs.IntVar(&index, "index", 0, "1-based record number for -action delete")
	fs.StringVar(&pending, "pending", "", "pending orders file (fallback: COUNTER_PENDING_FILE)")
	fs.StringVar(&completed, "completed", "", "completed orders file (fallback: COUNTER_COMPLETED_FILE)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	pending = firstNonEmpty(pending, getenv("COUNTER_PENDING_FILE"), flatfile.DefaultPendingPath)
	completed = firstNonEmpty(completed, getenv("COUNTER_COMPLETED_FILE"), flatfile.DefaultCompletedPath)

	collection, err := domain.ParseCollection(kind)
	if err != nil {
		return fail(stderr, "unsupported kind: %s (use pending|completed)", kind)
	}

	logger := log.New()
	logger.SetOutput(stderr)
	logger.SetLevel(log.WarnLevel)
	repo := flatfile.NewRepository(pending, completed, logger.WithField("component", "orders-file"))

	switch strings.ToLower(strings.TrimSpace(action)) {
	case "list":
		orders, err := repo.ReadAll(collection)
		if err != nil {
			return fail(stderr, "read %s orders failed: %v", collection, err)
		}
		for i, order := range orders {
			_, _ = fmt.Fprintf(stdout, "%d. %s\n", i+1, order.Summary())
		}
		_, _ = fmt.Fprintf(stdout, "%s orders: %d\n", collection, len(orders))
	case "delete":
		removed, err := repo.DeleteAt(collection, index)
		if err != nil {
			return fail(stderr, "delete %s order #%d failed: %v", collection, index, err)
		}
		_, _ = fmt.Fprintf(stdout, "deleted %s order #%d: id=%d customer=%s\n", collection, index, removed.ID(), removed.CustomerName())
	default:
		return fail(stderr, "unsupported action: %s (use list|delete)", action)
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func fail(stderr io.Writer, format string, args ...any) int {
	_, _ = fmt.Fprintf(stderr, format+"\n", args...)
	return 1
}
