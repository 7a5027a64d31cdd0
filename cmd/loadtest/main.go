package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/counter/internal/catalog"
	"github.com/vladislavdragonenkov/counter/internal/domain"
	"github.com/vladislavdragonenkov/counter/internal/metrics"
	"github.com/vladislavdragonenkov/counter/internal/service/orders"
	"github.com/vladislavdragonenkov/counter/internal/storage/flatfile"
	"github.com/vladislavdragonenkov/counter/internal/storage/memory"
)

const (
	opSave  = "save"
	opLoad  = "load"
	opView  = "view"
	opRound = "round"
)

type config struct {
	orders      int
	rounds      int
	workers     int
	itemsPerOrd int
	urgentRate  int
	dir         string
	outputPath  string
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type operationReport struct {
	Calls     int64          `json:"calls"`
	Success   int64          `json:"success"`
	Failed    int64          `json:"failed"`
	ErrorRate float64        `json:"error_rate"`
	LatencyMs latencySummary `json:"latency_ms"`
}

type report struct {
	StartedAt       time.Time                  `json:"started_at"`
	DurationSeconds float64                    `json:"duration_seconds"`
	OrdersPerRound  int                        `json:"orders_per_round"`
	Rounds          int64                      `json:"rounds"`
	FailedRounds    int64                      `json:"failed_rounds"`
	Operations      map[string]operationReport `json:"operations"`
}

type operationStats struct {
	calls     int64
	success   int64
	failed    int64
	latencies []float64
}

type collector struct {
	mu         sync.Mutex
	operations map[string]*operationStats
}

func newCollector() *collector {
	return &collector{operations: make(map[string]*operationStats)}
}

func (c *collector) record(op string, latency time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, ok := c.operations[op]
	if !ok {
		stats = &operationStats{}
		c.operations[op] = stats
	}
	stats.calls++
	if err == nil {
		stats.success++
	} else {
		stats.failed++
	}
	stats.latencies = append(stats.latencies, float64(latency.Microseconds())/1000.0)
}

func (c *collector) buildReport(startedAt time.Time, duration time.Duration, ordersPerRound int) report {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := report{
		StartedAt:       startedAt.UTC(),
		DurationSeconds: duration.Seconds(),
		OrdersPerRound:  ordersPerRound,
		Operations:      make(map[string]operationReport, len(c.operations)),
	}
	if rounds := c.operations[opRound]; rounds != nil {
		result.Rounds = rounds.calls
		result.FailedRounds = rounds.failed
	}
	for name, stats := range c.operations {
		result.Operations[name] = operationReport{
			Calls:     stats.calls,
			Success:   stats.success,
			Failed:    stats.failed,
			ErrorRate: ratio(stats.failed, stats.calls),
			LatencyMs: buildLatencySummary(stats.latencies),
		}
	}
	return result
}

func parseConfig(args []string, stderr io.Writer) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("loadtest", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&cfg.orders, "orders", 500, "orders created per round")
	fs.IntVar(&cfg.rounds, "rounds", 20, "save/load rounds per worker")
	fs.IntVar(&cfg.workers, "workers", 1, "parallel workers, each with its own pair of files")
	fs.IntVar(&cfg.itemsPerOrd, "items", 3, "items per order")
	fs.IntVar(&cfg.urgentRate, "urgent-rate", 10, "percentage of urgent orders (0-100)")
	fs.StringVar(&cfg.dir, "dir", "", "directory for order files (default: temporary directory)")
	fs.StringVar(&cfg.outputPath, "output", "", "optional JSON report path")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	switch {
	case cfg.orders <= 0:
		return config{}, errors.New("orders must be > 0")
	case cfg.rounds <= 0:
		return config{}, errors.New("rounds must be > 0")
	case cfg.workers <= 0:
		return config{}, errors.New("workers must be > 0")
	case cfg.itemsPerOrd < 0:
		return config{}, errors.New("items must be >= 0")
	case cfg.urgentRate < 0 || cfg.urgentRate > 100:
		return config{}, errors.New("urgent-rate must be in [0,100]")
	}
	return cfg, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseConfig(args, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "invalid flags: %v\n", err)
		return 2
	}

	if cfg.dir == "" {
		dir, err := os.MkdirTemp("", "counter-loadtest-")
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "create temp dir: %v\n", err)
			return 1
		}
		defer os.RemoveAll(dir)
		cfg.dir = dir
	}

	logger := log.New()
	logger.SetOutput(stderr)
	logger.SetLevel(log.ErrorLevel)

	stats := newCollector()
	startedAt := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < cfg.workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			runWorker(worker, cfg, stats, logger.WithField("worker", worker))
		}(w)
	}
	wg.Wait()

	result := stats.buildReport(startedAt, time.Since(startedAt), cfg.orders)
	printReport(stdout, result)

	if cfg.outputPath != "" {
		if err := writeJSONReport(cfg.outputPath, result); err != nil {
			_, _ = fmt.Fprintf(stderr, "write report: %v\n", err)
			return 1
		}
	}
	if result.FailedRounds > 0 {
		return 1
	}
	return 0
}

func runWorker(worker int, cfg config, stats *collector, logger *log.Entry) {
	files := flatfile.NewRepository(
		filepath.Join(cfg.dir, fmt.Sprintf("w%d-%s", worker, flatfile.DefaultPendingPath)),
		filepath.Join(cfg.dir, fmt.Sprintf("w%d-%s", worker, flatfile.DefaultCompletedPath)),
		logger,
	)
	menu := catalog.Default()

	for round := 0; round < cfg.rounds; round++ {
		start := time.Now()
		err := runRound(cfg, files, menu, round, stats, logger)
		stats.record(opRound, time.Since(start), err)
		if err != nil {
			logger.WithError(err).WithField("round", round).Error("round failed")
		}
	}
}

// runRound наполняет движок, сохраняет, загружает и сверяет размеры коллекций.
func runRound(cfg config, files *flatfile.Repository, menu *catalog.Catalog, round int, stats *collector, logger *log.Entry) error {
	svc := orders.NewService(orders.Dependencies{
		Store:   memory.NewStore(),
		Files:   files,
		Catalog: menu,
		Metrics: metrics.NewOrderMetrics(),
		Logger:  logger,
	})

	for i := 0; i < cfg.orders; i++ {
		items := make([]domain.Item, 0, cfg.itemsPerOrd)
		for j := 0; j < cfg.itemsPerOrd; j++ {
			item, err := menu.Pick((i+j)%menu.Len() + 1)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		svc.AddOrder(round*cfg.orders+i+1, fmt.Sprintf("cliente-%d", i), items, i%100 < cfg.urgentRate)
	}
	for i := 0; i < cfg.orders/2; i++ {
		if _, err := svc.ProcessNext(); err != nil {
			break
		}
	}
	wantPending, wantCompleted := svc.Counts()

	start := time.Now()
	err := svc.Save()
	stats.record(opSave, time.Since(start), err)
	if err != nil {
		return err
	}

	start = time.Now()
	loaded, err := svc.Load()
	stats.record(opLoad, time.Since(start), err)
	if err != nil {
		return err
	}
	if loaded.Pending != wantPending || loaded.Completed != wantCompleted || loaded.Skipped != 0 {
		return fmt.Errorf("loaded %+v, want pending=%d completed=%d", loaded, wantPending, wantCompleted)
	}

	start = time.Now()
	_, err = svc.SavedOrders()
	stats.record(opView, time.Since(start), err)
	return err
}

func writeJSONReport(path string, result report) error {
	cleanPath := filepath.Clean(path)
	if cleanPath == "." || cleanPath == string(filepath.Separator) {
		return errors.New("output path must point to a file")
	}
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output path must not leave the working tree: %s", path)
	}

	// #nosec G304 -- path is an explicit CLI output parameter for local load-test reports.
	file, err := os.Create(cleanPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func printReport(w io.Writer, result report) {
	_, _ = fmt.Fprintln(w, "Persistence load test summary")
	_, _ = fmt.Fprintf(w, "rounds=%d failed=%d orders_per_round=%d duration=%.2fs\n",
		result.Rounds, result.FailedRounds, result.OrdersPerRound, result.DurationSeconds)

	names := make([]string, 0, len(result.Operations))
	for name := range result.Operations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		stats := result.Operations[name]
		_, _ = fmt.Fprintf(w, "%s: calls=%d failed=%d p50=%.2fms p95=%.2fms max=%.2fms\n",
			name, stats.Calls, stats.Failed, stats.LatencyMs.P50, stats.LatencyMs.P95, stats.LatencyMs.Max)
	}
}

func buildLatencySummary(values []float64) latencySummary {
	if len(values) == 0 {
		return latencySummary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, value := range sorted {
		sum += value
	}

	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

func ratio(failed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(failed) / float64(total)
}
