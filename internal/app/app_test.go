package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/counter/internal/health"
	"github.com/vladislavdragonenkov/counter/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/counter/internal/storage/flatfile"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.PendingPath = filepath.Join(dir, flatfile.DefaultPendingPath)
	cfg.CompletedPath = filepath.Join(dir, flatfile.DefaultCompletedPath)
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, "pedidos_pendientes.txt", cfg.PendingPath)
	require.Equal(t, "pedidos_completados.txt", cfg.CompletedPath)
	require.Empty(t, cfg.MetricsAddr)
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, kafka.TopicOrderEvents, cfg.KafkaTopic)
	require.Equal(t, log.WarnLevel, cfg.LogLevel)
}

func TestNewDependencies(t *testing.T) {
	deps := NewDependencies(testConfig(t), nil, nil)

	require.NotNil(t, deps.Store)
	require.NotNil(t, deps.Files)
	require.NotNil(t, deps.Metrics)
	require.NotNil(t, deps.Logger)
	require.Nil(t, deps.Publisher)
	require.Equal(t, 10, deps.Catalog.Len())

	svc := deps.Service()
	svc.AddOrder(1, "Ana", nil, false)
	require.Equal(t, 1, deps.Store.PendingLen())
}

func TestSplitBrokers(t *testing.T) {
	require.Nil(t, splitBrokers(""))
	require.Nil(t, splitBrokers(" , "))
	require.Equal(t, []string{"a:9092", "b:9092"}, splitBrokers(" a:9092, ,b:9092 "))
}

func TestInitKafkaProducer_NoBrokers(t *testing.T) {
	producer, err := initKafkaProducer("", kafka.TopicOrderEvents, log.WithField("component", "test"))

	require.NoError(t, err)
	require.Nil(t, producer)
	closeKafka(producer, log.WithField("component", "test"))
}

func TestMetricsMux(t *testing.T) {
	dir := t.TempDir()
	handler := health.NewHandler("test")
	handler.RegisterChecker("order_files", health.NewFileChecker("order_files", filepath.Join(dir, "p.txt")))
	mux := newMetricsMux(handler)

	tests := []struct {
		path string
		code int
		body string
	}{
		{path: "/livez", code: http.StatusOK, body: "ok"},
		{path: "/readyz", code: http.StatusOK, body: "ready"},
		{path: "/healthz", code: http.StatusOK, body: `"status":"degraded"`},
		{path: "/metrics", code: http.StatusOK, body: "go_goroutines"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			require.Equal(t, tc.code, w.Code)
			require.Contains(t, w.Body.String(), tc.body)
		})
	}
}

func TestStartMetricsServer_DisabledWithoutAddr(t *testing.T) {
	srv := startMetricsServer(context.Background(), "", log.WithField("component", "test"), health.NewHandler("test"))

	require.Nil(t, srv)
	shutdownHTTP(srv, log.WithField("component", "test"))
}

func TestRun_SessionSavesOrders(t *testing.T) {
	cfg := testConfig(t)
	input := strings.Join([]string{"1", "Ana", "1", "4", "n", "n", "7", "0"}, "\n") + "\n"
	var out bytes.Buffer

	require.NoError(t, Run(context.Background(), cfg, strings.NewReader(input), &out))

	require.Contains(t, out.String(), "Pedidos guardados correctamente en archivos.")
	data, err := os.ReadFile(cfg.PendingPath)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "1|Ana|1|Espresso,15|15|"), string(data))
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, testConfig(t), strings.NewReader(""), &bytes.Buffer{})

	require.ErrorIs(t, err, context.Canceled)
}
