// Package app собирает стойку: файлы, движок, консоль, метрики и Kafka.
package app

import (
	"context"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/counter/internal/console"
	"github.com/vladislavdragonenkov/counter/internal/domain"
	"github.com/vladislavdragonenkov/counter/internal/health"
	"github.com/vladislavdragonenkov/counter/internal/version"
)

// Run запускает интерактивную сессию на in/out и ждёт её завершения
// или отмены ctx.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	logger := log.WithField("component", "app")

	// Kafka необязательна: без брокеров события просто не публикуются.
	var publisher domain.EventPublisher
	producer, err := initKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	if err == nil && producer != nil {
		publisher = producer
	}
	defer closeKafka(producer, logger)

	deps := NewDependencies(cfg, publisher, logger)
	svc := deps.Service()

	healthHandler := health.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("order_files", health.NewFileChecker("order_files", cfg.PendingPath, cfg.CompletedPath))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)
	defer shutdownHTTP(metricsSrv, logger)

	session := console.New(svc, in, out, logger.WithField("layer", "console"))
	errCh := make(chan error, 1)
	go func() {
		errCh <- session.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, завершаем сессию")
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
