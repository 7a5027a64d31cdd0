package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/counter/internal/app"
	"github.com/vladislavdragonenkov/counter/internal/version"
)

const (
	envPendingFile   = "COUNTER_PENDING_FILE"
	envCompletedFile = "COUNTER_COMPLETED_FILE"
	envMetricsAddr   = "COUNTER_METRICS_ADDR"
	envKafkaBrokers  = "COUNTER_KAFKA_BROKERS"
	envKafkaTopic    = "COUNTER_KAFKA_TOPIC"
	envLogLevel      = "COUNTER_LOG_LEVEL"
)

type envLookup func(key string) (string, bool)

// setupLogger пишет логи в stderr, чтобы не мешать меню на stdout.
func setupLogger(level log.Level) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(level)
}

// readConfigFromEnv накладывает переменные окружения на DefaultConfig.
// Некорректные значения не применяются и попадают в warnings.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	if v, ok := nonEmpty(lookup, envPendingFile); ok {
		cfg.PendingPath = v
	}
	if v, ok := nonEmpty(lookup, envCompletedFile); ok {
		cfg.CompletedPath = v
	}
	if v, ok := nonEmpty(lookup, envMetricsAddr); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := nonEmpty(lookup, envKafkaBrokers); ok {
		cfg.KafkaBrokers = v
	}
	if v, ok := nonEmpty(lookup, envKafkaTopic); ok {
		cfg.KafkaTopic = v
	}
	if v, ok := nonEmpty(lookup, envLogLevel); ok {
		level, err := log.ParseLevel(v)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v, using %s", envLogLevel, err, cfg.LogLevel))
		} else {
			cfg.LogLevel = level
		}
	}
	if cfg.PendingPath == cfg.CompletedPath {
		warnings = append(warnings, fmt.Sprintf("%s and %s point to the same file, using defaults", envPendingFile, envCompletedFile))
		defaults := app.DefaultConfig()
		cfg.PendingPath, cfg.CompletedPath = defaults.PendingPath, defaults.CompletedPath
	}

	return cfg, warnings
}

func nonEmpty(lookup envLookup, key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// loadDotEnv подхватывает .env, если он есть; уже заданные переменные не перезаписываются.
func loadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func main() {
	showVersion := flag.Bool("version", false, "print build information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	dotEnvErr := loadDotEnv()
	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	setupLogger(cfg.LogLevel)
	if dotEnvErr != nil {
		log.WithError(dotEnvErr).Warn("failed to load .env")
	}
	for _, w := range warnings {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"pending_file":   cfg.PendingPath,
		"completed_file": cfg.CompletedPath,
		"metrics_addr":   cfg.MetricsAddr,
		"kafka_brokers":  cfg.KafkaBrokers,
	}).Info("запускаем стойку заказов")

	if err := app.Run(ctx, cfg, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("стойка остановлена")
}
