package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/counter/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/counter/internal/storage/flatfile"
)

// Config описывает настройки запуска стойки.
type Config struct {
	PendingPath   string
	CompletedPath string
	// MetricsAddr пустой — HTTP-сервер метрик не поднимается.
	MetricsAddr string
	// KafkaBrokers — список через запятую; пустой — события не публикуются.
	KafkaBrokers string
	KafkaTopic   string
	LogLevel     log.Level
}

// DefaultConfig возвращает файлы в текущем каталоге, без метрик и Kafka.
func DefaultConfig() Config {
	return Config{
		PendingPath:   flatfile.DefaultPendingPath,
		CompletedPath: flatfile.DefaultCompletedPath,
		KafkaTopic:    kafka.TopicOrderEvents,
		LogLevel:      log.WarnLevel,
	}
}
