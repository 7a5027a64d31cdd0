package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/counter/internal/catalog"
	"github.com/vladislavdragonenkov/counter/internal/domain"
	"github.com/vladislavdragonenkov/counter/internal/metrics"
	"github.com/vladislavdragonenkov/counter/internal/service/orders"
	"github.com/vladislavdragonenkov/counter/internal/storage/flatfile"
	"github.com/vladislavdragonenkov/counter/internal/storage/memory"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Store     *memory.Store
	Files     *flatfile.Repository
	Catalog   *catalog.Catalog
	Metrics   *metrics.OrderMetrics
	Publisher domain.EventPublisher
	Logger    *log.Entry
}

// NewDependencies создаёт зависимости по конфигурации. Publisher может быть nil.
func NewDependencies(cfg Config, publisher domain.EventPublisher, logger *log.Entry) *Dependencies {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	return &Dependencies{
		Store:     memory.NewStore(),
		Files:     flatfile.NewRepository(cfg.PendingPath, cfg.CompletedPath, logger.WithField("layer", "flatfile")),
		Catalog:   catalog.Default(),
		Metrics:   metrics.NewOrderMetrics(),
		Publisher: publisher,
		Logger:    logger,
	}
}

// Service собирает движок заказов поверх зависимостей.
func (d *Dependencies) Service() *orders.Service {
	return orders.NewService(orders.Dependencies{
		Store:     d.Store,
		Files:     d.Files,
		Catalog:   d.Catalog,
		Publisher: d.Publisher,
		Metrics:   d.Metrics,
		Logger:    d.Logger.WithField("layer", "service"),
	})
}
