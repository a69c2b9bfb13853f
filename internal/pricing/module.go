package pricing

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/config"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/repository"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/metrics"
)

// Module provides the pricing engine.
var Module = fx.Provide(newEngine)

type engineParams struct {
	fx.In

	Config  *config.Config
	Catalog repository.CatalogRepository
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func newEngine(p engineParams) *Engine {
	return NewEngine(p.Catalog, p.Config.DepositCap, p.Logger, p.Metrics)
}
