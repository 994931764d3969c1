// Package pricefeed polls the configured price endpoint and installs
// fresh quotes into the asset registry.
package pricefeed

import (
	"context"
	"time"

	"lever/core"
	"lever/pkg/resthttp"
	"lever/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// Worker price feed worker
type Worker struct {
	worker.BaseJob
	config        *core.Config
	registryStore core.IRegistryStore
	registrySrv   core.IRegistryService
}

// New new price feed worker
func New(
	cfg *core.Config,
	registryStore core.IRegistryStore,
	registrySrv core.IRegistryService,
) *Worker {
	job := Worker{
		config:        cfg,
		registryStore: registryStore,
		registrySrv:   registrySrv,
	}

	l, _ := time.LoadLocation(cfg.App.Location)
	job.Cron = cron.New(cron.WithLocation(l))
	spec := "@every 1m"
	job.Cron.AddFunc(spec, job.Run)
	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job
}

type quote struct {
	AssetID string          `json:"asset_id"`
	Symbol  string          `json:"symbol"`
	Price   decimal.Decimal `json:"price"`
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "pricefeed")

	if w.config.PriceFeed.EndPoint == "" {
		return nil
	}

	var quotes []*quote
	if _, err := resthttp.Execute(resthttp.Request(ctx), "GET", w.config.PriceFeed.EndPoint, nil, &quotes); err != nil {
		log.WithError(err).Errorln("pull quotes")
		return err
	}

	assets, err := w.registryStore.AllAssets(ctx)
	if err != nil {
		return err
	}

	registered := make(map[string]bool, len(assets))
	for _, asset := range assets {
		registered[asset.AssetID] = true
	}

	for _, q := range quotes {
		// quotes for unknown assets are skipped, not an error
		if !registered[q.AssetID] || !q.Price.IsPositive() {
			continue
		}

		if err := w.registrySrv.SetPrice(ctx, q.AssetID, q.Price); err != nil {
			log.WithError(err).WithField("asset", q.AssetID).Errorln("set price")
		}
	}

	return nil
}
