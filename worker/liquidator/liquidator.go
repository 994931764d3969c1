// Package liquidator scans the loan book for positions whose health factor
// fell below one and surfaces them, so keepers do not have to poll every
// position themselves.
package liquidator

import (
	"context"
	"time"

	"lever/core"
	"lever/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const scanConcurrency = 8

var one = decimal.New(1, 0)

// Worker liquidation scanner worker
type Worker struct {
	worker.BaseJob
	config         *core.Config
	positionStore  core.IPositionStore
	liquidationSrv core.ILiquidationService
}

// New new liquidation scanner worker
func New(
	cfg *core.Config,
	positionStore core.IPositionStore,
	liquidationSrv core.ILiquidationService,
) *Worker {
	job := Worker{
		config:         cfg,
		positionStore:  positionStore,
		liquidationSrv: liquidationSrv,
	}

	l, _ := time.LoadLocation(cfg.App.Location)
	job.Cron = cron.New(cron.WithLocation(l))
	spec := "@every 30s"
	job.Cron.AddFunc(spec, job.Run)
	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "liquidator")

	positions, err := w.positionStore.All(ctx)
	if err != nil {
		log.WithError(err).Errorln("positions.All")
		return err
	}

	var g errgroup.Group
	sem := make(chan struct{}, scanConcurrency)

	for _, position := range positions {
		if position.Status != core.PositionStatusActive || !position.Debt.IsPositive() {
			continue
		}

		position := position
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()

			hf, err := w.liquidationSrv.HealthFactor(ctx, position.UserID, position.Idx)
			if err != nil {
				log.WithError(err).WithField("position", position.ID).Errorln("health factor")
				return nil
			}

			if hf.LessThan(one) {
				log.WithField("position", position.ID).
					WithField("user", position.UserID).
					WithField("health_factor", hf).
					Infoln("position liquidatable")
			}

			return nil
		})
	}

	return g.Wait()
}
