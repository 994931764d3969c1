// Package interest commits pending interest on active positions so the
// journal and the vault totals track the loan book without waiting for
// the next borrower operation.
package interest

import (
	"context"
	"time"

	"lever/core"
	"lever/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Worker interest accrual worker
type Worker struct {
	worker.BaseJob
	config        *core.Config
	runner        core.TxRunner
	positionStore core.IPositionStore
	interestSrv   core.IInterestService
}

// New new interest accrual worker
func New(
	cfg *core.Config,
	runner core.TxRunner,
	positionStore core.IPositionStore,
	interestSrv core.IInterestService,
) *Worker {
	job := Worker{
		config:        cfg,
		runner:        runner,
		positionStore: positionStore,
		interestSrv:   interestSrv,
	}

	l, _ := time.LoadLocation(cfg.App.Location)
	job.Cron = cron.New(cron.WithLocation(l))
	spec := "@every 15s"
	job.Cron.AddFunc(spec, job.Run)
	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "interest")

	positions, err := w.positionStore.All(ctx)
	if err != nil {
		log.WithError(err).Errorln("positions.All")
		return err
	}

	for _, position := range positions {
		if position.Status != core.PositionStatusActive || !position.Debt.IsPositive() {
			continue
		}

		position := position
		err := w.runner.Tx(ctx, func(ctx context.Context) error {
			delta, err := w.interestSrv.Accrue(ctx, position)
			if err != nil {
				return err
			}

			if delta.IsPositive() {
				log.WithField("position", position.ID).Debugln("accrued", delta)
			}

			return w.positionStore.Update(ctx, position)
		})
		if err != nil {
			// optimistic lock conflicts resolve on the next tick
			log.WithError(err).WithField("position", position.ID).Errorln("accrue")
		}
	}

	return nil
}
