package worker

import (
	"sync/atomic"

	"github.com/robfig/cron/v3"
)

// IJob a periodic job
type IJob interface {
	Start() error
	Run()
	Stop() error
}

type OnWork func() error

// BaseJob cron-driven job; overlapping triggers are skipped
type BaseJob struct {
	Cron    *cron.Cron
	OnWork  OnWork
	running int32
}

func (job *BaseJob) Start() error {
	job.Cron.Start()
	return nil
}

func (job *BaseJob) Stop() error {
	job.Cron.Stop()
	return nil
}

func (job *BaseJob) Run() {
	if !atomic.CompareAndSwapInt32(&job.running, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&job.running, 0)

	_ = job.OnWork()
}
