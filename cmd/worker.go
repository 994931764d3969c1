package cmd

import (
	"context"

	"lever/worker"
	"lever/worker/interest"
	"lever/worker/liquidator"
	"lever/worker/pricefeed"

	"github.com/drone/signal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "run lever background jobs",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		str := provideStores(database)
		srv := provideServices(str)
		config := provideConfig()

		jobs := []worker.IJob{
			interest.New(config, str.runner, str.positions, srv.interest),
			liquidator.New(config, str.positions, srv.liquidation),
			pricefeed.New(config, str.registry, srv.registry),
		}

		for _, job := range jobs {
			if err := job.Start(); err != nil {
				logrus.WithError(err).Fatal("start job failed")
			}
		}

		ctx, quit := context.WithCancel(ctx)
		signal.WithContextFunc(ctx, quit)

		logrus.Infoln("lever worker started")
		<-ctx.Done()

		for _, job := range jobs {
			if err := job.Stop(); err != nil {
				logrus.WithError(err).Error("stop job failed")
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
