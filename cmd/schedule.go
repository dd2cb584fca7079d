package main

import (
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/technode/hiring-cli/internal/pipeline"
)

var scheduleSpec string

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run collection passes on a cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		c := cron.New()
		_, err = c.AddFunc(scheduleSpec, func() {
			summary, err := env.Pipeline.Run(ctx, pipeline.RunOptions{})
			if err != nil {
				zap.L().Error("scheduled run failed", zap.Error(err))
				return
			}
			zap.L().Info("scheduled run complete",
				zap.Int64("thread_id", summary.ThreadID),
				zap.Int("persisted", summary.Persisted),
				zap.Bool("budget_exhausted", summary.BudgetExhausted),
			)
		})
		if err != nil {
			return eris.Wrapf(err, "invalid cron spec %q", scheduleSpec)
		}

		zap.L().Info("scheduler started", zap.String("cron", scheduleSpec))
		c.Start()

		<-ctx.Done()
		stopCtx := c.Stop()
		// Let an in-flight run finish before exiting.
		<-stopCtx.Done()
		return nil
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleSpec, "cron", "0 6 2 * *", "cron spec for collection runs")
	rootCmd.AddCommand(scheduleCmd)
}
