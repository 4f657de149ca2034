package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobdigest/internal/pipeline"
	"github.com/amishk599/jobdigest/internal/scheduler"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the digest on an interval",
	Long:  "Runs the digest pipeline immediately and then every interval; blocks until SIGINT/SIGTERM.",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&recipient, "email", "", "address the digest is sent to")
	watchCmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview only: do not delete, send, or mark emails read")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", time.Hour, "time between runs (default: watch_interval from config)")
	watchCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	interval := cfg.WatchInterval
	if cmd.Flags().Changed("interval") {
		interval = watchInterval
	}

	runner, cleanup := buildRunner(cfg, recipient, dryRun, logger)
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	job := scheduler.JobFunc(func(ctx context.Context) (pipeline.Report, error) {
		return runLocked(ctx, cfg, runner, logger)
	})
	sched := scheduler.NewScheduler(job, interval, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		return err
	}

	logger.Info("goodbye")
	return nil
}
