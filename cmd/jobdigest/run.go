package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobdigest/internal/config"
	"github.com/amishk599/jobdigest/internal/pipeline"
	"github.com/amishk599/jobdigest/internal/runlock"
)

func runDigest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	runner, cleanup := buildRunner(cfg, recipient, dryRun, logger)
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rep, err := runLocked(ctx, cfg, runner, logger)
	if err != nil {
		logger.Error("run failed", "error", err)
		return err
	}
	printReport(rep, dryRun)
	return nil
}

// runLocked runs one pass while holding the run lock. Previews skip the lock
// since they never touch the mailbox.
func runLocked(ctx context.Context, cfg *config.Config, runner *pipeline.Runner, logger *slog.Logger) (pipeline.Report, error) {
	if !runner.DryRun() && cfg.LockPath != "" {
		lock, err := runlock.Acquire(cfg.LockPath)
		if err != nil {
			return pipeline.Report{}, err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logger.Warn("releasing run lock", "error", err)
			}
		}()
	}
	return runner.Run(ctx)
}

func printReport(rep pipeline.Report, preview bool) {
	fmt.Fprintf(os.Stdout, "\nEmails: %d | Parsed: %d | Kept: %d | From previous digest: %d | Unique: %d\n",
		rep.SourceEmails, rep.Parsed, rep.Kept, rep.Previous, rep.Unique)
	switch {
	case rep.Unique == 0:
		fmt.Println("No public-company jobs to send.")
	case preview:
		fmt.Printf("Preview: would send %q\n", rep.Digest.Subject)
	case rep.Sent:
		fmt.Printf("Sent %q (deleted %d old digests, marked %d emails read)\n", rep.Digest.Subject, rep.Deleted, rep.MarkedRead)
	default:
		fmt.Println("Digest was not sent; see log for details.")
	}
}
