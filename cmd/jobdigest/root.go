package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amishk599/jobdigest/internal/adapter"
	"github.com/amishk599/jobdigest/internal/config"
	"github.com/amishk599/jobdigest/internal/digest"
	"github.com/amishk599/jobdigest/internal/exclusion"
	"github.com/amishk599/jobdigest/internal/filter"
	"github.com/amishk599/jobdigest/internal/mail"
	"github.com/amishk599/jobdigest/internal/model"
	"github.com/amishk599/jobdigest/internal/notifier"
	"github.com/amishk599/jobdigest/internal/pipeline"
	"github.com/amishk599/jobdigest/internal/ratelimit"
	"github.com/amishk599/jobdigest/internal/salary"
	"github.com/amishk599/jobdigest/internal/store"
)

const defaultConfigPath = "config.yaml"

var (
	cfgPath   string
	debug     bool
	recipient string
	dryRun    bool
)

var rootCmd = &cobra.Command{
	Use:   "jobdigest",
	Short: "Turn LinkedIn job alerts into one tiered digest email",
	Long: "jobdigest reads LinkedIn job-alert emails through the gog CLI, keeps listings " +
		"from public companies, and replaces the previous digest with a fresh one.",
	SilenceUsage: true,
	RunE:         runDigest,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBDIGEST_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.Flags().StringVar(&recipient, "email", "", "address the digest is sent to")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview only: do not delete, send, or mark emails read")
	rootCmd.MarkFlagRequired("email")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBDIGEST_CONFIG env var > "./config.yaml".
// A missing ./config.yaml falls back to the built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("JOBDIGEST_CONFIG")
	}
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
		path = defaultConfigPath
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func newMailClient(cfg *config.Config) *mail.GogClient {
	return mail.NewGogClient(cfg.Mail.Binary, cfg.Mail.Timeout, mail.ExecRunner)
}

func setupPageFetcher(cfg *config.Config) model.PageFetcher {
	if !cfg.Fetch.Enabled {
		return nil
	}
	httpClient := &http.Client{Timeout: cfg.Fetch.Timeout}
	linkedin := adapter.NewLinkedInPageFetcher(httpClient, cfg.Fetch.UserAgent)
	return ratelimit.NewPacedFetcher(linkedin, ratelimit.NewPacer(cfg.Fetch.Delay))
}

// setupStore opens the history database. Previews and failures fall back to a
// NopStore; history is never required for a run.
func setupStore(cfg *config.Config, preview bool, logger *slog.Logger) (model.RunStore, func()) {
	if preview || cfg.Store.Path == "" {
		return store.NewNopStore(), func() {}
	}
	sqlStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		logger.Warn("history store unavailable", "path", cfg.Store.Path, "error", err)
		return store.NewNopStore(), func() {}
	}
	return sqlStore, func() { sqlStore.Close() }
}

// buildRunner wires a pipeline for one recipient. The returned func releases
// resources held by the runner.
func buildRunner(cfg *config.Config, to string, preview bool, logger *slog.Logger) (*pipeline.Runner, func()) {
	gog := newMailClient(cfg)
	classifier := filter.NewClassifier(cfg.Classify)
	resolver := salary.NewResolver(setupPageFetcher(cfg), cfg.Fetch.Host, logger.With("component", "salary"))

	var primary model.Notifier
	var extra []model.Notifier
	if preview {
		logger.Info("dry-run mode enabled, nothing will be deleted, sent, or marked read")
		primary = notifier.NewLogNotifier(to, logger)
	} else {
		primary = notifier.NewMailNotifier(gog, to, logger)
		if cfg.Notification.SlackWebhookURL != "" {
			logger.Info("using slack notifier")
			extra = append(extra, notifier.NewSlackNotifier(cfg.Notification.SlackWebhookURL, &http.Client{Timeout: 30 * time.Second}, logger))
		}
	}

	runStore, closeStore := setupStore(cfg, preview, logger)

	runner := pipeline.NewRunner(pipeline.Deps{
		Mail:     gog,
		Filter:   filter.NewPublicCompanyFilter(classifier),
		Resolver: resolver,
		Builder:  digest.NewBuilder(classifier.Tier, cfg.Mail.DigestSubject),
		Notifier: primary,
		Extra:    extra,
		Store:    runStore,
		LoadExclusions: func() mapset.Set[string] {
			return exclusion.Load(cfg.Exclusions.Path, logger)
		},
		Logger: logger.With("component", "pipeline"),
	}, pipeline.Options{
		Recipient:     to,
		DryRun:        preview,
		SourceQuery:   cfg.Mail.SourceQuery,
		SourceMax:     cfg.Mail.SourceMax,
		PreviousQuery: cfg.Mail.PreviousDigestQuery(),
		PreviousMax:   cfg.Mail.PreviousMax,
		CleanupQuery:  cfg.Mail.CleanupQuery(),
		CleanupMax:    cfg.Mail.CleanupMax,
		CleanupPause:  cfg.CleanupPause,
	})
	return runner, closeStore
}
