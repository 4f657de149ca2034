package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobdigest/internal/audit"
	"github.com/amishk599/jobdigest/internal/filter"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Browse the would-be digest interactively (TUI)",
	Long:  "Runs a preview pass, then shows the tier picker and the split-pane audit view.",
	RunE:  runAuditCmd,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAuditCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Log output corrupts the alt-screen, so the preview run stays silent.
	silentLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner, cleanup := buildRunner(cfg, "", true, silentLogger)
	defer cleanup()

	rep, err := audit.RunLoader("Reading LinkedIn alerts", runner.Run)
	if err != nil {
		fmt.Printf("Error running preview: %v\n", err)
		return nil
	}
	if rep.Unique == 0 && len(rep.Listings) == 0 {
		fmt.Println("No LinkedIn job listings found.")
		return nil
	}

	tier := filter.NewClassifier(cfg.Classify).Tier
	for {
		choice, err := audit.RunTierPicker(rep.Digest)
		if err != nil {
			fmt.Printf("Picker error: %v\n", err)
			return nil
		}
		if choice < 0 {
			return nil
		}

		wantQuit, err := audit.RunAuditTUI(rep.Listings, audit.JobsInTier(rep.Digest, choice), tier)
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		if wantQuit {
			return nil
		}
		// else: loop → back to picker
	}
}
