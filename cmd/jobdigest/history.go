package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobdigest/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently sent digests",
	Long:  "Reads the run history database and prints the most recent digests, newest first.",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Store.Path == "" {
		fmt.Println("History is disabled (store.path is empty).")
		return nil
	}

	sqlStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer sqlStore.Close()

	runs, err := sqlStore.RecentRuns(context.Background(), historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No digests sent yet.")
		return nil
	}

	fmt.Printf("%-17s %-28s %6s %6s %6s %6s\n", "Sent", "Recipient", "Total", "T1", "T2", "T3")
	fmt.Println(strings.Repeat("─", 74))
	for _, r := range runs {
		fmt.Printf("%-17s %-28s %6d %6d %6d %6d\n",
			r.SentAt.Local().Format("2006-01-02 15:04"), r.Recipient, r.Total, r.Tier1, r.Tier2, r.Tier3)
	}
	return nil
}
