package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobdigest/internal/exclusion"
)

var exclusionsCmd = &cobra.Command{
	Use:   "exclusions",
	Short: "Print the excluded job IDs",
	Long:  "Loads the exclusion file named in the config and prints every job ID it contains.",
	RunE:  runExclusions,
}

func init() {
	rootCmd.AddCommand(exclusionsCmd)
}

func runExclusions(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ids := exclusion.Load(cfg.Exclusions.Path, logger).ToSlice()
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Println(id)
	}
	fmt.Printf("\nTotal: %d excluded jobs (%s)\n", len(ids), cfg.Exclusions.Path)
	return nil
}
