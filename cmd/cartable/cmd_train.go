package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/cartable/internal/nlp"
)

func init() {
	rootCmd.AddCommand(trainCmd)
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Retrain the intent model and persist it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}

		modelPath := cfg.ModelPath()

		// Drop any stale model so training always runs.
		if err := os.Remove(modelPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove old model: %w", err)
		}

		if _, err := nlp.NewClassifier(modelPath); err != nil {
			return fmt.Errorf("train intent model: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Intent model written to %s\n", modelPath)
		return nil
	},
}
