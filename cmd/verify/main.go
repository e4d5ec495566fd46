package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sitecheck/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sitecheck-verify",
	Short: "Verify a construction invoice from local files",
	Long:  "Extracts an invoice, an optional work order and optional site photos with the configured LLM providers, cross-checks them and prints the verdict. Nothing is stored.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
