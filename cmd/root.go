package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kuro68k/kibom/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "kibom",
	Short: "Bill of materials generator for KiCad",
	Long:  "Consolidates a KiCad BOM export into a grouped, deduplicated bill of materials and renders it as TSV, Markdown, XLSX, PDF, JSON or text.",
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
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
