package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/producer-intervals/internal/config"
)

var (
	cfg        *config.Config
	sourceFlag string
)

var rootCmd = &cobra.Command{
	Use:   "producer-intervals",
	Short: "Award interval service for Golden Raspberry producers",
	Long:  "Ingests the semicolon-delimited nomination list and reports the producers with the shortest and longest gap between consecutive wins.",
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

func init() {
	rootCmd.PersistentFlags().StringVar(&sourceFlag, "source", "", "nomination file path or http(s)/ftp URL (default from config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
