// Command mealplansolver runs the meal-plan search against a scenario file
// and prints the resulting plan, or the structured failure report, as JSON.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nutriplan/mealsolver/internal/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	configPath string
	settings   config.Settings
	logger     *zap.Logger

	rootCmd = &cobra.Command{
		Use:   "mealplansolver",
		Short: "Deterministic greedy-with-backtracking meal plan solver",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			settings = loaded

			zapCfg := zap.NewProductionConfig()
			if err := zapCfg.Level.UnmarshalText([]byte(settings.LogLevel)); err != nil {
				return fmt.Errorf("parsing log level %q: %w", settings.LogLevel, err)
			}
			l, err := zapCfg.Build()
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (yaml/json/toml) overriding solver defaults")
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(demographicsCmd)
}
