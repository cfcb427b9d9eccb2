// Package cli implements the promptbench command line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/promptbench/promptbench/internal/config"
	"github.com/promptbench/promptbench/internal/db"
	"github.com/promptbench/promptbench/internal/db/memory"
	"github.com/promptbench/promptbench/internal/db/mongodb"
	"github.com/promptbench/promptbench/internal/db/sqlite"
	"github.com/promptbench/promptbench/internal/leaderboard"
	"github.com/promptbench/promptbench/internal/llm"
	"github.com/promptbench/promptbench/internal/llm/factory"
	"github.com/promptbench/promptbench/internal/logger"
	"github.com/promptbench/promptbench/internal/metrics"
	"github.com/promptbench/promptbench/internal/models"
	"github.com/promptbench/promptbench/internal/runner"
	"github.com/promptbench/promptbench/internal/scheduler"
)

var (
	cfgFile     string
	cfg         *config.Config
	configStore db.ConfigStore
	runStore    db.RunStore
	registry    *llm.Registry
	benchRunner *runner.Runner
	board       *leaderboard.Service
	sched       *scheduler.Scheduler
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "promptbench",
	Short: "Benchmark prompts across AI model backends",
	Long: `Promptbench runs prompt suites against multiple AI model backends
concurrently and scores every response for latency, cost, quality and
context utilization.

Results accumulate into a cross-run leaderboard so backends can be
compared over time.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip wiring for the init command itself
		if cmd.Name() == "init" {
			return nil
		}

		if cfgFile == "" {
			cfgFile = config.GetConfigPath()
		}

		if !config.Exists(cfgFile) {
			return fmt.Errorf("configuration file not found. Run 'promptbench init' to create one")
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger.Init(logger.ParseLevel(cfg.LogLevel), os.Stdout)

		ctx := context.Background()

		configStore, err = sqlite.New(&models.Config{
			Provider: cfg.SQLDatabase.Provider,
			URI:      cfg.SQLDatabase.URI,
			Database: cfg.SQLDatabase.Database,
			Options:  cfg.SQLDatabase.Options,
		})
		if err != nil {
			return fmt.Errorf("failed to create config store: %w", err)
		}
		if err := configStore.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to config store: %w", err)
		}

		switch cfg.RunDatabase.Provider {
		case "mongodb":
			runStore, err = mongodb.New(&models.Config{
				Provider: cfg.RunDatabase.Provider,
				URI:      cfg.RunDatabase.URI,
				Database: cfg.RunDatabase.Database,
				Options:  cfg.RunDatabase.Options,
			})
			if err != nil {
				return fmt.Errorf("failed to create run store: %w", err)
			}
		case "memory":
			runStore = memory.New()
		default:
			return fmt.Errorf("unsupported run database provider: %s", cfg.RunDatabase.Provider)
		}
		if err := runStore.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to run store: %w", err)
		}

		registry = llm.NewRegistry(factory.New)
		if err := loadRegisteredModels(ctx); err != nil {
			return fmt.Errorf("failed to load registered models: %w", err)
		}

		engine := metrics.NewEngine(cfg.Metrics)
		benchRunner = runner.New(registry, engine, cfg.Runner.RunnerOptions())
		board = leaderboard.New(runStore)
		sched = scheduler.New(configStore, runStore, benchRunner)

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if runStore != nil {
			runStore.Disconnect(ctx)
		}
		if configStore != nil {
			return configStore.Disconnect(ctx)
		}
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.promptbench/config.yaml)")

	// Disable completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(modelCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(migrateCmd)
}

// loadRegisteredModels builds connectors for every enabled persisted
// spec. Connectivity starts out unknown; probes refresh it on demand.
func loadRegisteredModels(ctx context.Context) error {
	specs, err := configStore.ListModels(ctx, boolPtr(true))
	if err != nil {
		return err
	}

	for _, spec := range specs {
		connector, err := factory.New(spec)
		if err != nil {
			logger.Warning("Skipping model %s: %v", spec.ID, err)
			continue
		}
		registry.Add(spec.ID, connector, false)
	}

	return nil
}

func boolPtr(b bool) *bool {
	return &b
}
