package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/promptbench/promptbench/internal/config"
	"github.com/promptbench/promptbench/internal/db/mongodb"
	"github.com/promptbench/promptbench/internal/db/sqlite"
	"github.com/promptbench/promptbench/internal/models"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize promptbench configuration",
	Long:  `Interactive wizard to set up promptbench configuration including its databases.`,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("🚀 Welcome to Promptbench Setup")
	fmt.Println("===============================")
	fmt.Println()

	configPath := config.GetConfigPath()
	if config.Exists(configPath) {
		fmt.Printf("Configuration file already exists at: %s\n", configPath)
		confirmed, err := promptYesNo(reader, "Do you want to overwrite it? (y/N): ")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()

	fmt.Println("\n📊 Config Store (SQLite)")
	fmt.Println("------------------------")

	sqlitePath, err := promptOptional(reader, "SQLite database path [promptbench.db]: ", "promptbench.db")
	if err != nil {
		return err
	}
	cfg.SQLDatabase.URI = sqlitePath

	fmt.Println("\n📈 Run Store")
	fmt.Println("------------")

	runProvider, err := promptOptional(reader, "Run store provider (mongodb/memory) [mongodb]: ", "mongodb")
	if err != nil {
		return err
	}
	cfg.RunDatabase.Provider = runProvider

	if runProvider == "mongodb" {
		uri, err := promptOptional(reader, "MongoDB URI [mongodb://localhost:27017]: ", "mongodb://localhost:27017")
		if err != nil {
			return err
		}
		cfg.RunDatabase.URI = uri

		dbName, err := promptOptional(reader, "Database name [promptbench]: ", "promptbench")
		if err != nil {
			return err
		}
		cfg.RunDatabase.Database = dbName
	}

	// Verify connectivity before persisting anything
	fmt.Println("\n🔌 Testing database connections...")
	ctx := context.Background()

	sqliteStore, err := sqlite.New(&models.Config{
		Provider: cfg.SQLDatabase.Provider,
		URI:      cfg.SQLDatabase.URI,
		Database: cfg.SQLDatabase.Database,
	})
	if err != nil {
		return fmt.Errorf("failed to create config store: %w", err)
	}
	if err := sqliteStore.Connect(ctx); err != nil {
		fmt.Printf("❌ Failed to open SQLite database: %v\n", err)
		return err
	}
	defer sqliteStore.Disconnect(ctx)

	if cfg.RunDatabase.Provider == "mongodb" {
		mongoStore, err := mongodb.New(&models.Config{
			Provider: cfg.RunDatabase.Provider,
			URI:      cfg.RunDatabase.URI,
			Database: cfg.RunDatabase.Database,
		})
		if err != nil {
			return fmt.Errorf("failed to create run store: %w", err)
		}
		if err := mongoStore.Connect(ctx); err != nil {
			fmt.Printf("❌ Failed to connect to MongoDB: %v\n", err)
			fmt.Println("\nPlease check your database configuration and try again.")
			return err
		}
		defer mongoStore.Disconnect(ctx)

		if err := mongoStore.Ping(ctx); err != nil {
			fmt.Printf("❌ Failed to ping MongoDB: %v\n", err)
			return err
		}
	}

	fmt.Println("✅ Database connections successful!")

	fmt.Println("\n💾 Saving configuration...")
	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("✅ Configuration saved to: %s\n", configPath)

	fmt.Println("\n📋 Configuration Summary")
	fmt.Println("========================")
	fmt.Printf("Config store: sqlite (%s)\n", cfg.SQLDatabase.URI)
	fmt.Printf("Run store: %s", cfg.RunDatabase.Provider)
	if cfg.RunDatabase.Provider == "mongodb" {
		fmt.Printf(" (%s/%s)", cfg.RunDatabase.URI, cfg.RunDatabase.Database)
	}
	fmt.Println()
	fmt.Println()
	fmt.Println("🎉 Setup complete! You can now use promptbench.")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Register model backends: promptbench model register")
	fmt.Println("  2. Run a benchmark: promptbench run")
	fmt.Println("  3. Inspect the leaderboard: promptbench leaderboard")
	fmt.Println("  4. Start the API server: promptbench api")

	return nil
}
