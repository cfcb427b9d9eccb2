package cli

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/promptbench/promptbench/internal/db"
	"github.com/promptbench/promptbench/internal/db/sqlite"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
	Long:  `Run config store migrations using golang-migrate.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Run all pending migrations",
	RunE:  runMigrateUp,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	Long:  `Show the current migration version of the config store.`,
	RunE:  runMigrateStatus,
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	fmt.Println("🔄 Running database migrations...")

	store, ok := configStore.(*sqlite.SQLite)
	if !ok {
		return fmt.Errorf("migrations require a sqlite config store")
	}

	if err := db.RunMigrations(cmd.Context(), store.DB(), ""); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Println("✅ Migrations completed successfully!")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("📊 Migration Status")
	fmt.Println("===================")

	// Check if migrate command is available
	if _, err := exec.LookPath("migrate"); err != nil {
		return fmt.Errorf("migrate command not found. Please install golang-migrate: https://github.com/golang-migrate/migrate")
	}

	migrationsDir := filepath.Join("internal", "db", "migrations")

	absSQLitePath, err := filepath.Abs(cfg.SQLDatabase.URI)
	if err != nil {
		return fmt.Errorf("failed to resolve SQLite path: %w", err)
	}

	dbURL := fmt.Sprintf("sqlite3://%s", absSQLitePath)

	cmdExec := exec.Command("migrate",
		"-path", migrationsDir,
		"-database", dbURL,
		"version")

	output, err := cmdExec.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w\nOutput: %s", err, string(output))
	}

	fmt.Printf("Current migration version: %s", string(output))
	return nil
}
