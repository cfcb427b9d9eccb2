package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptbench/promptbench/internal/api"
)

var (
	apiPort    int
	apiHost    string
	corsOrigin string
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the promptbench REST API server",
	Long: `Start the REST API server exposing:
- Models (register, list, probe)
- Benchmarks (run, list, inspect)
- Leaderboard (rankings, stats, per-model history)
- Schedules (full CRUD plus immediate execution)

The API runs on HTTP (no authentication required for now).`,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().IntVarP(&apiPort, "port", "p", 0, "Port to run the API server on (overrides config)")
	apiCmd.Flags().StringVarP(&apiHost, "host", "H", "", "Host to bind the API server to (overrides config)")
	apiCmd.Flags().StringVarP(&corsOrigin, "cors-origin", "c", "", "CORS origin to allow (use '*' for all origins)")
}

func runAPI(cmd *cobra.Command, args []string) error {
	host := cfg.Server.Host
	if apiHost != "" {
		host = apiHost
	}
	port := cfg.Server.Port
	if apiPort != 0 {
		port = apiPort
	}

	selectedCORSOrigin := corsOrigin
	if selectedCORSOrigin == "" {
		if cfg.Server.CORSOrigin != "" {
			selectedCORSOrigin = cfg.Server.CORSOrigin
		} else {
			selectedCORSOrigin = "*"
		}
	}

	// Schedules fire while the server runs
	if err := sched.Start(cmd.Context()); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	fmt.Printf("🚀 Starting Promptbench API Server\n")
	fmt.Printf("==================================\n")
	fmt.Printf("Host: %s\n", host)
	fmt.Printf("Port: %d\n", port)
	fmt.Printf("CORS Origin: %s\n", selectedCORSOrigin)
	fmt.Printf("URL: http://%s:%d/api/v1\n", host, port)
	fmt.Println()
	fmt.Println("📚 Available Endpoints:")
	fmt.Println("  Models:")
	fmt.Println("    GET    /api/v1/models                       - List registered backends")
	fmt.Println("    POST   /api/v1/models                       - Register a backend")
	fmt.Println("    GET    /api/v1/models/:id                   - Get specific backend")
	fmt.Println("    POST   /api/v1/models/:id/refresh           - Re-probe connectivity")
	fmt.Println("    DELETE /api/v1/models/:id                   - Delete a backend")
	fmt.Println()
	fmt.Println("  Benchmarks:")
	fmt.Println("    POST   /api/v1/benchmarks                   - Run a benchmark")
	fmt.Println("    GET    /api/v1/benchmarks                   - List past runs")
	fmt.Println("    GET    /api/v1/benchmarks/:id               - Get full run results")
	fmt.Println()
	fmt.Println("  Leaderboard:")
	fmt.Println("    GET    /api/v1/leaderboard                  - Rankings by metric")
	fmt.Println("    GET    /api/v1/leaderboard/stats            - Summary statistics")
	fmt.Println("    GET    /api/v1/leaderboard/models/:id/history - Per-model history")
	fmt.Println()
	fmt.Println("  Schedules:")
	fmt.Println("    GET    /api/v1/schedules                    - List schedules")
	fmt.Println("    POST   /api/v1/schedules                    - Create schedule")
	fmt.Println("    PUT    /api/v1/schedules/:id                - Update schedule")
	fmt.Println("    DELETE /api/v1/schedules/:id                - Delete schedule")
	fmt.Println("    POST   /api/v1/schedules/:id/execute        - Execute immediately")
	fmt.Println()
	fmt.Println("    GET    /api/v1/health                       - Health check")
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop the server")

	server := api.NewServer(registry, benchRunner, board, configStore, runStore, sched, selectedCORSOrigin)

	address := fmt.Sprintf("%s:%d", host, port)
	return server.Run(address)
}
