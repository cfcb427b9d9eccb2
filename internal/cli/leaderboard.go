package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptbench/promptbench/internal/metrics"
	"github.com/promptbench/promptbench/internal/models"
)

var leaderboardMetric string

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the cross-run model leaderboard",
	Long: `Rank every benchmarked model by its accumulated score for a metric.
Defaults to the overall score; use --metric for a specific one.`,
	RunE: runLeaderboard,
}

var leaderboardStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show leaderboard summary statistics",
	RunE:  runLeaderboardStats,
}

var leaderboardHistoryCmd = &cobra.Command{
	Use:   "history <model-id>",
	Short: "Show one model's per-run score history",
	Args:  cobra.ExactArgs(1),
	RunE:  runLeaderboardHistory,
}

func init() {
	leaderboardCmd.Flags().StringVarP(&leaderboardMetric, "metric", "m", metrics.MetricOverall, "Metric to rank by")
	leaderboardCmd.AddCommand(leaderboardStatsCmd)
	leaderboardCmd.AddCommand(leaderboardHistoryCmd)
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	entries, err := board.Rank(cmd.Context(), leaderboardMetric)
	if err != nil {
		if verr, ok := models.IsValidationError(err); ok {
			return fmt.Errorf("invalid %s: %s", verr.Field, verr.Message)
		}
		return err
	}

	if len(entries) == 0 {
		fmt.Printf("%s❌ No benchmark runs recorded yet%s\n", ErrorStyle, Reset)
		fmt.Printf("%s💡 Use 'promptbench run' to record one%s\n", InfoStyle, Reset)
		return nil
	}

	fmt.Printf("%s🏆 Leaderboard: %s%s\n", HeaderStyle, leaderboardMetric, Reset)
	fmt.Printf("%s=====================%s\n", DimStyle, Reset)
	fmt.Println()

	for i, entry := range entries {
		fmt.Printf("  %s%2d. %s%s %s%.1f%s", CountStyle, i+1, Reset, FormatValue(entry.ModelID), ValueStyle, entry.Score, Reset)
		fmt.Printf(" %s(%s, %d runs)%s", DimStyle, entry.Provider, entry.Runs, Reset)
		if entry.AvgLatency != nil {
			fmt.Printf(" %savg %.2fs%s", DimStyle, *entry.AvgLatency, Reset)
		}
		if entry.AvgCost != nil {
			fmt.Printf(" %savg $%.4f%s", DimStyle, *entry.AvgCost, Reset)
		}
		fmt.Println()
	}

	return nil
}

func runLeaderboardStats(cmd *cobra.Command, args []string) error {
	stats, err := board.Stats(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("%s📊 Leaderboard Stats%s\n", HeaderStyle, Reset)
	fmt.Printf("%s===================%s\n", DimStyle, Reset)
	fmt.Println()
	fmt.Printf("%sModels benchmarked: %s%s\n", LabelStyle, FormatCount(stats.TotalModels), Reset)
	fmt.Printf("%sTotal runs: %s%s\n", LabelStyle, FormatCount(stats.TotalRuns), Reset)
	if stats.LastRun != nil {
		fmt.Printf("%sLast run: %s%s\n", LabelStyle, FormatValue(stats.LastRun.Format("2006-01-02 15:04:05")), Reset)
	}
	if stats.TopPerformer != nil {
		fmt.Printf("%sTop performer: %s (%.1f)%s\n", LabelStyle, FormatValue(stats.TopPerformer.ModelID), stats.TopPerformer.Score, Reset)
	}
	if stats.FastestModel != nil {
		fmt.Printf("%sFastest: %s%s\n", LabelStyle, FormatValue(stats.FastestModel.ModelID), Reset)
	}
	if stats.MostCostEffective != nil {
		fmt.Printf("%sMost cost effective: %s%s\n", LabelStyle, FormatValue(stats.MostCostEffective.ModelID), Reset)
	}

	return nil
}

func runLeaderboardHistory(cmd *cobra.Command, args []string) error {
	id := args[0]

	history, err := board.ModelHistory(cmd.Context(), id)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Printf("%s❌ No benchmark history for %s%s\n", ErrorStyle, id, Reset)
		return nil
	}

	fmt.Printf("%s📈 History: %s%s\n", HeaderStyle, id, Reset)
	fmt.Printf("%s===============%s\n", DimStyle, Reset)
	fmt.Println()

	for _, point := range history {
		score := "n/a"
		if point.OverallScore != nil {
			score = fmt.Sprintf("%.1f", *point.OverallScore)
		}
		fmt.Printf("  %s%s%s overall %s%s%s %s(success %.0f%%, run %s)%s\n",
			DimStyle, point.Timestamp.Format("2006-01-02 15:04"), Reset,
			ValueStyle, score, Reset,
			DimStyle, point.SuccessRate*100, point.RunID, Reset)
	}

	return nil
}
