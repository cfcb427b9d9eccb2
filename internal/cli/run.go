package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/promptbench/promptbench/internal/models"
	"github.com/promptbench/promptbench/internal/runner"
)

var (
	runPrompts     []string
	runPromptsFile string
	runModels      []string
	runMetrics     []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a benchmark across model backends",
	Long: `Execute every prompt against every selected model backend, score the
responses and record the run on the leaderboard.

Prompts come from repeated --prompt flags or one per line from a file.
Omitting --models benchmarks every registered backend; omitting
--metrics computes all of them.`,
	RunE: runBenchmarkCommand,
}

func init() {
	runCmd.Flags().StringArrayVarP(&runPrompts, "prompt", "p", nil, "Prompt to benchmark (repeatable)")
	runCmd.Flags().StringVarP(&runPromptsFile, "prompts-file", "f", "", "File with one prompt per line")
	runCmd.Flags().StringSliceVarP(&runModels, "models", "m", nil, "Model ids to benchmark (default: all registered)")
	runCmd.Flags().StringSliceVar(&runMetrics, "metrics", nil, "Metrics to compute (default: all)")
}

func runBenchmarkCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	prompts := runPrompts
	if runPromptsFile != "" {
		filePrompts, err := readPromptsFile(runPromptsFile)
		if err != nil {
			return err
		}
		prompts = append(prompts, filePrompts...)
	}

	modelIDs := runModels
	if len(modelIDs) == 0 {
		for _, d := range registry.List() {
			modelIDs = append(modelIDs, d.ID)
		}
	}

	fmt.Printf("%s🔄 Running benchmark%s\n", InfoStyle, Reset)
	fmt.Printf("%s===================%s\n", DimStyle, Reset)
	fmt.Printf("%sPrompts: %s%s\n", LabelStyle, FormatCount(len(prompts)), Reset)
	fmt.Printf("%sModels: %s%s\n", LabelStyle, FormatCount(len(modelIDs)), Reset)
	fmt.Printf("%sTotal calls: %s%s\n", LabelStyle, FormatCount(len(prompts)*len(modelIDs)), Reset)
	fmt.Println()

	start := time.Now()
	run, err := benchRunner.Run(ctx, runner.Request{
		Prompts:  prompts,
		ModelIDs: modelIDs,
		Metrics:  runMetrics,
	})
	if err != nil {
		if verr, ok := models.IsValidationError(err); ok {
			return fmt.Errorf("invalid %s: %s", verr.Field, verr.Message)
		}
		return err
	}

	if err := board.Record(ctx, run); err != nil {
		return fmt.Errorf("benchmark completed but recording failed: %w", err)
	}

	fmt.Printf("%s✅ Benchmark completed in %s%s\n", SuccessStyle, time.Since(start).Round(time.Millisecond), Reset)
	fmt.Printf("%sRun ID: %s%s\n", LabelStyle, FormatValue(run.ID), Reset)
	fmt.Println()

	printRunSummary(run)
	return nil
}

func printRunSummary(run *models.BenchmarkRun) {
	ids := make([]string, 0, len(run.Aggregates))
	for id := range run.Aggregates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		aggregate := run.Aggregates[id]

		fmt.Printf("%s🤖 %s%s\n", HeaderStyle, id, Reset)
		if aggregate.Error != "" {
			fmt.Printf("   %s❌ %s%s\n", ErrorStyle, aggregate.Error, Reset)
			continue
		}

		fmt.Printf("   %sSuccess rate: %s%.0f%%%s\n", LabelStyle, ValueStyle, aggregate.SuccessRate*100, Reset)
		if aggregate.OverallScore != nil {
			fmt.Printf("   %sOverall score: %s%.1f%s\n", LabelStyle, ValueStyle, *aggregate.OverallScore, Reset)
		}

		metricNames := make([]string, 0, len(aggregate.Metrics))
		for name := range aggregate.Metrics {
			metricNames = append(metricNames, name)
		}
		sort.Strings(metricNames)

		for _, name := range metricNames {
			summary := aggregate.Metrics[name]
			fmt.Printf("   %s%-20s%s avg %.1f (min %.1f, max %.1f)\n", DimStyle, name, Reset, summary.Average, summary.Min, summary.Max)
		}
		fmt.Println()
	}
}

func readPromptsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var prompts []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			prompts = append(prompts, line)
		}
	}
	return prompts, nil
}
