package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/promptbench/promptbench/internal/models"
)

var (
	scheduleName     string
	schedulePrompts  []string
	scheduleModels   []string
	scheduleMetrics  []string
	scheduleCronExpr string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage recurring benchmarks",
	Long:  `Create, list and run recurring benchmark schedules.`,
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List benchmark schedules",
	RunE:  runScheduleList,
}

var scheduleAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a benchmark schedule",
	RunE:  runScheduleAdd,
}

var scheduleRemoveCmd = &cobra.Command{
	Use:   "remove <schedule-id>",
	Short: "Delete a benchmark schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleRemove,
}

var scheduleExecuteCmd = &cobra.Command{
	Use:   "execute <schedule-id>",
	Short: "Run a schedule's benchmark immediately",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleExecute,
}

var scheduleStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the schedule loop",
	Long:  `Run enabled schedules on their cron expressions until interrupted.`,
	RunE:  runScheduleStart,
}

func init() {
	scheduleAddCmd.Flags().StringVarP(&scheduleName, "name", "n", "", "Schedule name (required)")
	scheduleAddCmd.Flags().StringArrayVarP(&schedulePrompts, "prompt", "p", nil, "Prompt to benchmark (repeatable, required)")
	scheduleAddCmd.Flags().StringSliceVarP(&scheduleModels, "models", "m", nil, "Model ids to benchmark (required)")
	scheduleAddCmd.Flags().StringSliceVar(&scheduleMetrics, "metrics", nil, "Metrics to compute (default: all)")
	scheduleAddCmd.Flags().StringVarP(&scheduleCronExpr, "cron", "c", "", "Cron expression, e.g. '0 6 * * *' (required)")
	scheduleAddCmd.MarkFlagRequired("name")
	scheduleAddCmd.MarkFlagRequired("prompt")
	scheduleAddCmd.MarkFlagRequired("models")
	scheduleAddCmd.MarkFlagRequired("cron")

	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleAddCmd)
	scheduleCmd.AddCommand(scheduleRemoveCmd)
	scheduleCmd.AddCommand(scheduleExecuteCmd)
	scheduleCmd.AddCommand(scheduleStartCmd)
}

func runScheduleList(cmd *cobra.Command, args []string) error {
	schedules, err := configStore.ListSchedules(cmd.Context(), nil)
	if err != nil {
		return fmt.Errorf("failed to list schedules: %w", err)
	}

	if len(schedules) == 0 {
		fmt.Printf("%s❌ No schedules found%s\n", ErrorStyle, Reset)
		fmt.Printf("%s💡 Use 'promptbench schedule add' to create one%s\n", InfoStyle, Reset)
		return nil
	}

	fmt.Printf("%s📅 Benchmark Schedules%s\n", HeaderStyle, Reset)
	fmt.Printf("%s=====================%s\n", DimStyle, Reset)
	fmt.Println()

	for i, schedule := range schedules {
		status := FormatError("disabled")
		if schedule.Enabled {
			status = FormatSuccess("enabled")
		}
		fmt.Printf("  %s%d. %s%s [%s]\n", CountStyle, i+1, Reset, FormatValue(schedule.Name), status)
		fmt.Printf("     %sID: %s | Cron: %s%s\n", DimStyle, schedule.ID, schedule.CronExpr, Reset)
		fmt.Printf("     %sPrompts: %d | Models: %d%s\n", DimStyle, len(schedule.Prompts), len(schedule.ModelIDs), Reset)
		if schedule.LastRun != nil {
			fmt.Printf("     %sLast run: %s%s\n", DimStyle, schedule.LastRun.Format("2006-01-02 15:04:05"), Reset)
		}
	}

	return nil
}

func runScheduleAdd(cmd *cobra.Command, args []string) error {
	if _, err := cron.ParseStandard(scheduleCronExpr); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	now := time.Now().UTC()
	schedule := &models.Schedule{
		ID:        uuid.New().String(),
		Name:      scheduleName,
		Prompts:   schedulePrompts,
		ModelIDs:  scheduleModels,
		Metrics:   scheduleMetrics,
		CronExpr:  scheduleCronExpr,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := configStore.CreateSchedule(cmd.Context(), schedule); err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}

	fmt.Printf("%s✅ Schedule created%s\n", SuccessStyle, Reset)
	fmt.Printf("%sID: %s%s\n", LabelStyle, FormatValue(schedule.ID), Reset)
	return nil
}

func runScheduleRemove(cmd *cobra.Command, args []string) error {
	id := args[0]

	if err := configStore.DeleteSchedule(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}

	fmt.Printf("%s✅ Schedule %s deleted%s\n", SuccessStyle, id, Reset)
	return nil
}

func runScheduleExecute(cmd *cobra.Command, args []string) error {
	id := args[0]

	fmt.Printf("%s🔄 Executing schedule %s%s\n", InfoStyle, id, Reset)
	if err := sched.ExecuteNow(cmd.Context(), id); err != nil {
		return err
	}

	fmt.Printf("%s✅ Schedule executed and run recorded%s\n", SuccessStyle, Reset)
	return nil
}

func runScheduleStart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	schedules, err := configStore.ListSchedules(ctx, boolPtr(true))
	if err != nil {
		return fmt.Errorf("failed to check schedules: %w", err)
	}

	if len(schedules) == 0 {
		fmt.Printf("%s❌ No enabled schedules found%s\n", ErrorStyle, Reset)
		fmt.Printf("%s💡 Use 'promptbench schedule add' to create one%s\n", InfoStyle, Reset)
		return nil
	}

	fmt.Printf("%sStarting Schedules:%s\n", LabelStyle, Reset)
	for i, schedule := range schedules {
		fmt.Printf("  %s%d. %s%s\n", CountStyle, i+1, Reset, FormatValue(schedule.Name))
		fmt.Printf("     %sID: %s | Cron: %s%s\n", DimStyle, schedule.ID, schedule.CronExpr, Reset)
	}
	fmt.Println()

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	fmt.Printf("%s✅ Scheduler running %s schedule(s)%s\n", SuccessStyle, FormatCount(len(schedules)), Reset)
	fmt.Printf("%s📝 Press Ctrl+C to stop%s\n", InfoStyle, Reset)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	fmt.Printf("\n%s⏹️  Stopping scheduler...%s\n", InfoStyle, Reset)
	sched.Stop()
	fmt.Printf("%s✅ Scheduler stopped%s\n", SuccessStyle, Reset)

	return nil
}
