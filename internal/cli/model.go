package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/promptbench/promptbench/internal/models"
)

var (
	modelName     string
	modelProvider string
	modelBackend  string
	modelAPIKey   string
	modelBaseURL  string
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Manage model backends",
	Long:  `Register, list and probe the model backends available to benchmarks.`,
}

var modelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered model backends",
	RunE:  runModelList,
}

var modelRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new model backend",
	Long: `Register a model backend with the engine. The backend is probed once
for connectivity and becomes usable by benchmarks immediately.`,
	RunE: runModelRegister,
}

var modelProbeCmd = &cobra.Command{
	Use:   "probe <model-id>",
	Short: "Re-check a backend's connectivity",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelProbe,
}

func init() {
	modelRegisterCmd.Flags().StringVarP(&modelName, "name", "n", "", "Display name for the backend (required)")
	modelRegisterCmd.Flags().StringVarP(&modelProvider, "provider", "p", "", "Provider: openai, anthropic, ollama, google (required)")
	modelRegisterCmd.Flags().StringVarP(&modelBackend, "model", "m", "", "Provider model identifier (required)")
	modelRegisterCmd.Flags().StringVarP(&modelAPIKey, "api-key", "k", "", "API key for hosted providers")
	modelRegisterCmd.Flags().StringVarP(&modelBaseURL, "base-url", "u", "", "Override the provider endpoint")
	modelRegisterCmd.MarkFlagRequired("name")
	modelRegisterCmd.MarkFlagRequired("provider")
	modelRegisterCmd.MarkFlagRequired("model")

	modelCmd.AddCommand(modelListCmd)
	modelCmd.AddCommand(modelRegisterCmd)
	modelCmd.AddCommand(modelProbeCmd)
}

func runModelList(cmd *cobra.Command, args []string) error {
	descriptors := registry.List()

	if len(descriptors) == 0 {
		fmt.Printf("%s❌ No model backends registered%s\n", ErrorStyle, Reset)
		fmt.Printf("%s💡 Use 'promptbench model register' to add one%s\n", InfoStyle, Reset)
		return nil
	}

	fmt.Printf("%s🤖 Registered Model Backends%s\n", HeaderStyle, Reset)
	fmt.Printf("%s============================%s\n", DimStyle, Reset)
	fmt.Println()

	for i, d := range descriptors {
		status := FormatError("disconnected")
		if d.Connected {
			status = FormatSuccess("connected")
		}
		fmt.Printf("  %s%d. %s%s [%s]\n", CountStyle, i+1, Reset, FormatValue(d.Name), status)
		fmt.Printf("     %sID: %s | Provider: %s%s\n", DimStyle, d.ID, d.Provider, Reset)
		fmt.Printf("     %sContext: %d tokens | Cost: $%.4f/1K tokens%s\n", DimStyle, d.MaxContextLength, d.CostPer1KTokens, Reset)
	}

	fmt.Println()
	fmt.Printf("%sTotal: %s%s\n", LabelStyle, FormatCount(len(descriptors)), Reset)
	return nil
}

func runModelRegister(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	spec := &models.ModelSpec{
		Name:     modelName,
		Provider: modelProvider,
		Model:    modelBackend,
		APIKey:   modelAPIKey,
		BaseURL:  modelBaseURL,
		Enabled:  true,
	}

	id, err := registry.Register(ctx, spec)
	if err != nil {
		if verr, ok := models.IsValidationError(err); ok {
			return fmt.Errorf("invalid %s: %s", verr.Field, verr.Message)
		}
		return err
	}

	now := time.Now().UTC()
	spec.ID = id
	spec.CreatedAt = now
	spec.UpdatedAt = now
	if err := configStore.CreateModel(ctx, spec); err != nil {
		return fmt.Errorf("failed to persist model: %w", err)
	}

	fmt.Printf("%s✅ Registered model backend%s\n", SuccessStyle, Reset)
	fmt.Printf("%sID: %s%s\n", LabelStyle, FormatValue(id), Reset)
	fmt.Printf("%sAPI Key: %s%s\n", LabelStyle, maskSensitiveData(spec.APIKey), Reset)

	connector, _ := registry.Get(id)
	d := connector.Describe()
	fmt.Printf("%sContext window: %s tokens%s\n", LabelStyle, FormatCount(d.MaxContextLength), Reset)

	return nil
}

func runModelProbe(cmd *cobra.Command, args []string) error {
	id := args[0]

	connected, err := registry.RefreshConnectivity(cmd.Context(), id)
	if err != nil {
		return err
	}

	if connected {
		fmt.Printf("%s✅ %s is reachable%s\n", SuccessStyle, id, Reset)
	} else {
		fmt.Printf("%s❌ %s is unreachable%s\n", ErrorStyle, id, Reset)
	}
	return nil
}
