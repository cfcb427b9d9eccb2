package cli

import "fmt"

// ANSI color codes for consistent styling across all CLI commands
const (
	// Reset all formatting
	Reset = "\033[0m"

	// Text colors
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
	White  = "\033[37m"

	// Text formatting
	Bold = "\033[1m"
	Dim  = "\033[2m"
)

// Predefined color combinations for consistency
var (
	// Headers and titles
	HeaderStyle = Cyan + Bold

	// Status messages
	SuccessStyle = Green + Bold
	ErrorStyle   = Red + Bold
	InfoStyle    = Blue + Bold

	// Data display
	LabelStyle = Cyan
	ValueStyle = White + Bold
	DimStyle   = Dim

	// Numbers and counts
	CountStyle = Yellow + Bold
)

// Helper functions for common formatting patterns
func FormatSuccess(text string) string {
	return SuccessStyle + text + Reset
}

func FormatError(text string) string {
	return ErrorStyle + text + Reset
}

func FormatValue(text string) string {
	return ValueStyle + text + Reset
}

func FormatCount(count int) string {
	return CountStyle + fmt.Sprintf("%d", count) + Reset
}
