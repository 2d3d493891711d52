package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/nodedocs/pkg/notify"
	"github.com/matzehuels/nodedocs/pkg/processor"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconPending = "·"
)

// stateIcon renders a notification state as a status glyph.
func stateIcon(s notify.State) string {
	switch s {
	case notify.Success:
		return styleIconSuccess.Render(iconSuccess)
	case notify.Fail:
		return styleIconError.Render(iconError)
	case notify.InProgress:
		return styleIconSpinner.Render(iconArrow)
	default:
		return StyleDim.Render(iconPending)
	}
}

// =============================================================================
// Status Output
// =============================================================================

func (c *CLI) println(s string) { fmt.Fprintln(c.out, s) }

// printSuccess prints a success message.
func (c *CLI) printSuccess(format string, args ...any) {
	c.println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

// printError prints an error message.
func (c *CLI) printError(format string, args ...any) {
	c.println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

// printWarning prints a warning message.
func (c *CLI) printWarning(format string, args ...any) {
	c.println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printInfo prints an info/status message.
func (c *CLI) printInfo(format string, args ...any) {
	c.println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints a detail line (indented).
func (c *CLI) printDetail(format string, args ...any) {
	c.println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func (c *CLI) printFile(path string) {
	c.println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func (c *CLI) printKeyValue(key, value string) {
	c.println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printResult prints the dim stats line under a finished task.
func (c *CLI) printResult(res processor.Result) {
	parts := []string{res.Duration.Round(time.Millisecond).String()}
	if len(res.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("%d missing modules", len(res.Missing)))
	}
	c.println("  " + StyleDim.Render(strings.Join(parts, " · ")))
}
