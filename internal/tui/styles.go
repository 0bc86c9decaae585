package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	textColor      = lipgloss.Color("#F9FAFB") // Light gray
)

// zoneColors are indexed by zone number - 1
var zoneColors = []lipgloss.Color{
	lipgloss.Color("#10B981"), // Z1 Easy - Green
	lipgloss.Color("#3B82F6"), // Z2 Moderate - Blue
	lipgloss.Color("#F59E0B"), // Z3 Hard - Amber
	lipgloss.Color("#EF4444"), // Z4 Very hard - Red
	lipgloss.Color("#9333EA"), // Z5 Maximum - Purple
}

// Styles
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			Background(primaryColor).
			Padding(0, 1).
			MarginBottom(1)

	// Navigation
	navStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginBottom(1)

	navActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	navInactiveStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	sectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(secondaryColor)

	// Metrics
	metricLabelStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Width(20)

	metricValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(textColor)

	// Table
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor).
				BorderBottom(true).
				BorderForeground(mutedColor).
				Padding(0, 1)

	tableRowStyle = lipgloss.NewStyle().
			Padding(0, 1)

	tableSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Background(primaryColor).
				Foreground(textColor).
				Padding(0, 1)

	// Status
	statusStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	successStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	// Help
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// RenderMetric renders a label and its value on one line
func RenderMetric(label, value string) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		metricLabelStyle.Render(label),
		metricValueStyle.Render(value),
	)
}

// zoneBar is one row of a zone distribution chart
type zoneBar struct {
	Number  int
	Name    string
	Range   string
	Percent float64
	Seconds int
}

// RenderZoneBars renders one colored bar per zone, scaled to maxWidth at 100%
func RenderZoneBars(bars []zoneBar, maxWidth int) string {
	lines := make([]string, 0, len(bars))
	for _, z := range bars {
		width := int(z.Percent / 100 * float64(maxWidth))
		if width < 1 && z.Seconds > 0 {
			width = 1
		}

		color := zoneColors[(z.Number-1+len(zoneColors))%len(zoneColors)]
		bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", width))
		pad := strings.Repeat(" ", maxWidth-width)

		label := fmt.Sprintf("  Z%d %-10s %-14s", z.Number, z.Name, z.Range)
		lines = append(lines, fmt.Sprintf("%s%s%s %5.1f%% (%s)", label, bar, pad, z.Percent, formatDuration(z.Seconds)))
	}
	return strings.Join(lines, "\n")
}

// RenderKeyHelp renders a key binding help item
func RenderKeyHelp(key, desc string) string {
	return helpKeyStyle.Render(key) + " " + helpDescStyle.Render(desc)
}
