package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	sections := []string{
		cardTitleStyle.Render("Keyboard Shortcuts"),
		m.renderSection("Navigation", []keyHelp{
			{"1", "Run report"},
			{"2", "Saved runs"},
			{"?", "Help (this screen)"},
			{"q", "Quit"},
			{"esc", "Back / close help"},
		}),
		m.renderSection("Run Report", []keyHelp{
			{"+ / right", "Raise threshold by 1 bpm"},
			{"- / left", "Lower threshold by 1 bpm"},
			{"s", "Save run"},
			{"j / k", "Scroll"},
		}),
		m.renderSection("Saved Runs", []keyHelp{
			{"j / k", "Move cursor"},
			{"enter", "Show zone split"},
			{"r", "Refresh list"},
		}),
		m.renderZonesHelp(),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	lines := []string{"", sectionTitleStyle.Render(title)}
	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}
	return strings.Join(lines, "\n")
}

func (m HelpModel) renderZonesHelp() string {
	lines := []string{"", sectionTitleStyle.Render("Zones (T = threshold heart rate)"), ""}

	zones := []struct {
		name string
		desc string
	}{
		{"Z1 Easy", "below 80% of T"},
		{"Z2 Moderate", "80% to 89% of T"},
		{"Z3 Hard", "90% to 99% of T"},
		{"Z4 Very hard", "100% to 109% of T"},
		{"Z5 Maximum", "110% of T and above"},
	}
	for _, z := range zones {
		lines = append(lines, "  "+helpKeyStyle.Render(z.name)+"  "+mutedStyle.Render(z.desc))
	}

	lines = append(lines, "", mutedStyle.Render("  Readings between bands (e.g. 89-90% of T) fall in no zone."))
	return strings.Join(lines, "\n")
}
