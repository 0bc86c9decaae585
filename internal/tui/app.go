package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"runlog/internal/service"
)

// Screen identifiers
type Screen int

const (
	ScreenReport Screen = iota
	ScreenHistory
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	report  ReportModel
	history HistoryModel
	help    HelpModel

	// Services
	analyzer     *service.Analyzer
	queryService *service.QueryService
	userID       int64
	hasReport    bool

	// Window dimensions
	width  int
	height int
}

// NewApp creates the app. With a nil report it opens on the history screen.
func NewApp(analyzer *service.Analyzer, queryService *service.QueryService, report *service.Report, userID int64) *App {
	a := &App{
		screen:       ScreenReport,
		analyzer:     analyzer,
		queryService: queryService,
		userID:       userID,
		hasReport:    report != nil,
		report:       NewReportModel(analyzer, report, userID, 0, 0),
		history:      NewHistoryModel(queryService, userID),
		help:         NewHelpModel(),
	}
	if report == nil {
		a.screen = ScreenHistory
	}
	return a
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	if a.screen == ScreenHistory {
		return a.history.Init()
	}
	return a.report.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "1":
			if a.hasReport {
				a.screen = ScreenReport
			}
			return a, nil
		case "2":
			a.screen = ScreenHistory
			a.history = NewHistoryModel(a.queryService, a.userID)
			return a, a.history.Init()
		case "?":
			if a.screen != ScreenHelp {
				a.prevScreen = a.screen
				a.screen = ScreenHelp
			}
			return a, nil
		case "esc":
			if a.screen == ScreenHelp {
				a.screen = a.prevScreen
				return a, nil
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// The report viewport tracks the size even while hidden
		m, cmd := a.report.Update(msg)
		a.report = m.(ReportModel)
		return a, cmd

	case runSavedMsg:
		// Saves can finish after the user switched screens
		m, cmd := a.report.Update(msg)
		a.report = m.(ReportModel)
		return a, cmd
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenReport:
		var m tea.Model
		m, cmd = a.report.Update(msg)
		a.report = m.(ReportModel)
	case ScreenHistory:
		var m tea.Model
		m, cmd = a.history.Update(msg)
		a.history = m.(HistoryModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenReport:
		content = a.report.View()
	case ScreenHistory:
		content = a.history.View()
	case ScreenHelp:
		content = a.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), a.renderNav(), content)
}

func (a *App) renderHeader() string {
	return headerStyle.Render("runlog")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Report", ScreenReport},
		{"2", "History", ScreenHistory},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for _, item := range items {
		if item.screen == ScreenReport && !a.hasReport {
			continue
		}
		if nav != "" {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}
