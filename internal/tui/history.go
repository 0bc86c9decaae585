package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"runlog/internal/service"
)

// HistoryModel lists saved runs and shows the zone split of the selected one
type HistoryModel struct {
	queryService *service.QueryService
	userID       int64
	data         *service.HistoryData
	detail       *service.RunDetail
	cursor       int
	offset       int
	pageSize     int
	loading      bool
	err          error
}

// NewHistoryModel creates a new history model
func NewHistoryModel(qs *service.QueryService, userID int64) HistoryModel {
	return HistoryModel{
		queryService: qs,
		userID:       userID,
		pageSize:     15,
		loading:      true,
	}
}

// Init initializes the history screen
func (m HistoryModel) Init() tea.Cmd {
	return m.load
}

type historyLoadedMsg struct {
	data *service.HistoryData
	err  error
}

type runDetailLoadedMsg struct {
	detail *service.RunDetail
	err    error
}

func (m HistoryModel) load() tea.Msg {
	data, err := m.queryService.History(m.userID)
	return historyLoadedMsg{data: data, err: err}
}

func (m HistoryModel) loadDetail(day string) tea.Cmd {
	qs, userID := m.queryService, m.userID
	return func() tea.Msg {
		detail, err := qs.RunOn(userID, day)
		return runDetailLoadedMsg{detail: detail, err: err}
	}
}

// Update handles messages
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
		if m.data != nil && m.cursor >= len(m.data.Runs) {
			m.cursor, m.offset = 0, 0
		}

	case runDetailLoadedMsg:
		m.err = msg.err
		m.detail = msg.detail

	case tea.KeyMsg:
		if m.data == nil {
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.data.Runs)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.pageSize {
					m.offset = m.cursor - m.pageSize + 1
				}
			}
		case "r":
			m.loading = true
			m.detail = nil
			return m, m.load
		case "enter":
			if m.cursor < len(m.data.Runs) {
				day := m.data.Runs[m.cursor].Date.Format(service.DayLayout)
				return m, m.loadDetail(day)
			}
		case "esc":
			m.detail = nil
		}
	}
	return m, nil
}

// View renders the history screen
func (m HistoryModel) View() string {
	if m.loading {
		return "\n  Loading runs..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if m.data == nil || len(m.data.Runs) == 0 {
		return "\n  No saved runs yet. Analyze a file and press 's' to save it."
	}
	if m.detail != nil {
		return m.renderDetail()
	}

	runs := m.data.Runs
	end := m.offset + m.pageSize
	if end > len(runs) {
		end = len(runs)
	}

	sections := []string{
		cardTitleStyle.Render(fmt.Sprintf("Saved Runs (%d-%d of %d)", m.offset+1, end, len(runs))),
		tableHeaderStyle.Render(fmt.Sprintf("   %-16s  %-24s  %8s  %8s  %9s  %7s",
			"When", "Name", "Distance", "Time", "Pace", "Avg HR")),
	}

	for i := m.offset; i < end; i++ {
		r := runs[i]

		hr := "-"
		if r.AverageHeartRate != nil {
			hr = fmt.Sprintf("%.0f", *r.AverageHeartRate)
		}

		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		row := fmt.Sprintf("%s%-16s  %-24s  %8s  %8s  %9s  %7s",
			cursor,
			humanize.Time(r.Date),
			truncateName(r.Name, 24),
			formatKm(r.Distance),
			formatDuration(r.TotalTime),
			formatPace(r.AveragePace),
			hr,
		)

		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	totals := fmt.Sprintf("  Total: %s in %s", formatKm(m.data.TotalDistance), formatDuration(m.data.TotalTime))
	if m.data.AvgHeartRate != nil {
		totals += fmt.Sprintf("  •  average HR %.0f bpm", *m.data.AvgHeartRate)
	}
	sections = append(sections, "", mutedStyle.Render(totals))
	sections = append(sections, statusStyle.Render("  enter: zone split  j/k: navigate  r: refresh"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m HistoryModel) renderDetail() string {
	r := m.detail.Run

	threshold := "-"
	if r.ThresholdHR != nil {
		threshold = fmt.Sprintf("%.0f bpm", *r.ThresholdHR)
	}

	sections := []string{
		cardTitleStyle.Render(r.Name),
		mutedStyle.Render(r.Date.Format("Monday, January 2, 2006 at 15:04 UTC") + "  •  " + humanize.Time(r.Date)),
		"",
		RenderMetric("Distance", formatKm(r.Distance)),
		RenderMetric("Elapsed", formatDuration(r.TotalTime)),
		RenderMetric("Average speed", fmt.Sprintf("%.1f km/h", r.AverageSpeed)),
		RenderMetric("Average pace", formatPace(r.AveragePace)),
		RenderMetric("Average heart rate", formatOptional(r.AverageHeartRate, "bpm")),
		RenderMetric("Average cadence", formatOptional(r.AverageCadence, "spm")),
		RenderMetric("Threshold", threshold),
		"",
	}

	if len(m.detail.Zones) > 0 {
		sections = append(sections, sectionTitleStyle.Render("Heart Rate Zones"), RenderZoneBars(barsFromStored(m.detail.Zones), 30))
	} else {
		sections = append(sections, mutedStyle.Render("  No zone split stored for this run."))
	}

	sections = append(sections, statusStyle.Render("  esc: back to list"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
