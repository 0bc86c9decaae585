package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"runlog/internal/service"
	"runlog/internal/store"
)

// ReportModel shows the analysis of a single run and lets the user move the
// threshold heart rate and save the result
type ReportModel struct {
	analyzer *service.Analyzer
	report   *service.Report
	userID   int64
	viewport viewport.Model
	ready    bool
	saving   bool
	status   string
	err      error
}

// NewReportModel creates a report screen for an analyzed run
func NewReportModel(analyzer *service.Analyzer, report *service.Report, userID int64, width, height int) ReportModel {
	m := ReportModel{
		analyzer: analyzer,
		report:   report,
		userID:   userID,
	}
	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6) // Reserve space for header/footer
		m.viewport.SetContent(m.renderContent())
		m.ready = true
	}
	return m
}

// Init initializes the report screen
func (m ReportModel) Init() tea.Cmd {
	return nil
}

type runSavedMsg struct {
	result *service.SaveResult
	err    error
}

// save snapshots the report so threshold changes made while saving do not race
func (m ReportModel) save() tea.Cmd {
	snapshot := *m.report
	analyzer, userID := m.analyzer, m.userID
	return func() tea.Msg {
		res, err := analyzer.Save(userID, &snapshot)
		return runSavedMsg{result: res, err: err}
	}
}

// Update handles messages
func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		m.viewport.SetContent(m.renderContent())

	case runSavedMsg:
		m.saving = false
		switch {
		case errors.Is(msg.err, store.ErrNoRunDate):
			m.err = nil
			m.status = warningStyle.Render("Run has no date; nothing to save under.")
		case msg.err != nil:
			m.err = msg.err
		case msg.result.Inserted:
			m.err = nil
			m.status = successStyle.Render(fmt.Sprintf("Saved as run #%d.", msg.result.RunID))
		default:
			m.err = nil
			m.status = warningStyle.Render("A run for this date is already saved; left unchanged.")
		}
		return m, nil

	case tea.KeyMsg:
		if m.report == nil {
			return m, nil
		}
		switch msg.String() {
		case "+", "=", "right", "l":
			return m.shiftThreshold(service.ThresholdStep), nil
		case "-", "_", "left", "h":
			return m.shiftThreshold(-service.ThresholdStep), nil
		case "s":
			if !m.saving {
				m.saving = true
				m.status = "Saving..."
				return m, m.save()
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// shiftThreshold re-runs zone analysis for a new threshold
func (m ReportModel) shiftThreshold(delta float64) ReportModel {
	next := service.StepThreshold(m.report.Threshold, delta)
	if err := m.analyzer.Reanalyze(m.report, next); err != nil {
		m.err = err
		return m
	}
	m.err = nil
	m.status = ""
	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
	return m
}

// View renders the report screen
func (m ReportModel) View() string {
	if m.report == nil {
		return "\n  No run loaded. Start with: runlog analyze <file>"
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  +/-: threshold  s: save  j/k or arrows: scroll")
	if m.err != nil {
		footer = lipgloss.JoinVertical(lipgloss.Left, errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)), footer)
	} else if m.status != "" {
		footer = lipgloss.JoinVertical(lipgloss.Left, "  "+m.status, footer)
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m ReportModel) renderContent() string {
	if m.report == nil {
		return "No data"
	}

	sections := []string{m.renderHeader(), m.renderSummary(), m.renderZones()}
	if len(m.report.HRSeries) > 5 {
		sections = append(sections, m.renderHRChart())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ReportModel) renderHeader() string {
	r := m.report
	name := r.Name
	if name == "" {
		name = "Untitled run"
	}
	title := cardTitleStyle.Render(name)

	date := "no recording date"
	if d, ok := r.Summary.Date(); ok {
		date = d.Format("Monday, January 2, 2006 at 15:04 UTC")
	}
	subtitle := mutedStyle.Render(fmt.Sprintf("%s  •  %s  •  %d points", date, strings.ToUpper(r.Source), r.Summary.Points))

	return lipgloss.JoinVertical(lipgloss.Left, "", title, subtitle, "")
}

func (m ReportModel) renderSummary() string {
	s := m.report.Summary
	lines := []string{
		sectionTitleStyle.Render("Summary"),
		RenderMetric("Distance", formatKm(s.DistanceKm)),
		RenderMetric("Elapsed", formatDuration(s.ElapsedSeconds)),
		RenderMetric("Average speed", fmt.Sprintf("%.1f km/h", s.AvgSpeedKmh)),
		RenderMetric("Average pace", formatPace(s.Pace.String())),
		RenderMetric("Average heart rate", formatOptional(s.AvgHeartRate, "bpm")),
		RenderMetric("Average cadence", formatOptional(s.AvgCadence, "spm")),
	}
	if e := m.report.Effort; e.EfficiencyFactor > 0 {
		lines = append(lines, RenderMetric("Efficiency factor", fmt.Sprintf("%.2f", e.EfficiencyFactor)))
		if e.HasDecoupling {
			lines = append(lines, RenderMetric("Aerobic decoupling", fmt.Sprintf("%+.1f%%", e.Decoupling)))
		}
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m ReportModel) renderZones() string {
	zs := m.report.Zones
	title := sectionTitleStyle.Render(fmt.Sprintf("Heart Rate Zones (threshold %.0f bpm)", m.report.Threshold))

	if !zs.HasData() {
		return strings.Join([]string{title, mutedStyle.Render("  No heart rate time to classify."), ""}, "\n")
	}

	note := mutedStyle.Render(fmt.Sprintf("  %s of %s time", formatDuration(int(zs.TotalSeconds)), zs.Denominator))
	return strings.Join([]string{title, RenderZoneBars(barsFromShares(zs), 30), note, ""}, "\n")
}

func (m ReportModel) renderHRChart() string {
	data := downsample(m.report.HRSeries, 60)

	lines := []string{sectionTitleStyle.Render("Heart Rate Over Time (bpm)")}
	if len(data) > 2 {
		lines = append(lines, asciigraph.Plot(data,
			asciigraph.Height(8),
			asciigraph.Width(50),
		))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}
