// Package plain prints run reports as colored text for non-interactive use.
package plain

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"runlog/internal/analysis"
	"runlog/internal/service"
)

var (
	titleColor = color.New(color.FgMagenta, color.Bold)
	labelColor = color.New(color.FgHiBlack)
	valueColor = color.New(color.Bold)
	warnColor  = color.New(color.FgYellow)
)

// zoneColors are indexed by zone number - 1
var zoneColors = []*color.Color{
	color.New(color.FgGreen),
	color.New(color.FgBlue),
	color.New(color.FgYellow),
	color.New(color.FgRed),
	color.New(color.FgMagenta),
}

const barWidth = 30

// Report prints the summary and zone split of an analyzed run
func Report(w io.Writer, r *service.Report) {
	name := r.Name
	if name == "" {
		name = "Untitled run"
	}
	titleColor.Fprintln(w, name)

	s := r.Summary
	if d, ok := s.Date(); ok {
		labelColor.Fprintf(w, "%s  (%s)\n", d.Format("2006-01-02 15:04:05 UTC"), humanize.Time(d))
	} else {
		warnColor.Fprintln(w, "no recording date")
	}
	fmt.Fprintln(w)

	metric(w, "Distance", fmt.Sprintf("%.1f km", s.DistanceKm))
	metric(w, "Elapsed", service.FormatDuration(s.ElapsedSeconds))
	metric(w, "Average speed", fmt.Sprintf("%.1f km/h", s.AvgSpeedKmh))
	metric(w, "Average pace", pace(s.Pace))
	metric(w, "Average heart rate", optional(s.AvgHeartRate, "bpm"))
	metric(w, "Average cadence", optional(s.AvgCadence, "spm"))
	if e := r.Effort; e.EfficiencyFactor > 0 {
		metric(w, "Efficiency factor", fmt.Sprintf("%.2f", e.EfficiencyFactor))
		if e.HasDecoupling {
			metric(w, "Aerobic decoupling", fmt.Sprintf("%+.1f%%", e.Decoupling))
		}
	}
	fmt.Fprintln(w)

	titleColor.Fprintf(w, "Zones (threshold %.0f bpm)\n", r.Threshold)
	if !r.HasZones() {
		warnColor.Fprintln(w, "  no heart rate time to classify")
		return
	}
	for _, share := range r.Zones.Shares {
		var upper *float64
		if !math.IsInf(share.Zone.Upper, 1) {
			u := share.Zone.Upper
			upper = &u
		}
		zoneLine(w, share.Zone.Number, share.Zone.Name, share.Zone.Lower, upper, share.Percent, share.Seconds)
	}
}

// Run prints a saved run and its stored zone split
func Run(w io.Writer, d *service.RunDetail) {
	r := d.Run
	titleColor.Fprintln(w, r.Name)
	labelColor.Fprintf(w, "%s  (%s)\n\n", r.Date.Format("2006-01-02 15:04:05 UTC"), humanize.Time(r.Date))

	metric(w, "Distance", fmt.Sprintf("%.1f km", r.Distance))
	metric(w, "Elapsed", service.FormatDuration(r.TotalTime))
	metric(w, "Average speed", fmt.Sprintf("%.1f km/h", r.AverageSpeed))
	metric(w, "Average pace", r.AveragePace+" /km")
	metric(w, "Average heart rate", optional(r.AverageHeartRate, "bpm"))
	metric(w, "Average cadence", optional(r.AverageCadence, "spm"))
	if r.ThresholdHR != nil {
		metric(w, "Threshold", fmt.Sprintf("%.0f bpm", *r.ThresholdHR))
	}

	if len(d.Zones) == 0 {
		return
	}
	fmt.Fprintln(w)
	titleColor.Fprintln(w, "Zones")
	for _, z := range d.Zones {
		zoneLine(w, z.Zone, z.Name, z.LowerBPM, z.UpperBPM, z.Percent, z.Seconds)
	}
}

// History prints one line per saved run, newest first
func History(w io.Writer, h *service.HistoryData) {
	if len(h.Runs) == 0 {
		warnColor.Fprintln(w, "no saved runs")
		return
	}
	for _, r := range h.Runs {
		hr := "-"
		if r.AverageHeartRate != nil {
			hr = fmt.Sprintf("%.0f", *r.AverageHeartRate)
		}
		fmt.Fprintf(w, "%s  %-24s %7.1f km  %8s  %6s /km  HR %s\n",
			valueColor.Sprint(r.Date.Format("2006-01-02")),
			truncate(r.Name, 24),
			r.Distance,
			service.FormatDuration(r.TotalTime),
			r.AveragePace,
			hr,
		)
	}
	labelColor.Fprintf(w, "\n%d runs, %.1f km, %s\n", len(h.Runs), h.TotalDistance, service.FormatDuration(h.TotalTime))
}

// Saved prints the outcome of a save
func Saved(w io.Writer, res *service.SaveResult) {
	if res.Inserted {
		color.New(color.FgGreen).Fprintf(w, "saved as run #%d\n", res.RunID)
		return
	}
	warnColor.Fprintf(w, "a run for this date is already saved (#%d); left unchanged\n", res.RunID)
}

func metric(w io.Writer, label, value string) {
	labelColor.Fprintf(w, "  %-20s", label)
	valueColor.Fprintln(w, value)
}

func zoneLine(w io.Writer, number int, name string, lower float64, upper *float64, percent, seconds float64) {
	bounds := fmt.Sprintf("%.0f+", lower)
	if upper != nil {
		bounds = fmt.Sprintf("%.0f-%.0f", lower, *upper)
	}

	width := int(percent / 100 * barWidth)
	if width < 1 && seconds > 0 {
		width = 1
	}
	c := zoneColors[(number-1+len(zoneColors))%len(zoneColors)]

	fmt.Fprintf(w, "  Z%d %-10s %-8s %s%s %5.1f%% (%s)\n",
		number, name, bounds,
		c.Sprint(strings.Repeat("█", width)), strings.Repeat(" ", barWidth-width),
		percent, service.FormatDuration(int(seconds)))
}

func pace(p analysis.Pace) string {
	if p.TotalSeconds() == 0 {
		return "-"
	}
	return p.String() + " /km"
}

func optional(v *float64, unit string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f %s", *v, unit)
}

func truncate(s string, max int) string {
	if len([]rune(s)) <= max {
		return s
	}
	return string([]rune(s)[:max-1]) + "…"
}
