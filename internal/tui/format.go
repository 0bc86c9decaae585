package tui

import (
	"fmt"
	"math"

	"runlog/internal/analysis"
	"runlog/internal/service"
	"runlog/internal/store"
)

func formatDuration(seconds int) string {
	return service.FormatDuration(seconds)
}

func formatKm(km float64) string {
	return fmt.Sprintf("%.1f km", km)
}

func formatPace(p string) string {
	if p == "" || p == "0:00" {
		return "-"
	}
	return p + " /km"
}

// formatOptional renders a nullable average, "-" when absent
func formatOptional(v *float64, unit string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f %s", *v, unit)
}

// formatRange renders a zone's bounds in bpm
func formatRange(lower float64, upper *float64) string {
	if upper == nil {
		return fmt.Sprintf("%.0f+ bpm", lower)
	}
	return fmt.Sprintf("%.0f-%.0f bpm", lower, *upper)
}

// barsFromShares converts a fresh zone analysis into chart rows
func barsFromShares(zs analysis.ZoneShares) []zoneBar {
	bars := make([]zoneBar, 0, len(zs.Shares))
	for _, s := range zs.Shares {
		var upper *float64
		if !math.IsInf(s.Zone.Upper, 1) {
			u := s.Zone.Upper
			upper = &u
		}
		bars = append(bars, zoneBar{
			Number:  s.Zone.Number,
			Name:    s.Zone.Name,
			Range:   formatRange(s.Zone.Lower, upper),
			Percent: s.Percent,
			Seconds: int(s.Seconds),
		})
	}
	return bars
}

// barsFromStored converts saved zone rows into chart rows
func barsFromStored(zones []store.ZoneTime) []zoneBar {
	bars := make([]zoneBar, 0, len(zones))
	for _, z := range zones {
		bars = append(bars, zoneBar{
			Number:  z.Zone,
			Name:    z.Name,
			Range:   formatRange(z.LowerBPM, z.UpperBPM),
			Percent: z.Percent,
			Seconds: int(z.Seconds),
		})
	}
	return bars
}

func truncateName(name string, max int) string {
	if len([]rune(name)) <= max {
		return name
	}
	return string([]rune(name)[:max-1]) + "…"
}

// downsample averages data into targetLen buckets, ignoring zeros
func downsample(data []float64, targetLen int) []float64 {
	if len(data) <= targetLen {
		return data
	}

	result := make([]float64, targetLen)
	ratio := float64(len(data)) / float64(targetLen)

	for i := 0; i < targetLen; i++ {
		start := int(float64(i) * ratio)
		end := int(float64(i+1) * ratio)
		if end > len(data) {
			end = len(data)
		}

		sum := 0.0
		count := 0
		for j := start; j < end; j++ {
			if data[j] > 0 {
				sum += data[j]
				count++
			}
		}
		if count > 0 {
			result[i] = sum / float64(count)
		}
	}

	return result
}
