package analysis

import (
	"fmt"
	"math"

	"runlog/internal/track"
)

// Zone is a half-open heart rate band [Lower, Upper)
type Zone struct {
	Number int
	Name   string
	Lower  float64
	Upper  float64
}

// Contains reports whether hr falls inside the zone
func (z Zone) Contains(hr float64) bool {
	return hr >= z.Lower && hr < z.Upper
}

// ZoneTable is the five-zone table derived from a threshold heart rate.
// Adjacent zones do not touch: readings between Z2 and Z3, Z3 and Z4, or
// Z4 and Z5 belong to no zone.
type ZoneTable [5]Zone

// NewZoneTable builds the zone table for threshold heart rate t
func NewZoneTable(t float64) (ZoneTable, error) {
	if !(t > 0) || math.IsInf(t, 1) {
		return ZoneTable{}, fmt.Errorf("%w: got %v", ErrInvalidThreshold, t)
	}
	return ZoneTable{
		{Number: 1, Name: "Easy", Lower: 0, Upper: 0.8 * t},
		{Number: 2, Name: "Moderate", Lower: 0.8 * t, Upper: 0.89 * t},
		{Number: 3, Name: "Hard", Lower: 0.9 * t, Upper: 0.99 * t},
		{Number: 4, Name: "Very hard", Lower: t, Upper: 1.09 * t},
		{Number: 5, Name: "Maximum", Lower: 1.1 * t, Upper: math.Inf(1)},
	}, nil
}

// Classify returns the index of the zone containing hr, or -1 for a gap reading
func (zt ZoneTable) Classify(hr float64) int {
	for i, z := range zt {
		if z.Contains(hr) {
			return i
		}
	}
	return -1
}

// Denominator selects which intervals make up the base of the zone percentages
type Denominator int

const (
	// DenominatorClassified counts only time assigned to a zone (default).
	// Gap readings and missing heart rate are left out of the base.
	DenominatorClassified Denominator = iota
	// DenominatorHeartRate counts every interval that starts with a heart
	// rate reading, so gap time lowers the zone percentages.
	DenominatorHeartRate
)

// String returns the config name of the denominator
func (d Denominator) String() string {
	switch d {
	case DenominatorHeartRate:
		return "heart_rate"
	default:
		return "classified"
	}
}

// ParseDenominator maps a config value to a Denominator
func ParseDenominator(s string) (Denominator, error) {
	switch s {
	case "", "classified":
		return DenominatorClassified, nil
	case "heart_rate":
		return DenominatorHeartRate, nil
	default:
		return DenominatorClassified, fmt.Errorf("unknown zone denominator %q", s)
	}
}

type zoneOptions struct {
	denominator Denominator
}

// ZoneOption configures AnalyzeZones
type ZoneOption func(*zoneOptions)

// WithDenominator selects the percentage base
func WithDenominator(d Denominator) ZoneOption {
	return func(o *zoneOptions) {
		o.denominator = d
	}
}

// ZoneShare is the time attributed to one zone
type ZoneShare struct {
	Zone    Zone
	Seconds float64
	Percent float64 // rounded to 0.1
}

// ZoneShares is the result of a zone analysis, ordered Z1..Z5
type ZoneShares struct {
	Threshold    float64
	Shares       []ZoneShare
	TotalSeconds float64 // percentage base
	Denominator  Denominator
}

// HasData reports whether any time could be attributed.
// When false every percentage is zero.
func (zs ZoneShares) HasData() bool {
	return zs.TotalSeconds > 0
}

// PercentSum returns the sum of zone percentages
func (zs ZoneShares) PercentSum() float64 {
	var sum float64
	for _, s := range zs.Shares {
		sum += s.Percent
	}
	return sum
}

// AnalyzeZones attributes each point's owned duration (the gap to the next
// point) to the zone containing its heart rate and reports every zone's
// share of the total. The last point owns no interval. Points without a heart
// rate or without timestamps on either end of their interval are skipped, as
// are intervals where the clock stands still or runs backwards.
func AnalyzeZones(threshold float64, series track.Series, opts ...ZoneOption) (ZoneShares, error) {
	o := zoneOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	table, err := NewZoneTable(threshold)
	if err != nil {
		return ZoneShares{}, err
	}
	if len(series) < 2 {
		return ZoneShares{}, fmt.Errorf("%w: got %d", ErrEmptySeries, len(series))
	}

	var zoneSeconds [len(table)]float64
	var classified, withHR float64

	for i := 0; i < len(series)-1; i++ {
		p, next := series[i], series[i+1]
		if p.HeartRate == nil || p.Time == nil || next.Time == nil {
			continue
		}

		owned := next.Time.Sub(*p.Time).Seconds()
		if owned <= 0 {
			continue
		}
		withHR += owned

		idx := table.Classify(float64(*p.HeartRate))
		if idx < 0 {
			continue
		}
		zoneSeconds[idx] += owned
		classified += owned
	}

	total := classified
	if o.denominator == DenominatorHeartRate {
		total = withHR
	}

	result := ZoneShares{
		Threshold:    threshold,
		Shares:       make([]ZoneShare, len(table)),
		TotalSeconds: total,
		Denominator:  o.denominator,
	}
	for i, z := range table {
		share := ZoneShare{Zone: z, Seconds: zoneSeconds[i]}
		if total > 0 {
			share.Percent = round1(zoneSeconds[i] / total * 100)
		}
		result.Shares[i] = share
	}

	return result, nil
}
