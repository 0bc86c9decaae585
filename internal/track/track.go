// Package track defines the decoded representation of a recorded run that
// decoders hand to the analysis package.
package track

import "time"

// CreatedLayout is the layout of the recording-level creation timestamp
const CreatedLayout = "2006-01-02T15:04:05Z"

// Source formats
const (
	SourceGPX    = "gpx"
	SourceFIT    = "fit"
	SourceStrava = "strava"
)

// Point is one sampled instant of a recording.
// Optional values are nil when the source did not carry them.
type Point struct {
	Lat       float64    // degrees
	Lon       float64    // degrees
	Time      *time.Time // absolute instant
	HeartRate *int       // bpm
	Cadence   *int       // steps/min, both legs
}

// Series is an ordered sequence of points in recording order
type Series []Point

// Track is a decoded recording
type Track struct {
	Name       string
	Source     string
	CreatedRaw string // recording metadata timestamp, unparsed
	Points     Series
}

// HasHeartRate reports whether at least one point carries a heart rate
func (s Series) HasHeartRate() bool {
	for _, p := range s {
		if p.HeartRate != nil {
			return true
		}
	}
	return false
}

// HeartRates returns the heart rate readings in order, skipping points without one
func (s Series) HeartRates() []float64 {
	out := make([]float64, 0, len(s))
	for _, p := range s {
		if p.HeartRate != nil {
			out = append(out, float64(*p.HeartRate))
		}
	}
	return out
}

// FirstTime returns the timestamp of the first point that has one
func (s Series) FirstTime() (time.Time, bool) {
	for _, p := range s {
		if p.Time != nil {
			return *p.Time, true
		}
	}
	return time.Time{}, false
}

// LastTime returns the timestamp of the last point that has one
func (s Series) LastTime() (time.Time, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Time != nil {
			return *s[i].Time, true
		}
	}
	return time.Time{}, false
}
