package analysis

import (
	"fmt"
	"math"
	"time"

	"runlog/internal/geo"
	"runlog/internal/track"
)

// Pace is average time per kilometer
type Pace struct {
	Minutes int
	Seconds int
}

// String formats the pace as M:SS
func (p Pace) String() string {
	return fmt.Sprintf("%d:%02d", p.Minutes, p.Seconds)
}

// TotalSeconds returns the pace in seconds per kilometer
func (p Pace) TotalSeconds() int {
	return p.Minutes*60 + p.Seconds
}

// Summary holds the scalar results of one pass over a track
type Summary struct {
	Created        *time.Time // recording metadata time, nil if absent or unparsable
	StartedAt      *time.Time // first point timestamp
	DistanceKm     float64    // rounded to 0.1
	ElapsedSeconds int        // truncated
	AvgSpeedKmh    float64    // 0 when elapsed is 0
	Pace           Pace       // zero when distance is 0
	AvgHeartRate   *float64   // nil when no point has heart rate
	AvgCadence     *float64   // nil when no point has cadence
	Points         int
}

// Date returns the date the run should be filed under: the recording
// creation time, falling back to the first point timestamp
func (s Summary) Date() (time.Time, bool) {
	if s.Created != nil {
		return *s.Created, true
	}
	if s.StartedAt != nil {
		return *s.StartedAt, true
	}
	return time.Time{}, false
}

// sensorTotals accumulates one optional sensor channel
type sensorTotals struct {
	sum   float64
	count int
}

func (s *sensorTotals) add(v *int) {
	if v == nil {
		return
	}
	s.sum += float64(*v)
	s.count++
}

// average returns nil when no samples were seen
func (s sensorTotals) average() *float64 {
	if s.count == 0 {
		return nil
	}
	avg := round1(s.sum / float64(s.count))
	return &avg
}

// Summarize walks the track once and returns its summary along with the
// point series for downstream zone analysis.
func Summarize(t *track.Track) (Summary, track.Series, error) {
	if t == nil {
		return Summary{}, nil, fmt.Errorf("%w: no track", ErrMalformedTrack)
	}

	points := t.Points
	summary := Summary{
		Created: ParseCreated(t.CreatedRaw),
		Points:  len(points),
	}

	var meters float64
	var hr, cad sensorTotals

	for i, p := range points {
		if i > 0 {
			prev := points[i-1]
			meters += geo.Distance(prev.Lat, prev.Lon, p.Lat, p.Lon)
		}
		hr.add(p.HeartRate)
		cad.add(p.Cadence)
	}

	if first, ok := points.FirstTime(); ok {
		summary.StartedAt = &first
		if last, ok := points.LastTime(); ok {
			summary.ElapsedSeconds = elapsedSeconds(first, last)
		}
	}

	summary.DistanceKm = round1(meters / 1000)
	summary.AvgSpeedKmh = averageSpeed(summary.DistanceKm, summary.ElapsedSeconds)
	summary.Pace = averagePace(summary.DistanceKm, summary.ElapsedSeconds)
	summary.AvgHeartRate = hr.average()
	summary.AvgCadence = cad.average()

	return summary, points, nil
}

// ParseCreated parses a recording creation timestamp.
// Anything that does not match CreatedLayout yields nil.
func ParseCreated(raw string) *time.Time {
	// time.Parse tolerates fractional seconds the layout does not mention
	if len(raw) != len(track.CreatedLayout) {
		return nil
	}
	created, err := time.Parse(track.CreatedLayout, raw)
	if err != nil {
		return nil
	}
	return &created
}

// elapsedSeconds returns the whole seconds between first and last, 0 when the
// clock ran backwards
func elapsedSeconds(first, last time.Time) int {
	secs := int(last.Sub(first).Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}

// averageSpeed returns km/h rounded to 0.1, 0 when elapsed is 0
func averageSpeed(distanceKm float64, elapsed int) float64 {
	if elapsed <= 0 {
		return 0
	}
	return round1(distanceKm / (float64(elapsed) / 3600))
}

// averagePace splits seconds-per-km into minutes and seconds, zero when distance is 0
func averagePace(distanceKm float64, elapsed int) Pace {
	if distanceKm <= 0 {
		return Pace{}
	}
	secPerKm := float64(elapsed) / distanceKm
	return Pace{
		Minutes: int(math.Floor(secPerKm / 60)),
		Seconds: int(math.Mod(secPerKm, 60)),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
