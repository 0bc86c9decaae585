package strava

import (
	"fmt"
	"time"

	"runlog/internal/analysis"
	"runlog/internal/track"
)

// ToTrack converts an activity and its streams into a track.
// Samples without a position are dropped. A sensor reading is absent only
// when its stream has no non-negative sample at that index. Zeros are data,
// as in GPX and FIT files. Strava reports run cadence per leg, so it is
// doubled to steps per minute.
func ToTrack(a *Activity, s *Streams) (*track.Track, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: no activity", analysis.ErrMalformedTrack)
	}
	if s == nil || s.LatLng == nil {
		return nil, fmt.Errorf("%w: activity %d has no GPS stream", analysis.ErrMalformedTrack, a.ID)
	}

	t := &track.Track{
		Name:   a.Name,
		Source: track.SourceStrava,
		Points: make(track.Series, 0, len(s.LatLng.Data)),
	}
	if !a.StartDate.IsZero() {
		t.CreatedRaw = a.StartDate.UTC().Format(track.CreatedLayout)
	}

	for i, ll := range s.LatLng.Data {
		p := track.Point{Lat: ll[0], Lon: ll[1]}

		if offset, ok := streamAt(s.Time, i); ok && !a.StartDate.IsZero() {
			ts := a.StartDate.UTC().Add(time.Duration(offset) * time.Second)
			p.Time = &ts
		}
		if hr, ok := streamAt(s.Heartrate, i); ok && hr >= 0 {
			p.HeartRate = &hr
		}
		if cad, ok := streamAt(s.Cadence, i); ok && cad >= 0 {
			steps := cad * 2
			p.Cadence = &steps
		}

		t.Points = append(t.Points, p)
	}

	return t, nil
}
