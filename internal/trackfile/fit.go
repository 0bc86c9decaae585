package trackfile

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/tormoder/fit"

	"runlog/internal/analysis"
	"runlog/internal/track"
)

// DecodeFIT decodes a FIT activity file into a track.
// Records without a position fix are skipped.
func DecodeFIT(r io.Reader) (*track.Track, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding fit: %w", analysis.ErrMalformedTrack, err)
	}

	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("%w: activity fit expected: %w", analysis.ErrMalformedTrack, err)
	}

	t := &track.Track{
		Source:     track.SourceFIT,
		CreatedRaw: formatCreated(validTime(decoded.FileId.TimeCreated)),
		Points:     convertRecords(activity.Records),
	}
	if len(activity.Sessions) > 0 {
		t.Name = fmt.Sprint(activity.Sessions[0].Sport)
	}

	return t, nil
}

func convertRecords(records []*fit.RecordMsg) track.Series {
	points := make(track.Series, 0, len(records))
	for _, rec := range records {
		if rec == nil || rec.PositionLat.Invalid() || rec.PositionLong.Invalid() {
			continue
		}

		p := track.Point{
			Lat: rec.PositionLat.Degrees(),
			Lon: rec.PositionLong.Degrees(),
		}
		if ts := validTime(rec.Timestamp); !ts.IsZero() {
			p.Time = &ts
		}
		if rec.HeartRate != math.MaxUint8 {
			hr := int(rec.HeartRate)
			p.HeartRate = &hr
		}
		if rec.Cadence != math.MaxUint8 {
			cad := int(rec.Cadence) * 2
			p.Cadence = &cad
		}
		points = append(points, p)
	}
	return points
}

func validTime(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t.UTC()
}
