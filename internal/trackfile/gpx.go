package trackfile

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tkrajina/gpxgo/gpx"

	"runlog/internal/analysis"
	"runlog/internal/track"
)

// Garmin TrackPointExtension element names
const (
	extTrackPoint = "TrackPointExtension"
	extHeartRate  = "hr"
	extCadence    = "cad"
)

// gpxMetadata picks the raw metadata time out of a GPX document.
// gpxgo normalizes timestamps, so the creation date is read verbatim here.
type gpxMetadata struct {
	Metadata struct {
		Time string `xml:"time"`
	} `xml:"metadata"`
}

// DecodeGPX decodes a GPX document into a track
func DecodeGPX(data []byte) (*track.Track, error) {
	doc, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing gpx: %w", analysis.ErrMalformedTrack, err)
	}

	var meta gpxMetadata
	if err := xml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: reading gpx metadata: %w", analysis.ErrMalformedTrack, err)
	}

	t := &track.Track{
		Name:       doc.Name,
		Source:     track.SourceGPX,
		CreatedRaw: strings.TrimSpace(meta.Metadata.Time),
	}

	for _, trk := range doc.Tracks {
		if t.Name == "" {
			t.Name = trk.Name
		}
		for _, seg := range trk.Segments {
			for i := range seg.Points {
				t.Points = append(t.Points, convertGPXPoint(&seg.Points[i]))
			}
		}
	}

	// Route-only files carry their points outside of tracks
	if len(t.Points) == 0 {
		for _, rte := range doc.Routes {
			for i := range rte.Points {
				t.Points = append(t.Points, convertGPXPoint(&rte.Points[i]))
			}
		}
	}

	return t, nil
}

func convertGPXPoint(p *gpx.GPXPoint) track.Point {
	pt := track.Point{
		Lat: p.Point.Latitude,
		Lon: p.Point.Longitude,
	}
	if !p.Timestamp.IsZero() {
		ts := p.Timestamp.UTC()
		pt.Time = &ts
	}

	for _, ext := range p.Extensions.Nodes {
		if ext.XMLName.Local != extTrackPoint {
			continue
		}
		for _, child := range ext.Nodes {
			switch child.XMLName.Local {
			case extHeartRate:
				pt.HeartRate = parseSensor(child.Data)
			case extCadence:
				if cad := parseSensor(child.Data); cad != nil {
					// devices record one leg
					doubled := *cad * 2
					pt.Cadence = &doubled
				}
			}
		}
	}

	return pt
}

// parseSensor reads a non-negative integer reading, nil when unusable
func parseSensor(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil
		}
		v = int(f)
	}
	if v < 0 {
		return nil
	}
	return &v
}

// formatCreated renders a creation instant in the layout the summarizer expects
func formatCreated(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(track.CreatedLayout)
}
