package trackfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tormoder/fit"

	"runlog/internal/analysis"
	"runlog/internal/track"
)

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="Zepp"
  xmlns="http://www.topografix.com/GPX/1/1"
  xmlns:gpxtpx="http://www.garmin.com/xmlschemas/TrackPointExtension/v1">
  <metadata>
    <time>2024-10-02T06:58:12Z</time>
  </metadata>
  <trk>
    <name>Morning Run</name>
    <trkseg>
      <trkpt lat="59.938600" lon="30.314100">
        <time>2024-10-02T07:00:00Z</time>
        <extensions>
          <gpxtpx:TrackPointExtension>
            <gpxtpx:hr>142</gpxtpx:hr>
            <gpxtpx:cad>84</gpxtpx:cad>
          </gpxtpx:TrackPointExtension>
        </extensions>
      </trkpt>
      <trkpt lat="59.938700" lon="30.314100">
        <time>2024-10-02T07:00:05Z</time>
        <extensions>
          <gpxtpx:TrackPointExtension>
            <gpxtpx:hr>145</gpxtpx:hr>
          </gpxtpx:TrackPointExtension>
        </extensions>
      </trkpt>
      <trkpt lat="59.938800" lon="30.314100">
        <time>2024-10-02T07:00:10Z</time>
      </trkpt>
    </trkseg>
  </trk>
</gpx>`

func TestDecodeGPX(t *testing.T) {
	tr, err := Decode(strings.NewReader(sampleGPX), track.SourceGPX)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if tr.Name != "Morning Run" {
		t.Errorf("Name = %q, want %q", tr.Name, "Morning Run")
	}
	if tr.Source != track.SourceGPX {
		t.Errorf("Source = %q, want %q", tr.Source, track.SourceGPX)
	}
	if tr.CreatedRaw != "2024-10-02T06:58:12Z" {
		t.Errorf("CreatedRaw = %q, want %q", tr.CreatedRaw, "2024-10-02T06:58:12Z")
	}
	if len(tr.Points) != 3 {
		t.Fatalf("len(Points) = %d, want 3", len(tr.Points))
	}

	p0 := tr.Points[0]
	if p0.Lat != 59.9386 || p0.Lon != 30.3141 {
		t.Errorf("Points[0] = %v,%v", p0.Lat, p0.Lon)
	}
	if p0.Time == nil || !p0.Time.Equal(time.Date(2024, 10, 2, 7, 0, 0, 0, time.UTC)) {
		t.Errorf("Points[0].Time = %v", p0.Time)
	}
	if p0.HeartRate == nil || *p0.HeartRate != 142 {
		t.Errorf("Points[0].HeartRate = %v, want 142", p0.HeartRate)
	}
	if p0.Cadence == nil || *p0.Cadence != 168 {
		t.Errorf("Points[0].Cadence = %v, want 168 (doubled)", p0.Cadence)
	}

	p1 := tr.Points[1]
	if p1.HeartRate == nil || *p1.HeartRate != 145 {
		t.Errorf("Points[1].HeartRate = %v, want 145", p1.HeartRate)
	}
	if p1.Cadence != nil {
		t.Errorf("Points[1].Cadence = %v, want nil", *p1.Cadence)
	}

	p2 := tr.Points[2]
	if p2.HeartRate != nil || p2.Cadence != nil {
		t.Errorf("Points[2] sensors = %v/%v, want nil", p2.HeartRate, p2.Cadence)
	}
}

func TestDecodeGPXFeedsSummarizer(t *testing.T) {
	tr, err := Decode(strings.NewReader(sampleGPX), track.SourceGPX)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	summary, series, err := analysis.Summarize(tr)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary.Created == nil || summary.Created.Minute() != 58 {
		t.Errorf("Created = %v, want 06:58:12", summary.Created)
	}
	if summary.ElapsedSeconds != 10 {
		t.Errorf("ElapsedSeconds = %d, want 10", summary.ElapsedSeconds)
	}
	if summary.AvgHeartRate == nil || *summary.AvgHeartRate != 143.5 {
		t.Errorf("AvgHeartRate = %v, want 143.5", summary.AvgHeartRate)
	}
	if summary.AvgCadence == nil || *summary.AvgCadence != 168 {
		t.Errorf("AvgCadence = %v, want 168", summary.AvgCadence)
	}

	zones, err := analysis.AnalyzeZones(171, series)
	if err != nil {
		t.Fatalf("AnalyzeZones() error = %v", err)
	}
	// 142 and 145 are both in zone 2 for T=171
	if zones.Shares[1].Percent != 100 {
		t.Errorf("zone 2 = %v%%, want 100", zones.Shares[1].Percent)
	}
}

func TestDecodeGPXWithoutMetadata(t *testing.T) {
	doc := `<?xml version="1.0"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk><trkseg>
    <trkpt lat="1.0" lon="2.0"></trkpt>
  </trkseg></trk>
</gpx>`

	tr, err := Decode(strings.NewReader(doc), track.SourceGPX)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if tr.CreatedRaw != "" {
		t.Errorf("CreatedRaw = %q, want empty", tr.CreatedRaw)
	}
	if len(tr.Points) != 1 || tr.Points[0].Time != nil {
		t.Errorf("Points = %+v, want one point without time", tr.Points)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format string
	}{
		{"broken gpx", "<gpx><trk><trkseg><trkpt", track.SourceGPX},
		{"not a gpx document", "hello", track.SourceGPX},
		{"garbage fit", "not a fit file at all", track.SourceFIT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), tt.format)
			if !errors.Is(err, analysis.ErrMalformedTrack) {
				t.Errorf("Decode() error = %v, want ErrMalformedTrack", err)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"run.gpx", track.SourceGPX, false},
		{"RUN.GPX", track.SourceGPX, false},
		{"/tmp/activity.fit", track.SourceFIT, false},
		{"notes.txt", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		got, err := Format(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("Format(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if tt.wantErr && !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Format(%q) error = %v, want ErrUnsupportedFormat", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("Format(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestLoadNamesTrackFromFile(t *testing.T) {
	doc := strings.Replace(sampleGPX, "<name>Morning Run</name>", "", 1)
	path := filepath.Join(t.TempDir(), "tempo_2024-10-02.gpx")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	tr, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if tr.Name != "tempo_2024-10-02" {
		t.Errorf("Name = %q, want file base name", tr.Name)
	}
}

func TestConvertRecords(t *testing.T) {
	ts := time.Date(2024, 10, 2, 7, 0, 0, 0, time.UTC)

	withFix := fit.NewRecordMsg()
	withFix.Timestamp = ts
	withFix.PositionLat = fit.NewLatitudeDegrees(59.9386)
	withFix.PositionLong = fit.NewLongitudeDegrees(30.3141)
	withFix.HeartRate = 150
	withFix.Cadence = 86

	noSensors := fit.NewRecordMsg()
	noSensors.Timestamp = ts.Add(time.Second)
	noSensors.PositionLat = fit.NewLatitudeDegrees(59.9387)
	noSensors.PositionLong = fit.NewLongitudeDegrees(30.3141)

	// indoor record without a position fix
	noFix := fit.NewRecordMsg()
	noFix.Timestamp = ts.Add(2 * time.Second)
	noFix.HeartRate = 151

	points := convertRecords([]*fit.RecordMsg{withFix, noSensors, noFix, nil})
	if len(points) != 2 {
		t.Fatalf("len(points) = %d, want 2", len(points))
	}

	p := points[0]
	if diff := p.Lat - 59.9386; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("Lat = %v, want ~59.9386", p.Lat)
	}
	if p.Time == nil || !p.Time.Equal(ts) {
		t.Errorf("Time = %v, want %v", p.Time, ts)
	}
	if p.HeartRate == nil || *p.HeartRate != 150 {
		t.Errorf("HeartRate = %v, want 150", p.HeartRate)
	}
	if p.Cadence == nil || *p.Cadence != 172 {
		t.Errorf("Cadence = %v, want 172 (doubled)", p.Cadence)
	}

	if points[1].HeartRate != nil || points[1].Cadence != nil {
		t.Errorf("points[1] sensors = %v/%v, want nil", points[1].HeartRate, points[1].Cadence)
	}
}

func TestParseSensor(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"142", intPtr(142)},
		{" 88\n", intPtr(88)},
		{"142.0", intPtr(142)},
		{"", nil},
		{"-5", nil},
		{"n/a", nil},
	}
	for _, tt := range tests {
		got := parseSensor(tt.in)
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Errorf("parseSensor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func intPtr(v int) *int { return &v }

// encodeActivity writes a small running activity in FIT format
func encodeActivity(t *testing.T, created time.Time, records ...*fit.RecordMsg) []byte {
	t.Helper()
	file, err := fit.NewFile(fit.FileTypeActivity, fit.NewHeader(fit.V20, false))
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	file.FileId.TimeCreated = created

	act, err := file.Activity()
	if err != nil {
		t.Fatalf("Activity() error = %v", err)
	}
	session := fit.NewSessionMsg()
	session.Sport = fit.SportRunning
	act.Sessions = append(act.Sessions, session)
	act.Records = append(act.Records, records...)

	var buf bytes.Buffer
	if err := fit.Encode(&buf, file, binary.LittleEndian); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return buf.Bytes()
}

func fitRecord(ts time.Time, lat, lon float64, hr, cad uint8) *fit.RecordMsg {
	rec := fit.NewRecordMsg()
	rec.Timestamp = ts
	rec.PositionLat = fit.NewLatitudeDegrees(lat)
	rec.PositionLong = fit.NewLongitudeDegrees(lon)
	rec.HeartRate = hr
	rec.Cadence = cad
	return rec
}

func TestDecodeFIT(t *testing.T) {
	created := time.Date(2024, 10, 2, 6, 58, 12, 0, time.UTC)
	start := time.Date(2024, 10, 2, 7, 0, 0, 0, time.UTC)

	noFix := fit.NewRecordMsg()
	noFix.Timestamp = start.Add(5 * time.Second)
	noFix.HeartRate = 150

	data := encodeActivity(t, created,
		fitRecord(start, 59.9386, 30.3141, 142, 84),
		noFix,
		fitRecord(start.Add(10*time.Second), 59.9387, 30.3141, 145, 0xFF),
	)

	got, err := Decode(bytes.NewReader(data), track.SourceFIT)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if got.Source != track.SourceFIT || got.Name != "Running" {
		t.Errorf("Source, Name = %q, %q", got.Source, got.Name)
	}
	if got.CreatedRaw != "2024-10-02T06:58:12Z" {
		t.Errorf("CreatedRaw = %q", got.CreatedRaw)
	}
	if len(got.Points) != 2 {
		t.Fatalf("len(Points) = %d, want 2 (record without a fix skipped)", len(got.Points))
	}

	first := got.Points[0]
	if math.Abs(first.Lat-59.9386) > 1e-6 || math.Abs(first.Lon-30.3141) > 1e-6 {
		t.Errorf("first position = %v, %v", first.Lat, first.Lon)
	}
	if first.Time == nil || !first.Time.Equal(start) {
		t.Errorf("first Time = %v, want %v", first.Time, start)
	}
	if first.HeartRate == nil || *first.HeartRate != 142 {
		t.Errorf("first HeartRate = %v, want 142", first.HeartRate)
	}
	if first.Cadence == nil || *first.Cadence != 168 {
		t.Errorf("first Cadence = %v, want 168", first.Cadence)
	}
	if got.Points[1].Cadence != nil {
		t.Errorf("invalid cadence decoded as %d", *got.Points[1].Cadence)
	}

	s, _, err := analysis.Summarize(got)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if s.ElapsedSeconds != 10 {
		t.Errorf("ElapsedSeconds = %d, want 10", s.ElapsedSeconds)
	}
	if d, ok := s.Date(); !ok || !d.Equal(created) {
		t.Errorf("Date() = %v, %v; want %v", d, ok, created)
	}
}

func TestDecodeFITWithoutCreationTime(t *testing.T) {
	fitEpoch := time.Date(1989, time.December, 31, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, 10, 2, 7, 0, 0, 0, time.UTC)

	data := encodeActivity(t, fitEpoch, fitRecord(start, 0, 0, 140, 80))

	got, err := DecodeFIT(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeFIT() error = %v", err)
	}
	if got.CreatedRaw != "" {
		t.Errorf("CreatedRaw = %q, want empty", got.CreatedRaw)
	}
	if len(got.Points) != 1 || got.Points[0].Time == nil {
		t.Fatalf("Points = %+v", got.Points)
	}
}

func TestDecodeFITRejectsNonActivity(t *testing.T) {
	file, err := fit.NewFile(fit.FileTypeCourse, fit.NewHeader(fit.V20, false))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := fit.Encode(&buf, file, binary.LittleEndian); err != nil {
		t.Fatal(err)
	}

	if _, err := DecodeFIT(&buf); !errors.Is(err, analysis.ErrMalformedTrack) {
		t.Errorf("DecodeFIT(course) error = %v, want ErrMalformedTrack", err)
	}
}
