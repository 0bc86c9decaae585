package strava

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"runlog/internal/analysis"
)

const activityJSON = `{
	"id": 1234,
	"name": "Lunch Run",
	"type": "Run",
	"sport_type": "Run",
	"start_date": "2024-10-02T06:58:12Z",
	"distance": 5012.3,
	"elapsed_time": 1800,
	"has_heartrate": true
}`

const streamsJSON = `{
	"time": {"data": [0, 5, 10], "series_type": "distance", "original_size": 3, "resolution": "high"},
	"latlng": {"data": [[59.9386, 30.3141], [59.9387, 30.3141], [59.9388, 30.3141]]},
	"heartrate": {"data": [142, 145, 150]},
	"cadence": {"data": [84, 0, 86]}
}`

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test", Expiry: time.Now().Add(time.Hour)})
	return NewClient(ts,
		WithBaseURL(srv.URL),
		WithRetry(3, time.Millisecond),
		WithMinInterval(0),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestGetActivity(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/activities/1234" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("X-RateLimit-Limit", "100,1000")
		w.Header().Set("X-RateLimit-Usage", "10,200")
		fmt.Fprint(w, activityJSON)
	}))

	a, err := c.GetActivity(context.Background(), 1234)
	if err != nil {
		t.Fatalf("GetActivity() error = %v", err)
	}
	if a.Name != "Lunch Run" || a.ElapsedTime != 1800 {
		t.Errorf("GetActivity() = %+v", a)
	}

	short, daily := c.RateLimitStatus()
	if short != 90 || daily != 800 {
		t.Errorf("RateLimitStatus() = %d, %d; want 90, 800", short, daily)
	}
}

func TestGetActivityNotFound(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))

	_, err := c.GetActivity(context.Background(), 1)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 404)", calls.Load())
	}
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, activityJSON)
	}))

	if _, err := c.GetActivity(context.Background(), 1234); err != nil {
		t.Fatalf("GetActivity() error = %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestGetActivityStreamsCached(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("key_by_type") != "true" {
			t.Errorf("key_by_type = %q", r.URL.Query().Get("key_by_type"))
		}
		fmt.Fprint(w, streamsJSON)
	}))

	for i := 0; i < 2; i++ {
		s, err := c.GetActivityStreams(context.Background(), 1234)
		if err != nil {
			t.Fatalf("GetActivityStreams() error = %v", err)
		}
		if s.Len() != 3 || !s.HasHeartrate() {
			t.Errorf("streams Len = %d, HasHeartrate = %v", s.Len(), s.HasHeartrate())
		}
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (second read from cache)", calls.Load())
	}
}

func TestToTrack(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/activities/1234" {
			fmt.Fprint(w, activityJSON)
			return
		}
		fmt.Fprint(w, streamsJSON)
	}))

	ctx := context.Background()
	a, err := c.GetActivity(ctx, 1234)
	if err != nil {
		t.Fatal(err)
	}
	s, err := c.GetActivityStreams(ctx, 1234)
	if err != nil {
		t.Fatal(err)
	}

	tr, err := ToTrack(a, s)
	if err != nil {
		t.Fatalf("ToTrack() error = %v", err)
	}
	if tr.CreatedRaw != "2024-10-02T06:58:12Z" {
		t.Errorf("CreatedRaw = %q", tr.CreatedRaw)
	}
	if len(tr.Points) != 3 {
		t.Fatalf("len(Points) = %d, want 3", len(tr.Points))
	}

	last := tr.Points[2]
	want := time.Date(2024, 10, 2, 6, 58, 22, 0, time.UTC)
	if last.Time == nil || !last.Time.Equal(want) {
		t.Errorf("Points[2].Time = %v, want %v", last.Time, want)
	}
	if last.Cadence == nil || *last.Cadence != 172 {
		t.Errorf("Points[2].Cadence = %v, want 172", last.Cadence)
	}
	if c := tr.Points[1].Cadence; c == nil || *c != 0 {
		t.Errorf("zero cadence should be kept as 0, got %v", c)
	}

	summary, _, err := analysis.Summarize(tr)
	if err != nil {
		t.Fatal(err)
	}
	if summary.ElapsedSeconds != 10 {
		t.Errorf("ElapsedSeconds = %d, want 10", summary.ElapsedSeconds)
	}
}

func TestToTrackSensorReadings(t *testing.T) {
	start := time.Date(2024, 10, 2, 6, 58, 12, 0, time.UTC)
	s := &Streams{
		Time:      &StreamData[int]{Data: []int{0, 1, 2, 3}},
		LatLng:    &StreamData[[2]float64]{Data: [][2]float64{{0, 0}, {0, 0.0001}, {0, 0.0002}, {0, 0.0003}}},
		Heartrate: &StreamData[int]{Data: []int{140, 0, -1}},
	}

	tr, err := ToTrack(&Activity{ID: 5, StartDate: start}, s)
	if err != nil {
		t.Fatalf("ToTrack() error = %v", err)
	}

	tests := []struct {
		name   string
		point  int
		wantHR *int
	}{
		{"regular reading", 0, intPtr(140)},
		{"zero reading kept as data", 1, intPtr(0)},
		{"negative reading absent", 2, nil},
		{"past the end of the stream", 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tr.Points[tt.point]
			switch {
			case tt.wantHR == nil && p.HeartRate != nil:
				t.Errorf("HeartRate = %d, want absent", *p.HeartRate)
			case tt.wantHR != nil && (p.HeartRate == nil || *p.HeartRate != *tt.wantHR):
				t.Errorf("HeartRate = %v, want %d", p.HeartRate, *tt.wantHR)
			}
			if p.Cadence != nil {
				t.Errorf("Cadence = %d without a cadence stream", *p.Cadence)
			}
		})
	}
}

func TestToTrackWithoutGPS(t *testing.T) {
	_, err := ToTrack(&Activity{ID: 9}, &Streams{Time: &StreamData[int]{Data: []int{0, 1}}})
	if !errors.Is(err, analysis.ErrMalformedTrack) {
		t.Errorf("error = %v, want ErrMalformedTrack", err)
	}
}

func intPtr(v int) *int { return &v }
