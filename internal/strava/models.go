package strava

import "time"

// Activity is the part of a Strava activity runlog uses
type Activity struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	SportType   string    `json:"sport_type"`
	StartDate   time.Time `json:"start_date"`
	Distance    float64   `json:"distance"`     // meters
	ElapsedTime int       `json:"elapsed_time"` // seconds
	HasHR       bool      `json:"has_heartrate"`
}

// Streams represents activity stream data from the API.
// Strava returns streams keyed by type when key_by_type=true.
type Streams struct {
	Time      *StreamData[int]        `json:"time"`
	LatLng    *StreamData[[2]float64] `json:"latlng"`
	Heartrate *StreamData[int]        `json:"heartrate"`
	Cadence   *StreamData[int]        `json:"cadence"`
}

// StreamData represents a single stream type
type StreamData[T any] struct {
	Data         []T    `json:"data"`
	SeriesType   string `json:"series_type"`
	OriginalSize int    `json:"original_size"`
	Resolution   string `json:"resolution"`
}

// Len returns the number of samples, or 0 without a time stream
func (s *Streams) Len() int {
	if s == nil || s.Time == nil {
		return 0
	}
	return len(s.Time.Data)
}

// HasHeartrate returns true if heartrate data exists
func (s *Streams) HasHeartrate() bool {
	return s != nil && s.Heartrate != nil && len(s.Heartrate.Data) > 0
}

// streamAt returns the i-th sample of a stream that may be absent or short
func streamAt[T any](s *StreamData[T], i int) (T, bool) {
	var zero T
	if s == nil || i >= len(s.Data) {
		return zero, false
	}
	return s.Data[i], true
}
