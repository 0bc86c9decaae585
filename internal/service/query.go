package service

import (
	"fmt"
	"time"

	"runlog/internal/store"
)

// QueryService provides read-only queries over saved runs
type QueryService struct {
	store *store.DB
}

// NewQueryService creates a new query service
func NewQueryService(db *store.DB) *QueryService {
	return &QueryService{store: db}
}

// RunDetail is a saved run with its zone split
type RunDetail struct {
	Run   store.Run
	Zones []store.ZoneTime
}

// HistoryData is the list of saved runs with totals
type HistoryData struct {
	Runs          []store.Run
	TotalDistance float64 // km
	TotalTime     int     // seconds
	AvgHeartRate  *float64
}

// RunOn returns the user's run on a calendar day given as YYYY-MM-DD
func (q *QueryService) RunOn(userID int64, day string) (*RunDetail, error) {
	d, err := time.Parse(DayLayout, day)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD", day)
	}

	run, err := q.store.GetRunByDate(userID, d)
	if err != nil {
		return nil, err
	}

	zones, err := q.store.GetZoneTimes(run.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching zones: %w", err)
	}

	return &RunDetail{Run: *run, Zones: zones}, nil
}

// History returns the user's most recent runs, newest first
func (q *QueryService) History(userID int64) (*HistoryData, error) {
	runs, err := q.store.ListRuns(userID, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	data := &HistoryData{Runs: runs}
	var hrSum float64
	var hrCount int
	for _, r := range runs {
		data.TotalDistance += r.Distance
		data.TotalTime += r.TotalTime
		if r.AverageHeartRate != nil {
			hrSum += *r.AverageHeartRate
			hrCount++
		}
	}
	if hrCount > 0 {
		avg := hrSum / float64(hrCount)
		data.AvgHeartRate = &avg
	}
	return data, nil
}

// FormatDuration formats seconds as H:MM:SS, or M:SS under an hour
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// StepThreshold moves a threshold by delta, staying in the plausible range
func StepThreshold(threshold, delta float64) float64 {
	t := threshold + delta
	if t < MinThresholdHR {
		return MinThresholdHR
	}
	if t > MaxThresholdHR {
		return MaxThresholdHR
	}
	return t
}
