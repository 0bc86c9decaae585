package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"runlog/internal/analysis"
	"runlog/internal/store"
	"runlog/internal/strava"
	"runlog/internal/track"
	"runlog/internal/trackfile"
)

// ActivitySource fetches Strava activities
type ActivitySource interface {
	GetActivity(ctx context.Context, activityID int64) (*strava.Activity, error)
	GetActivityStreams(ctx context.Context, activityID int64) (*strava.Streams, error)
}

// Analyzer runs the summary and zone analysis for one recording and
// persists the result
type Analyzer struct {
	store       *store.DB
	denominator analysis.Denominator
	logger      *slog.Logger
}

// NewAnalyzer creates an analyzer. db may be nil when nothing is saved.
func NewAnalyzer(db *store.DB, denominator analysis.Denominator, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		store:       db,
		denominator: denominator,
		logger:      logger,
	}
}

// Report is everything the presentation layer shows for one run
type Report struct {
	Name      string
	Source    string
	Summary   analysis.Summary
	Series    track.Series
	Threshold float64
	Zones     analysis.ZoneShares
	Effort    analysis.Effort
	HRSeries  []float64 // heart rate readings in order, for charting
}

// HasZones reports whether zone time could be computed
func (r *Report) HasZones() bool {
	return r.Zones.HasData()
}

// AnalyzeFile loads a GPX or FIT file and analyzes it
func (a *Analyzer) AnalyzeFile(path string, threshold float64) (*Report, error) {
	t, err := trackfile.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	a.logger.Debug("track loaded", "path", path, "source", t.Source, "points", len(t.Points))
	return a.AnalyzeTrack(t, threshold)
}

// ImportStrava fetches a Strava activity with its streams and analyzes it
func (a *Analyzer) ImportStrava(ctx context.Context, src ActivitySource, activityID int64, threshold float64) (*Report, error) {
	activity, err := src.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	streams, err := src.GetActivityStreams(ctx, activityID)
	if err != nil {
		return nil, err
	}

	t, err := strava.ToTrack(activity, streams)
	if err != nil {
		return nil, err
	}
	if !streams.HasHeartrate() {
		a.logger.Warn("strava activity has no heart rate stream", "activity", activityID)
	}
	a.logger.Debug("strava activity loaded", "activity", activityID, "samples", streams.Len(), "points", len(t.Points))
	return a.AnalyzeTrack(t, threshold)
}

// AnalyzeTrack summarizes a decoded track and splits its time across zones
func (a *Analyzer) AnalyzeTrack(t *track.Track, threshold float64) (*Report, error) {
	summary, series, err := analysis.Summarize(t)
	if err != nil {
		return nil, fmt.Errorf("summarizing track: %w", err)
	}

	if !series.HasHeartRate() {
		a.logger.Warn("track has no heart rate readings", "name", t.Name, "points", len(series))
	}

	r := &Report{
		Name:     t.Name,
		Source:   t.Source,
		Summary:  summary,
		Series:   series,
		Effort:   analysis.AnalyzeEffort(series),
		HRSeries: series.HeartRates(),
	}
	if err := a.Reanalyze(r, threshold); err != nil {
		return nil, err
	}

	a.logger.Info("run analyzed",
		"name", r.Name,
		"distance_km", summary.DistanceKm,
		"elapsed_s", summary.ElapsedSeconds,
		"threshold", threshold,
		"zoned_s", r.Zones.TotalSeconds,
	)
	return r, nil
}

// Reanalyze recomputes the zone split of a report for a new threshold.
// A series too short for zones leaves an empty split rather than failing.
func (a *Analyzer) Reanalyze(r *Report, threshold float64) error {
	zones, err := analysis.AnalyzeZones(threshold, r.Series, analysis.WithDenominator(a.denominator))
	switch {
	case errors.Is(err, analysis.ErrEmptySeries):
		a.logger.Warn("too few points for zone analysis", "points", len(r.Series))
		zones = analysis.ZoneShares{Threshold: threshold, Denominator: a.denominator}
	case err != nil:
		return fmt.Errorf("analyzing zones: %w", err)
	}

	r.Threshold = threshold
	r.Zones = zones
	return nil
}

// SaveResult describes the outcome of saving a report
type SaveResult struct {
	RunID    int64
	Inserted bool // false when a run for the same user and date was already stored
}

// Save persists a report's summary and zone split for a user
func (a *Analyzer) Save(userID int64, r *Report) (*SaveResult, error) {
	if a.store == nil {
		return nil, errors.New("no database configured")
	}

	run, err := runFromReport(userID, r)
	if err != nil {
		return nil, err
	}

	id, inserted, err := a.store.SaveRun(run, zoneTimesFromReport(r))
	if err != nil {
		return nil, fmt.Errorf("saving run: %w", err)
	}

	if inserted {
		a.logger.Info("run saved", "user", userID, "date", run.Date, "id", id)
	} else {
		a.logger.Warn("run already stored", "user", userID, "date", run.Date, "id", id)
	}
	return &SaveResult{RunID: id, Inserted: inserted}, nil
}

func runFromReport(userID int64, r *Report) (*store.Run, error) {
	date, ok := r.Summary.Date()
	if !ok {
		return nil, store.ErrNoRunDate
	}

	s := r.Summary
	run := &store.Run{
		UserID:           userID,
		Date:             date,
		Name:             r.Name,
		Source:           r.Source,
		Distance:         s.DistanceKm,
		TotalTime:        s.ElapsedSeconds,
		AverageSpeed:     s.AvgSpeedKmh,
		AverageHeartRate: s.AvgHeartRate,
		AveragePace:      s.Pace.String(),
		AverageCadence:   s.AvgCadence,
	}
	if r.Threshold > 0 {
		t := r.Threshold
		run.ThresholdHR = &t
	}
	return run, nil
}

func zoneTimesFromReport(r *Report) []store.ZoneTime {
	if !r.HasZones() {
		return nil
	}

	zones := make([]store.ZoneTime, 0, len(r.Zones.Shares))
	for _, s := range r.Zones.Shares {
		zt := store.ZoneTime{
			Zone:     s.Zone.Number,
			Name:     s.Zone.Name,
			LowerBPM: s.Zone.Lower,
			Seconds:  s.Seconds,
			Percent:  s.Percent,
		}
		if !math.IsInf(s.Zone.Upper, 1) {
			upper := s.Zone.Upper
			zt.UpperBPM = &upper
		}
		zones = append(zones, zt)
	}
	return zones
}
