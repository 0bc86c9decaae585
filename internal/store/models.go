package store

import "time"

// DateLayout is how run dates are stored; SQLite's DATE() understands it
const DateLayout = "2006-01-02 15:04:05"

// Auth represents OAuth tokens for Strava API access
type Auth struct {
	AthleteID    int64     `db:"athlete_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
	UpdatedAt    time.Time `db:"updated_at"` // last login or refresh
}

// Run is a persisted run summary
type Run struct {
	ID               int64     `db:"id"`
	UserID           int64     `db:"user_id"`
	Date             time.Time `db:"date"`
	Name             string    `db:"name"`
	Source           string    `db:"source"`
	Distance         float64   `db:"distance"`           // km
	TotalTime        int       `db:"total_time"`         // seconds
	AverageSpeed     float64   `db:"average_speed"`      // km/h
	AverageHeartRate *float64  `db:"average_heart_rate"` // nullable
	AveragePace      string    `db:"average_pace"`       // M:SS per km
	AverageCadence   *float64  `db:"average_cadence"`    // nullable
	ThresholdHR      *float64  `db:"threshold_hr"`       // nullable
}

// ZoneTime is the time a saved run spent in one heart rate zone
type ZoneTime struct {
	RunID    int64    `db:"run_id"`
	Zone     int      `db:"zone"`
	Name     string   `db:"name"`
	LowerBPM float64  `db:"lower_bpm"`
	UpperBPM *float64 `db:"upper_bpm"` // nil for the open top zone
	Seconds  float64  `db:"seconds"`
	Percent  float64  `db:"percent"`
}
