package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SaveRun stores a run and its zone times in one transaction.
// A run already stored for the same user and date is left untouched and
// inserted reports false.
func (db *DB) SaveRun(r *Run, zones []ZoneTime) (id int64, inserted bool, err error) {
	if r.Date.IsZero() {
		return 0, false, ErrNoRunDate
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT OR IGNORE INTO runs (
			user_id, date, name, source, distance, total_time, average_speed,
			average_heart_rate, average_pace, average_cadence, threshold_hr
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.UserID, r.Date.UTC().Format(DateLayout), r.Name, r.Source, r.Distance, r.TotalTime,
		r.AverageSpeed, r.AverageHeartRate, r.AveragePace, r.AverageCadence, r.ThresholdHR)
	if err != nil {
		return 0, false, fmt.Errorf("inserting run: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	if n == 0 {
		var existing int64
		err := tx.QueryRow(`SELECT id FROM runs WHERE user_id = ? AND date = ?`,
			r.UserID, r.Date.UTC().Format(DateLayout)).Scan(&existing)
		if err != nil {
			return 0, false, fmt.Errorf("looking up existing run: %w", err)
		}
		return existing, false, tx.Commit()
	}

	id, err = result.LastInsertId()
	if err != nil {
		return 0, false, err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO zone_times (run_id, zone, name, lower_bpm, upper_bpm, seconds, percent)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, false, err
	}
	defer stmt.Close()

	for _, z := range zones {
		if _, err := stmt.Exec(id, z.Zone, z.Name, z.LowerBPM, z.UpperBPM, z.Seconds, z.Percent); err != nil {
			return 0, false, fmt.Errorf("inserting zone %d: %w", z.Zone, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, false, err
	}
	r.ID = id
	return id, true, nil
}

const runColumns = `id, user_id, date, name, source, distance, total_time, average_speed,
	average_heart_rate, average_pace, average_cadence, threshold_hr`

// GetRunByDate returns the user's run recorded on the given calendar day (UTC)
func (db *DB) GetRunByDate(userID int64, day time.Time) (*Run, error) {
	row := db.QueryRow(`
		SELECT `+runColumns+`
		FROM runs
		WHERE user_id = ? AND DATE(date) = ?
		ORDER BY date
		LIMIT 1
	`, userID, day.UTC().Format("2006-01-02"))

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListRuns returns the user's runs, newest first. A limit <= 0 returns all.
func (db *DB) ListRuns(userID int64, limit int) ([]Run, error) {
	query := `
		SELECT ` + runColumns + `
		FROM runs
		WHERE user_id = ?
		ORDER BY date DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetZoneTimes returns the stored zone times for a run ordered by zone
func (db *DB) GetZoneTimes(runID int64) ([]ZoneTime, error) {
	rows, err := db.Query(`
		SELECT run_id, zone, name, lower_bpm, upper_bpm, seconds, percent
		FROM zone_times
		WHERE run_id = ?
		ORDER BY zone
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []ZoneTime
	for rows.Next() {
		var z ZoneTime
		var upper sql.NullFloat64
		if err := rows.Scan(&z.RunID, &z.Zone, &z.Name, &z.LowerBPM, &upper, &z.Seconds, &z.Percent); err != nil {
			return nil, err
		}
		if upper.Valid {
			z.UpperBPM = &upper.Float64
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var r Run
	var date string
	var name, source sql.NullString
	var hr, cadence, threshold sql.NullFloat64

	err := s.Scan(&r.ID, &r.UserID, &date, &name, &source, &r.Distance, &r.TotalTime,
		&r.AverageSpeed, &hr, &r.AveragePace, &cadence, &threshold)
	if err != nil {
		return nil, err
	}

	r.Date, err = time.Parse(DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parsing run date %q: %w", date, err)
	}
	r.Name = name.String
	r.Source = source.String
	r.AverageHeartRate = nullFloat(hr)
	r.AverageCadence = nullFloat(cadence)
	r.ThresholdHR = nullFloat(threshold)
	return &r, nil
}

func nullFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
