package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Strava authentication (singleton row)
		`CREATE TABLE IF NOT EXISTS auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			athlete_id INTEGER NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,

		// Run summaries, one per user and recording date
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			name TEXT,
			source TEXT,
			distance REAL NOT NULL,
			total_time INTEGER NOT NULL,
			average_speed REAL NOT NULL,
			average_heart_rate REAL,
			average_pace TEXT NOT NULL,
			average_cadence REAL,
			threshold_hr REAL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE UNIQUE INDEX IF NOT EXISTS idx_runs_user_date ON runs(user_id, date)`,

		// Time in heart rate zones for a saved run
		`CREATE TABLE IF NOT EXISTS zone_times (
			run_id INTEGER NOT NULL,
			zone INTEGER NOT NULL,
			name TEXT NOT NULL,
			lower_bpm REAL NOT NULL,
			upper_bpm REAL,
			seconds REAL NOT NULL,
			percent REAL NOT NULL,
			PRIMARY KEY (run_id, zone),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
