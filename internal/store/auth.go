package store

import (
	"database/sql"
	"errors"
	"time"
)

const authColumns = `athlete_id, access_token, refresh_token, expires_at, updated_at`

func scanAuth(s scanner) (*Auth, error) {
	var a Auth
	var expiresAt, updatedAt int64
	err := s.Scan(&a.AthleteID, &a.AccessToken, &a.RefreshToken, &expiresAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoAuth
	}
	if err != nil {
		return nil, err
	}

	a.ExpiresAt = time.Unix(expiresAt, 0)
	a.UpdatedAt = time.Unix(updatedAt, 0)
	return &a, nil
}

// GetAuth returns the stored Strava login
func (db *DB) GetAuth() (*Auth, error) {
	return scanAuth(db.QueryRow(`SELECT ` + authColumns + ` FROM auth WHERE id = 1`))
}

// SaveAuth stores a fresh login, replacing any previous athlete
func (db *DB) SaveAuth(a *Auth) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO auth (id, `+authColumns+`) VALUES (1, ?, ?, ?, ?, ?)`,
		a.AthleteID, a.AccessToken, a.RefreshToken, a.ExpiresAt.Unix(), time.Now().Unix())
	return err
}

// UpdateTokens keeps the athlete and swaps in refreshed tokens.
// It fails with ErrNoAuth when nobody has logged in.
func (db *DB) UpdateTokens(accessToken, refreshToken string, expiresAt time.Time) error {
	res, err := db.Exec(`UPDATE auth SET access_token = ?, refresh_token = ?, expires_at = ?, updated_at = ? WHERE id = 1`,
		accessToken, refreshToken, expiresAt.Unix(), time.Now().Unix())
	if err != nil {
		return err
	}
	return requireAuthRow(res)
}

// DeleteAuth forgets the stored login
func (db *DB) DeleteAuth() error {
	res, err := db.Exec(`DELETE FROM auth WHERE id = 1`)
	if err != nil {
		return err
	}
	return requireAuthRow(res)
}

// requireAuthRow maps a statement that touched no row to ErrNoAuth
func requireAuthRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoAuth
	}
	return nil
}
