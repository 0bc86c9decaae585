package auth

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/oauth2"

	"runlog/internal/store"
)

// TokenStore persists Strava tokens between runs
type TokenStore interface {
	GetAuth() (*store.Auth, error)
	SaveAuth(a *store.Auth) error
	UpdateTokens(accessToken, refreshToken string, expiresAt time.Time) error
}

// Login runs the browser flow and stores the resulting tokens
func Login(ctx context.Context, cfg *oauth2.Config, ts TokenStore, out io.Writer) (*AuthResult, error) {
	result, err := Authenticate(ctx, cfg, out)
	if err != nil {
		return nil, err
	}
	if err := saveResult(ts, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Resume builds a refreshing token source from stored tokens.
// It returns store.ErrNoAuth when the user has never logged in.
func Resume(cfg *oauth2.Config, ts TokenStore) (*TokenSource, error) {
	a, err := ts.GetAuth()
	if err != nil {
		return nil, err
	}
	return resume(cfg, ts, a), nil
}

func resume(cfg *oauth2.Config, ts TokenStore, a *store.Auth) *TokenSource {
	token := &oauth2.Token{
		AccessToken:  a.AccessToken,
		RefreshToken: a.RefreshToken,
		Expiry:       a.ExpiresAt,
	}

	return NewTokenSource(cfg, token, func(newToken *oauth2.Token) error {
		return ts.UpdateTokens(newToken.AccessToken, newToken.RefreshToken, newToken.Expiry)
	})
}

// Status is what is known about the stored login without contacting Strava
type Status struct {
	AthleteID    int64
	UpdatedAt    time.Time
	NeedsRefresh bool // the access token is refreshed on the next request
}

// CurrentStatus reads the stored login. It returns store.ErrNoAuth when the
// user has never logged in.
func CurrentStatus(cfg *oauth2.Config, ts TokenStore) (*Status, error) {
	a, err := ts.GetAuth()
	if err != nil {
		return nil, err
	}
	return &Status{
		AthleteID:    a.AthleteID,
		UpdatedAt:    a.UpdatedAt,
		NeedsRefresh: resume(cfg, ts, a).IsExpired(),
	}, nil
}

func saveResult(ts TokenStore, result *AuthResult) error {
	err := ts.SaveAuth(&store.Auth{
		AthleteID:    result.AthleteID,
		AccessToken:  result.Token.AccessToken,
		RefreshToken: result.Token.RefreshToken,
		ExpiresAt:    result.Token.Expiry,
	})
	if err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	return nil
}
