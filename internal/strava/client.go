package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/maypok86/otter/v2"
	"golang.org/x/oauth2"
)

const BaseURL = "https://www.strava.com/api/v3"

// ErrNotFound is returned when Strava has no activity with the given ID
var ErrNotFound = errors.New("strava: not found")

// Client is a Strava API client
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *RateLimiter
	streams     *otter.Cache[int64, *Streams]
	logger      *slog.Logger

	attempts   uint
	retryDelay time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another API root
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithLogger sets the client's logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRetry sets the number of attempts and the base backoff delay
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.retryDelay = delay
	}
}

// WithMinInterval sets the minimum spacing between requests
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) { c.rateLimiter = NewRateLimiter(d) }
}

// NewClient creates a new Strava API client
func NewClient(tokenSource oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		httpClient:  oauth2.NewClient(context.Background(), tokenSource),
		baseURL:     BaseURL,
		rateLimiter: NewRateLimiter(150 * time.Millisecond), // ~6.6 req/s max
		streams: otter.Must(&otter.Options[int64, *Streams]{
			MaximumSize:      256,
			ExpiryCalculator: otter.ExpiryWriting[int64, *Streams](time.Hour),
		}),
		logger:     slog.Default(),
		attempts:   4,
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetActivity fetches a single activity
func (c *Client) GetActivity(ctx context.Context, activityID int64) (*Activity, error) {
	var activity Activity
	path := fmt.Sprintf("/activities/%d", activityID)
	if err := c.getJSON(ctx, path, nil, &activity); err != nil {
		return nil, fmt.Errorf("fetching activity %d: %w", activityID, err)
	}
	return &activity, nil
}

// GetActivityStreams fetches the time, position, heart rate and cadence
// streams of an activity. Results are cached for the life of the client.
func (c *Client) GetActivityStreams(ctx context.Context, activityID int64) (*Streams, error) {
	if s, ok := c.streams.GetIfPresent(activityID); ok {
		c.logger.Debug("stream cache hit", "activity", activityID)
		return s, nil
	}

	params := url.Values{}
	params.Set("keys", "time,latlng,heartrate,cadence")
	params.Set("key_by_type", "true")

	var streams Streams
	path := fmt.Sprintf("/activities/%d/streams", activityID)
	if err := c.getJSON(ctx, path, params, &streams); err != nil {
		return nil, fmt.Errorf("fetching streams for %d: %w", activityID, err)
	}

	c.streams.Set(activityID, &streams)
	return &streams, nil
}

// RateLimitStatus returns the current rate limit status
func (c *Client) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return c.rateLimiter.Status()
}

// getJSON performs a GET with rate limiting and retries, decoding the body into v
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	start := time.Now()
	err := retry.Do(
		func() error {
			if err := c.rateLimiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			return c.get(ctx, reqURL, v)
		},
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.MaxDelay(time.Minute),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Info("retrying strava request", "path", path, "attempt", n+1, "error", err)
		}),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return err
	}

	c.logger.Debug("strava request completed", "path", path, "duration", time.Since(start))
	return nil
}

func (c *Client) get(ctx context.Context, reqURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return retry.Unrecoverable(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.rateLimiter.UpdateFromHeaders(resp.Header)

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return retry.Unrecoverable(ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return retry.Unrecoverable(fmt.Errorf("API error %d: %s", resp.StatusCode, string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return retry.Unrecoverable(fmt.Errorf("decoding response: %w", err))
	}
	return nil
}
