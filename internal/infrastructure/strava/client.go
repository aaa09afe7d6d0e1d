// Package strava is a minimal Strava v3 API client covering what the sync
// worker needs: token refresh, activity listing, and latlng/time/altitude/
// heartrate streams.
package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/config"
)

type Client struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	refreshToken string
	perPage      int
	logger       *zap.Logger

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func NewClient(cfg *config.StravaConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		refreshToken: cfg.RefreshToken,
		perPage:      cfg.PerPage,
		logger:       logger,
	}
}

// Configured reports whether credentials were provided.
func (c *Client) Configured() bool {
	return c.clientID != "" && c.clientSecret != "" && c.refreshToken != ""
}

// SummaryActivity is the subset of the Strava activity summary we consume.
type SummaryActivity struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	SportType     string  `json:"sport_type"`
	Commute       bool    `json:"commute"`
	Distance      float64 `json:"distance"`     // meters
	ElapsedTime   int64   `json:"elapsed_time"` // seconds
	MovingTime    int64   `json:"moving_time"`
	StartDate     string  `json:"start_date"` // ISO8601
	Calories      float64 `json:"calories"`
	GearID        string  `json:"gear_id"`
	AverageSpeed  float64 `json:"average_speed"` // m/s
	HasHeartrate  bool    `json:"has_heartrate"`
	TotalPhotoCnt int     `json:"total_photo_count"`
}

// StartTime parses the activity start date.
func (a SummaryActivity) StartTime() (time.Time, error) {
	return time.Parse(time.RFC3339, a.StartDate)
}

// Streams holds the parallel sample arrays of one activity.
type Streams struct {
	LatLng    [][2]float64 // [lat, lon] per Strava
	Time      []int64      // seconds from start
	Altitude  []float64
	HeartRate []int
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// token returns a valid access token, refreshing when within a minute of expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Until(c.expiresAt) > time.Minute {
		return c.accessToken, nil
	}

	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.refreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/oauth/token", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.URL.RawQuery = form.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token refresh failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token refresh: status %d, body: %s", resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	c.accessToken = tok.AccessToken
	c.expiresAt = time.Unix(tok.ExpiresAt, 0)
	if tok.RefreshToken != "" {
		// Strava rotates refresh tokens.
		c.refreshToken = tok.RefreshToken
	}

	c.logger.Debug("Strava access token refreshed",
		zap.Time("expires_at", c.expiresAt))

	return c.accessToken, nil
}

// ListActivities returns one page of athlete activities started after the
// given unix timestamp (0 for all).
func (c *Client) ListActivities(ctx context.Context, page int, after int64) ([]SummaryActivity, error) {
	q := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(c.perPage)},
	}
	if after > 0 {
		q.Set("after", strconv.FormatInt(after, 10))
	}

	var activities []SummaryActivity
	if err := c.getJSON(ctx, "/api/v3/athlete/activities?"+q.Encode(), &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// GetActivity returns the detailed activity (has calories, unlike the summary).
func (c *Client) GetActivity(ctx context.Context, id int64) (*SummaryActivity, error) {
	var activity SummaryActivity
	if err := c.getJSON(ctx, fmt.Sprintf("/api/v3/activities/%d", id), &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

type streamSet struct {
	LatLng *struct {
		Data [][2]float64 `json:"data"`
	} `json:"latlng"`
	Time *struct {
		Data []int64 `json:"data"`
	} `json:"time"`
	Altitude *struct {
		Data []float64 `json:"data"`
	} `json:"altitude"`
	Heartrate *struct {
		Data []int `json:"data"`
	} `json:"heartrate"`
}

// GetStreams fetches the raw sample streams of one activity.
func (c *Client) GetStreams(ctx context.Context, id int64) (*Streams, error) {
	path := fmt.Sprintf("/api/v3/activities/%d/streams?keys=latlng,time,altitude,heartrate&key_by_type=true", id)

	var set streamSet
	if err := c.getJSON(ctx, path, &set); err != nil {
		return nil, err
	}

	streams := &Streams{}
	if set.LatLng != nil {
		streams.LatLng = set.LatLng.Data
	}
	if set.Time != nil {
		streams.Time = set.Time.Data
	}
	if set.Altitude != nil {
		streams.Altitude = set.Altitude.Data
	}
	if set.Heartrate != nil {
		streams.HeartRate = set.Heartrate.Data
	}
	return streams, nil
}

// getJSON performs an authenticated GET, honoring one 429 retry-after pause.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	for attempt := 0; attempt < 2; attempt++ {
		tok, err := c.token(ctx)
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("strava request failed: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			wait := retryAfter(resp)
			c.logger.Warn("Strava rate limit hit",
				zap.Duration("retry_after", wait))
			select {
			case <-time.After(wait):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("strava API error: status %d, body: %s", resp.StatusCode, string(body))
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("strava API rate limited")
}

func retryAfter(resp *http.Response) time.Duration {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 15 * time.Second
}
