package strava_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/config"
	"github.com/tilescout/tilescout/internal/infrastructure/strava"
)

func newTestClient(t *testing.T, handler http.Handler) *strava.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return strava.NewClient(&config.StravaConfig{
		ClientID:     "123",
		ClientSecret: "secret",
		RefreshToken: "refresh",
		BaseURL:      srv.URL,
		Timeout:      5 * time.Second,
		PerPage:      2,
	}, zap.NewNop())
}

func TestListActivities(t *testing.T) {
	var tokenCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","expires_at":` +
			// far in the future
			`4102444800}`))
	})
	mux.HandleFunc("/api/v3/athlete/activities", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))
		assert.Equal(t, "1700000000", r.URL.Query().Get("after"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":11,"name":"Lunch Ride","sport_type":"Ride","distance":25000,"elapsed_time":3600,"start_date":"2024-05-01T12:00:00Z","commute":false},
			{"id":12,"name":"To work","sport_type":"Ride","distance":8000,"elapsed_time":1500,"start_date":"2024-05-02T07:30:00Z","commute":true}
		]`))
	})

	c := newTestClient(t, mux)

	activities, err := c.ListActivities(context.Background(), 1, 1700000000)
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.Equal(t, int64(11), activities[0].ID)
	assert.True(t, activities[1].Commute)

	start, err := activities[0].StartTime()
	require.NoError(t, err)
	assert.Equal(t, 2024, start.Year())

	// Token must be reused across calls while valid.
	_, err = c.ListActivities(context.Background(), 1, 1700000000)
	require.NoError(t, err)
	assert.Equal(t, 1, tokenCalls)
}

func TestGetStreams(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"tok","expires_at":4102444800}`))
	})
	mux.HandleFunc("/api/v3/activities/11/streams", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("keys"), "latlng")
		_, _ = w.Write([]byte(`{
			"latlng":{"data":[[50.73,7.09],[50.74,7.10]]},
			"time":{"data":[0,30]},
			"altitude":{"data":[60.0,61.5]},
			"heartrate":{"data":[120,130]}
		}`))
	})

	c := newTestClient(t, mux)

	streams, err := c.GetStreams(context.Background(), 11)
	require.NoError(t, err)
	require.Len(t, streams.LatLng, 2)
	assert.Equal(t, 50.73, streams.LatLng[0][0])
	assert.Equal(t, []int64{0, 30}, streams.Time)
	assert.Equal(t, []int{120, 130}, streams.HeartRate)
}

func TestRateLimitRetry(t *testing.T) {
	var calls int
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"tok","expires_at":4102444800}`))
	})
	mux.HandleFunc("/api/v3/activities/5", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"id":5,"name":"Recovered","sport_type":"Run","start_date":"2024-05-01T12:00:00Z"}`))
	})

	c := newTestClient(t, mux)

	activity, err := c.GetActivity(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Recovered", activity.Name)
	assert.Equal(t, 2, calls)
}

func TestConfigured(t *testing.T) {
	c := strava.NewClient(&config.StravaConfig{}, zap.NewNop())
	assert.False(t, c.Configured())
}
