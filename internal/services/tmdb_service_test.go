package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"movie-roi-pipeline/internal/config"

	"github.com/stretchr/testify/require"
)

func TestTMDBNon200IsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_message":"Invalid API key"}`))
	}))
	t.Cleanup(srv.Close)

	svc := NewTMDBService(&config.TMDBConfig{
		APIKey:      "bad-key",
		BaseURL:     srv.URL,
		HTTPTimeout: 5 * time.Second,
	}, testLogger())

	_, err := svc.DiscoverTopRevenue(context.Background(), time.Now().AddDate(0, 0, -90), time.Now())
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 401")

	_, err = svc.GetMovieDetails(context.Background(), 42)
	require.Error(t, err)

	_, err = svc.GetMovieCredits(context.Background(), 42)
	require.Error(t, err)
}

func TestTMDBTransportErrorIsAnError(t *testing.T) {
	svc := NewTMDBService(&config.TMDBConfig{
		APIKey:      "key",
		BaseURL:     "http://127.0.0.1:1", // nothing listens here
		HTTPTimeout: time.Second,
	}, testLogger())

	_, err := svc.DiscoverTopRevenue(context.Background(), time.Now().AddDate(0, 0, -90), time.Now())
	require.Error(t, err)
}
