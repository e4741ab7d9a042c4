package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"movie-roi-pipeline/internal/config"
	"movie-roi-pipeline/internal/models"

	"github.com/stretchr/testify/require"
)

// fakeTMDB serves the three endpoints the extractor hits. failDetails lists
// movie ids whose details request returns a server error.
type fakeTMDB struct {
	discoverStatus int
	movieIDs       []int
	failDetails    map[int]bool
	discoverQuery  map[string]string
}

func (f *fakeTMDB) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/discover/movie", func(w http.ResponseWriter, r *http.Request) {
		f.discoverQuery = map[string]string{}
		for key, values := range r.URL.Query() {
			f.discoverQuery[key] = values[0]
		}

		if f.discoverStatus != 0 {
			w.WriteHeader(f.discoverStatus)
			return
		}

		results := make([]models.TMDBDiscoverResult, 0, len(f.movieIDs))
		for _, id := range f.movieIDs {
			results = append(results, models.TMDBDiscoverResult{ID: id})
		}
		_ = json.NewEncoder(w).Encode(models.TMDBDiscoverResponse{Page: 1, Results: results})
	})

	mux.HandleFunc("/movie/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.PathValue("id"))
		require.NoError(t, err)

		if f.failDetails[id] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(models.TMDBMovieDetails{
			ID:          int64(id),
			Title:       "Movie",
			Budget:      1000,
			Revenue:     2500,
			ReleaseDate: "2025-06-01",
			Genres:      []models.Genre{{Name: "Action"}},
		})
	})

	mux.HandleFunc("/movie/{id}/credits", func(w http.ResponseWriter, r *http.Request) {
		name := "Lead"
		order := 0
		_ = json.NewEncoder(w).Encode(models.TMDBCredits{
			Cast: []models.CastMember{{Name: &name, Order: &order}},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func extractTestConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	cfg := testConfig(t)
	cfg.TMDB.APIKey = "test-key"
	cfg.TMDB.BaseURL = baseURL
	cfg.TMDB.Region = "US"
	cfg.TMDB.OriginalLanguage = "en"
	cfg.TMDB.DiscoverWindowDays = 90
	cfg.TMDB.RateLimitDelay = 0
	return cfg
}

func runExtract(t *testing.T, cfg *config.Config) (int, error) {
	t.Helper()
	log := testLogger()
	tmdb := NewTMDBService(&cfg.TMDB, log)
	return NewExtractService(tmdb, cfg, log).Run(context.Background())
}

func TestExtractMergesDetailsAndCredits(t *testing.T) {
	fake := &fakeTMDB{movieIDs: []int{10, 20}}
	srv := fake.server(t)
	cfg := extractTestConfig(t, srv.URL)

	count, err := runExtract(t, cfg)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	data, err := os.ReadFile(cfg.Pipeline.StagingPath)
	require.NoError(t, err)

	var staged []models.RawMovie
	require.NoError(t, json.Unmarshal(data, &staged))
	require.Len(t, staged, 2)
	require.Equal(t, int64(10), staged[0].ID)
	require.Equal(t, int64(20), staged[1].ID)
	require.Len(t, staged[0].Cast, 1)
	require.Equal(t, "Lead", *staged[0].Cast[0].Name)
}

func TestExtractDiscoverQuery(t *testing.T) {
	fake := &fakeTMDB{movieIDs: []int{10}}
	srv := fake.server(t)
	cfg := extractTestConfig(t, srv.URL)

	_, err := runExtract(t, cfg)
	require.NoError(t, err)

	require.Equal(t, "revenue.desc", fake.discoverQuery["sort_by"])
	require.Equal(t, "US", fake.discoverQuery["region"])
	require.Equal(t, "en", fake.discoverQuery["with_original_language"])
	require.Equal(t, "1", fake.discoverQuery["page"])
	require.Equal(t, "false", fake.discoverQuery["include_adult"])
	require.Equal(t, "test-key", fake.discoverQuery["api_key"])
	require.NotEmpty(t, fake.discoverQuery["primary_release_date.gte"])
	require.NotEmpty(t, fake.discoverQuery["primary_release_date.lte"])
}

func TestExtractSkipsFailedMovie(t *testing.T) {
	fake := &fakeTMDB{movieIDs: []int{10, 20}, failDetails: map[int]bool{10: true}}
	srv := fake.server(t)
	cfg := extractTestConfig(t, srv.URL)

	count, err := runExtract(t, cfg)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	data, err := os.ReadFile(cfg.Pipeline.StagingPath)
	require.NoError(t, err)

	var staged []models.RawMovie
	require.NoError(t, json.Unmarshal(data, &staged))
	require.Len(t, staged, 1)
	require.Equal(t, int64(20), staged[0].ID)
}

func TestExtractDiscoverFailureDegradesToEmptyRun(t *testing.T) {
	fake := &fakeTMDB{discoverStatus: http.StatusInternalServerError}
	srv := fake.server(t)
	cfg := extractTestConfig(t, srv.URL)

	count, err := runExtract(t, cfg)
	require.NoError(t, err)
	require.Equal(t, 0, count)

	_, err = os.Stat(cfg.Pipeline.StagingPath)
	require.True(t, os.IsNotExist(err))
}

func TestExtractEmptyDiscoverWritesNothing(t *testing.T) {
	fake := &fakeTMDB{movieIDs: nil}
	srv := fake.server(t)
	cfg := extractTestConfig(t, srv.URL)

	count, err := runExtract(t, cfg)
	require.NoError(t, err)
	require.Equal(t, 0, count)

	_, err = os.Stat(cfg.Pipeline.StagingPath)
	require.True(t, os.IsNotExist(err))
}
