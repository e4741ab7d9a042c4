package handlers_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"movie-roi-pipeline/internal/config"
	"movie-roi-pipeline/internal/handlers"
	"movie-roi-pipeline/internal/routes"
	"movie-roi-pipeline/internal/services"
	"movie-roi-pipeline/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testApp(t *testing.T, csvContent string) *fiber.App {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	dir := t.TempDir()
	cfg := &config.Config{
		Pipeline: config.PipelineConfig{
			ProcessedPath: filepath.Join(dir, "processed_movies.csv"),
		},
		Output: config.OutputConfig{Destination: config.DestinationLocal},
	}
	if csvContent != "" {
		require.NoError(t, os.WriteFile(cfg.Pipeline.ProcessedPath, []byte(csvContent), 0o644))
	}

	service := services.NewDashboardService(cfg, nil, log)
	handler := handlers.NewDashboardHandler(service, nil, log)

	app := fiber.New()
	routes.Setup(app, handler)
	return app
}

const sampleCSV = `id,title,budget,revenue,release_date,vote_average,overview,poster_url,genres,ROI,actor_1_name,actor_1_image_url,actor_2_name,actor_2_image_url,actor_3_name,actor_3_image_url
1,Steady,1000,2000,2025-06-01,7,fine,,,1,,,,,,
2,Breakout,100,1000,2025-07-01,8,great,,,9,,,,,,
`

func TestGetStats(t *testing.T) {
	app := testApp(t, sampleCSV)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/dashboard/stats", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body utils.StandardResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "success", body.Status)

	stats, ok := body.Data.(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(2), stats["movie_count"])
	require.Equal(t, "Breakout", stats["best_roi"].(map[string]any)["title"])
}

func TestGetMoviesSorted(t *testing.T) {
	app := testApp(t, sampleCSV)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/movies?sort=roi", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body utils.StandardResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	movies, ok := body.Data.([]any)
	require.True(t, ok)
	require.Len(t, movies, 2)
	require.Equal(t, "Breakout", movies[0].(map[string]any)["title"])
}

func TestNoDataStateIsNotAnError(t *testing.T) {
	app := testApp(t, "")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/dashboard/stats", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body utils.StandardResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "success", body.Status)
	require.Nil(t, body.Data)
}

func TestRunsRouteOnlyWithStore(t *testing.T) {
	app := testApp(t, sampleCSV)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/runs", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
