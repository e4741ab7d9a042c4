package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// seedProcessed runs the transformer over a small staging set so the
// dashboard reads a real artifact.
func seedProcessed(t *testing.T) *DashboardService {
	t.Helper()
	cfg := testConfig(t)
	writeStaging(t, cfg, `[
		{"id": 1, "title": "Steady", "budget": 1000, "revenue": 2000},
		{"id": 2, "title": "Breakout", "budget": 100, "revenue": 1000},
		{"id": 3, "title": "Blockbuster", "budget": 100000, "revenue": 300000}
	]`)

	svc := NewTransformService(cfg, nil, testLogger())
	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	return NewDashboardService(cfg, nil, testLogger())
}

func TestDashboardStats(t *testing.T) {
	dashboard := seedProcessed(t)

	stats, err := dashboard.Stats(context.Background())
	require.NoError(t, err)

	require.Equal(t, 3, stats.MovieCount)
	require.Equal(t, "Breakout", stats.BestROI.Title)         // ROI 9
	require.Equal(t, "Blockbuster", stats.HighestGross.Title) // revenue 300000
	require.InDelta(t, (1.0+9.0+2.0)/3.0, stats.AverageROI, 1e-9)
}

func TestDashboardMoviesSorted(t *testing.T) {
	dashboard := seedProcessed(t)

	byROI, err := dashboard.Movies(context.Background(), "roi")
	require.NoError(t, err)
	require.Equal(t, "Breakout", byROI[0].Title)

	byRevenue, err := dashboard.Movies(context.Background(), "revenue")
	require.NoError(t, err)
	require.Equal(t, "Blockbuster", byRevenue[0].Title)

	unsorted, err := dashboard.Movies(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "Steady", unsorted[0].Title)
}

func TestDashboardNoDataState(t *testing.T) {
	cfg := testConfig(t)
	dashboard := NewDashboardService(cfg, nil, testLogger())

	_, err := dashboard.Stats(context.Background())
	require.ErrorIs(t, err, ErrNoData)

	_, err = dashboard.Movies(context.Background(), "roi")
	require.ErrorIs(t, err, ErrNoData)
}

func TestParseProcessedCSVRejectsWrongHeader(t *testing.T) {
	_, err := parseProcessedCSV([]byte("id,title\n1,Hit\n"))
	require.Error(t, err)
}
