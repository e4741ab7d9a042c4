package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sort"

	"movie-roi-pipeline/internal/config"
	"movie-roi-pipeline/internal/models"

	"github.com/sirupsen/logrus"
)

// ErrNoData means the processed artifact has not been produced yet. The API
// reports it as an empty "no data yet" state rather than an error.
var ErrNoData = errors.New("no processed data available")

// DashboardService reads the processed CSV artifact from the configured
// destination and serves rows and KPI stats to the dashboard API. It works on
// whatever the pipeline last published; it never triggers a pipeline run.
type DashboardService struct {
	cfg    *config.Config
	minio  *MinIOService
	logger *logrus.Logger
}

// NewDashboardService creates the dashboard read layer. minio may be nil when
// the output destination is local.
func NewDashboardService(cfg *config.Config, minio *MinIOService, logger *logrus.Logger) *DashboardService {
	return &DashboardService{
		cfg:    cfg,
		minio:  minio,
		logger: logger,
	}
}

// Movies returns all processed rows. sortBy may be "roi" or "revenue" for a
// descending sort; anything else keeps the artifact order.
func (s *DashboardService) Movies(ctx context.Context, sortBy string) ([]models.ProcessedMovie, error) {
	movies, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	switch sortBy {
	case "roi":
		sort.SliceStable(movies, func(i, j int) bool { return movies[i].ROI > movies[j].ROI })
	case "revenue":
		sort.SliceStable(movies, func(i, j int) bool { return movies[i].Revenue > movies[j].Revenue })
	}
	return movies, nil
}

// Stats computes the dashboard KPIs: best-ROI movie, highest-gross movie and
// average ROI across all processed rows.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	movies, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, ErrNoData
	}

	stats := &models.DashboardStats{MovieCount: len(movies)}

	var roiSum float64
	bestROI, highestGross := 0, 0
	for i := range movies {
		roiSum += movies[i].ROI
		if movies[i].ROI > movies[bestROI].ROI {
			bestROI = i
		}
		if movies[i].Revenue > movies[highestGross].Revenue {
			highestGross = i
		}
	}

	stats.AverageROI = roiSum / float64(len(movies))
	stats.BestROI = &movies[bestROI]
	stats.HighestGross = &movies[highestGross]
	return stats, nil
}

func (s *DashboardService) load(ctx context.Context) ([]models.ProcessedMovie, error) {
	data, err := s.readArtifact(ctx)
	if err != nil {
		return nil, err
	}
	return parseProcessedCSV(data)
}

func (s *DashboardService) readArtifact(ctx context.Context) ([]byte, error) {
	if s.cfg.Output.Destination == config.DestinationMinIO {
		if s.minio == nil {
			return nil, fmt.Errorf("minio destination configured but no minio service available")
		}
		data, err := s.minio.Download(ctx, s.cfg.Output.ObjectKey)
		if errors.Is(err, ErrObjectNotFound) {
			return nil, ErrNoData
		}
		return data, err
	}

	data, err := os.ReadFile(s.cfg.Pipeline.ProcessedPath)
	if os.IsNotExist(err) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read processed artifact: %w", err)
	}
	return data, nil
}

func parseProcessedCSV(data []byte) ([]models.ProcessedMovie, error) {
	reader := csv.NewReader(bytes.NewReader(data))

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	expected := models.ProcessedCSVHeader()
	if len(header) != len(expected) {
		return nil, fmt.Errorf("unexpected CSV header: %v", header)
	}
	for i := range expected {
		if header[i] != expected[i] {
			return nil, fmt.Errorf("unexpected CSV column %d: got %q, want %q", i, header[i], expected[i])
		}
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV rows: %w", err)
	}

	movies := make([]models.ProcessedMovie, 0, len(records))
	for _, record := range records {
		movie, err := models.ProcessedFromCSVRecord(record)
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV row: %w", err)
		}
		movies = append(movies, *movie)
	}
	return movies, nil
}
