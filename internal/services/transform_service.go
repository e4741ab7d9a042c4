package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"movie-roi-pipeline/internal/config"
	"movie-roi-pipeline/internal/models"

	"github.com/sirupsen/logrus"
)

// TransformService reads the staging JSON array, filters and flattens it into
// the fixed-column CSV artifact, and delivers it to the configured
// destination (local file or object-store key).
//
// A missing or unreadable staging artifact is a fatal error. An empty result
// set (empty staging array, or every row filtered out) ends the run early
// without producing or overwriting an artifact.
type TransformService struct {
	cfg    *config.Config
	minio  *MinIOService
	logger *logrus.Logger
}

// NewTransformService creates the transform stage. minio may be nil when the
// output destination is local.
func NewTransformService(cfg *config.Config, minio *MinIOService, logger *logrus.Logger) *TransformService {
	return &TransformService{
		cfg:    cfg,
		minio:  minio,
		logger: logger,
	}
}

// Run executes the transform stage and returns the number of rows written.
func (s *TransformService) Run(ctx context.Context) (int, error) {
	raw, err := s.loadStaging()
	if err != nil {
		return 0, err
	}

	filtered := filterAnalyzable(raw)
	if len(filtered) == 0 {
		s.logger.Warn("No movies left after filtering, skipping output write")
		return 0, nil
	}

	rows := make([]models.ProcessedMovie, 0, len(filtered))
	for _, movie := range filtered {
		rows = append(rows, s.processMovie(movie))
	}

	data, err := renderCSV(rows)
	if err != nil {
		return 0, err
	}

	if err := s.deliver(ctx, data); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *TransformService) loadStaging() ([]models.RawMovie, error) {
	data, err := os.ReadFile(s.cfg.Pipeline.StagingPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read staging artifact %s: %w", s.cfg.Pipeline.StagingPath, err)
	}

	var movies []models.RawMovie
	if err := json.Unmarshal(data, &movies); err != nil {
		return nil, fmt.Errorf("failed to parse staging artifact: %w", err)
	}
	return movies, nil
}

// filterAnalyzable keeps only movies with a usable ROI denominator. Movies
// with a zero budget or zero revenue cannot be analyzed.
func filterAnalyzable(movies []models.RawMovie) []models.RawMovie {
	filtered := make([]models.RawMovie, 0, len(movies))
	for _, m := range movies {
		if m.Budget > 0 && m.Revenue > 0 {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// processMovie derives ROI, the image URLs and the flattened genre and actor
// columns for one staged movie.
func (s *TransformService) processMovie(m models.RawMovie) models.ProcessedMovie {
	row := models.ProcessedMovie{
		ID:          m.ID,
		Title:       m.Title,
		Budget:      m.Budget,
		Revenue:     m.Revenue,
		ReleaseDate: m.ReleaseDate,
		VoteAverage: m.VoteAverage,
		Overview:    m.Overview,
		ROI:         float64(m.Revenue-m.Budget) / float64(m.Budget),
	}

	if m.PosterPath != "" {
		posterURL := s.cfg.TMDB.PosterBaseURL + m.PosterPath
		row.PosterURL = &posterURL
	}

	if len(m.Genres) > 0 {
		names := make([]string, 0, len(m.Genres))
		for _, g := range m.Genres {
			names = append(names, g.Name)
		}
		genres := strings.Join(names, ", ")
		row.Genres = &genres
	}

	names, images := s.topActors(m.Cast)
	row.Actor1Name, row.Actor2Name, row.Actor3Name = names[0], names[1], names[2]
	row.Actor1ImageURL, row.Actor2ImageURL, row.Actor3ImageURL = images[0], images[1], images[2]

	return row
}

// topActors picks the top three cast members by billing order. Entries
// without an order are excluded; the sort is stable so equal orders keep
// their source sequence. Positions beyond the available cast stay nil.
func (s *TransformService) topActors(cast []models.CastMember) (names, images [3]*string) {
	ranked := make([]models.CastMember, 0, len(cast))
	for _, c := range cast {
		if c.Order != nil {
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].Order < *ranked[j].Order
	})

	for i := 0; i < len(ranked) && i < 3; i++ {
		names[i] = ranked[i].Name
		if ranked[i].ProfilePath != nil && *ranked[i].ProfilePath != "" {
			imageURL := s.cfg.TMDB.ProfileBaseURL + *ranked[i].ProfilePath
			images[i] = &imageURL
		}
	}
	return names, images
}

func renderCSV(rows []models.ProcessedMovie) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(models.ProcessedCSVHeader()); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i := range rows {
		if err := w.Write(rows[i].CSVRecord()); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *TransformService) deliver(ctx context.Context, data []byte) error {
	if s.cfg.Output.Destination == config.DestinationMinIO {
		if s.minio == nil {
			return fmt.Errorf("minio destination configured but no minio service available")
		}
		if err := s.minio.Upload(ctx, s.cfg.Output.ObjectKey, data, "text/csv"); err != nil {
			return err
		}
		s.logger.WithFields(logrus.Fields{
			"key": s.cfg.Output.ObjectKey,
			"url": s.minio.ObjectURL(s.cfg.Output.ObjectKey),
		}).Info("Processed artifact uploaded")
		return nil
	}

	path := s.cfg.Pipeline.ProcessedPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output artifact: %w", err)
	}

	s.logger.WithField("path", path).Info("Processed artifact written")
	return nil
}
