package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"movie-roi-pipeline/internal/config"
	"movie-roi-pipeline/internal/models"

	"github.com/sirupsen/logrus"
)

// ExtractService fetches the top-revenue movies of the trailing discover
// window and writes them as a single JSON array to the staging path.
//
// Failure policy: a failed discover call degrades to an empty run, a failed
// per-movie fetch drops that movie, and neither is retried. The design is
// deliberately data-loss tolerant; the only returned errors are staging
// write failures.
type ExtractService struct {
	tmdb   *TMDBService
	cfg    *config.Config
	logger *logrus.Logger
}

func NewExtractService(tmdb *TMDBService, cfg *config.Config, logger *logrus.Logger) *ExtractService {
	return &ExtractService{
		tmdb:   tmdb,
		cfg:    cfg,
		logger: logger,
	}
}

// Run executes the extract stage and returns the number of movies staged.
func (s *ExtractService) Run(ctx context.Context) (int, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -s.cfg.TMDB.DiscoverWindowDays)

	s.logger.WithFields(logrus.Fields{
		"from": from.Format("2006-01-02"),
		"to":   to.Format("2006-01-02"),
	}).Info("Fetching top-revenue movie list")

	movieIDs, err := s.tmdb.DiscoverTopRevenue(ctx, from, to)
	if err != nil {
		// Non-fatal: the run degrades to an empty result set.
		s.logger.WithError(err).Error("Failed to fetch movie list from TMDB")
		movieIDs = nil
	}

	movies := make([]models.RawMovie, 0, len(movieIDs))
	for _, movieID := range movieIDs {
		movie, err := s.fetchMovie(ctx, movieID)
		if err != nil {
			s.logger.WithError(err).WithField("movie_id", movieID).Warn("Skipping movie")
		} else {
			movies = append(movies, *movie)
		}
		// Fixed pause between per-movie fetch cycles to respect TMDB rate limits.
		time.Sleep(s.cfg.TMDB.RateLimitDelay)
	}

	if len(movies) == 0 {
		s.logger.Warn("No detailed movie data was fetched, skipping staging write")
		return 0, nil
	}

	if err := s.writeStaging(movies); err != nil {
		return 0, err
	}

	s.logger.WithFields(logrus.Fields{
		"count": len(movies),
		"path":  s.cfg.Pipeline.StagingPath,
	}).Info("Staging artifact written")

	return len(movies), nil
}

// fetchMovie issues the two dependent requests for one movie and merges the
// credits cast into the details record.
func (s *ExtractService) fetchMovie(ctx context.Context, movieID int) (*models.RawMovie, error) {
	details, err := s.tmdb.GetMovieDetails(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("details: %w", err)
	}

	credits, err := s.tmdb.GetMovieCredits(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("credits: %w", err)
	}

	cast := credits.Cast
	if cast == nil {
		cast = []models.CastMember{}
	}

	return &models.RawMovie{
		ID:          details.ID,
		Title:       details.Title,
		Budget:      details.Budget,
		Revenue:     details.Revenue,
		ReleaseDate: details.ReleaseDate,
		VoteAverage: details.VoteAverage,
		Overview:    details.Overview,
		PosterPath:  details.PosterPath,
		Genres:      details.Genres,
		Cast:        cast,
	}, nil
}

func (s *ExtractService) writeStaging(movies []models.RawMovie) error {
	path := s.cfg.Pipeline.StagingPath

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}

	data, err := json.MarshalIndent(movies, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal staging data: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write staging artifact: %w", err)
	}
	return nil
}
