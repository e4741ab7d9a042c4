package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"movie-roi-pipeline/internal/config"
	"movie-roi-pipeline/internal/models"

	"github.com/sirupsen/logrus"
)

// TMDBService is the HTTP client for the TMDB v3 API. It performs no retries;
// a failed request is surfaced to the caller and the caller decides whether
// the batch continues.
type TMDBService struct {
	cfg        *config.TMDBConfig
	logger     *logrus.Logger
	httpClient *http.Client
}

func NewTMDBService(cfg *config.TMDBConfig, logger *logrus.Logger) *TMDBService {
	return &TMDBService{
		cfg:    cfg,
		logger: logger,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
	}
}

// DiscoverTopRevenue returns the ordered movie IDs of the first discover page,
// sorted by descending revenue, restricted to the configured region and
// original language, released within [from, to].
func (s *TMDBService) DiscoverTopRevenue(ctx context.Context, from, to time.Time) ([]int, error) {
	params := url.Values{}
	params.Set("sort_by", "revenue.desc")
	params.Set("primary_release_date.gte", from.Format("2006-01-02"))
	params.Set("primary_release_date.lte", to.Format("2006-01-02"))
	params.Set("region", s.cfg.Region)
	params.Set("with_original_language", s.cfg.OriginalLanguage)
	params.Set("page", "1")
	params.Set("include_adult", "false")

	var response models.TMDBDiscoverResponse
	if err := s.getJSON(ctx, "/discover/movie", params, &response); err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(response.Results))
	for _, result := range response.Results {
		ids = append(ids, result.ID)
	}
	return ids, nil
}

// GetMovieDetails fetches budget, revenue and the other detail fields for one movie.
func (s *TMDBService) GetMovieDetails(ctx context.Context, movieID int) (*models.TMDBMovieDetails, error) {
	params := url.Values{}
	params.Set("language", "en-US")

	var details models.TMDBMovieDetails
	if err := s.getJSON(ctx, "/movie/"+strconv.Itoa(movieID), params, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// GetMovieCredits fetches the cast list for one movie.
func (s *TMDBService) GetMovieCredits(ctx context.Context, movieID int) (*models.TMDBCredits, error) {
	var credits models.TMDBCredits
	if err := s.getJSON(ctx, "/movie/"+strconv.Itoa(movieID)+"/credits", nil, &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}

func (s *TMDBService) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", s.cfg.APIKey)

	requestURL := s.cfg.BaseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch from TMDB: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("TMDB API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode TMDB response: %w", err)
	}
	return nil
}
