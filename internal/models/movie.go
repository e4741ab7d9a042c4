package models

import (
	"fmt"
	"strconv"
)

// Genre is the nested genre object as TMDB returns it on the details
// endpoint. Only the name survives into the processed artifact.
type Genre struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

// CastMember is one entry of the credits cast list. Order is the billing
// rank; it is a pointer because TMDB does not guarantee the field and
// entries without it are excluded from actor extraction.
type CastMember struct {
	Name        *string `json:"name"`
	Order       *int    `json:"order,omitempty"`
	ProfilePath *string `json:"profile_path,omitempty"`
}

type TMDBDiscoverResult struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type TMDBDiscoverResponse struct {
	Page         int                  `json:"page"`
	Results      []TMDBDiscoverResult `json:"results"`
	TotalPages   int                  `json:"total_pages"`
	TotalResults int                  `json:"total_results"`
}

// TMDBMovieDetails is the subset of the details endpoint the pipeline keeps.
type TMDBMovieDetails struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Budget      int64   `json:"budget"`
	Revenue     int64   `json:"revenue"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	Genres      []Genre `json:"genres"`
}

type TMDBCredits struct {
	ID   int          `json:"id"`
	Cast []CastMember `json:"cast"`
}

// RawMovie is the staging schema: one movie-details response merged with its
// credits cast list. It is the exact shape written to and read back from the
// staging JSON array. Keys absent in the upstream response decode to their
// zero value, which is the backfill step of the transform pipeline.
type RawMovie struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Budget      int64        `json:"budget"`
	Revenue     int64        `json:"revenue"`
	ReleaseDate string       `json:"release_date"`
	VoteAverage float64      `json:"vote_average"`
	Overview    string       `json:"overview"`
	PosterPath  string       `json:"poster_path"`
	Genres      []Genre      `json:"genres"`
	Cast        []CastMember `json:"cast"`
}

// ProcessedMovie is one row of the output CSV artifact. Nullable columns are
// pointers; nil serializes as an empty CSV cell and a JSON null.
type ProcessedMovie struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	Budget         int64   `json:"budget"`
	Revenue        int64   `json:"revenue"`
	ReleaseDate    string  `json:"release_date"`
	VoteAverage    float64 `json:"vote_average"`
	Overview       string  `json:"overview"`
	PosterURL      *string `json:"poster_url"`
	Genres         *string `json:"genres"`
	ROI            float64 `json:"roi"`
	Actor1Name     *string `json:"actor_1_name"`
	Actor1ImageURL *string `json:"actor_1_image_url"`
	Actor2Name     *string `json:"actor_2_name"`
	Actor2ImageURL *string `json:"actor_2_image_url"`
	Actor3Name     *string `json:"actor_3_name"`
	Actor3ImageURL *string `json:"actor_3_image_url"`
}

// ProcessedCSVHeader is the fixed column order of the output artifact. The
// dashboard consumes the CSV by this contract; never reorder it.
func ProcessedCSVHeader() []string {
	return []string{
		"id", "title", "budget", "revenue", "release_date", "vote_average", "overview",
		"poster_url", "genres", "ROI",
		"actor_1_name", "actor_1_image_url",
		"actor_2_name", "actor_2_image_url",
		"actor_3_name", "actor_3_image_url",
	}
}

// CSVRecord renders the row in the fixed column order.
func (m *ProcessedMovie) CSVRecord() []string {
	return []string{
		strconv.FormatInt(m.ID, 10),
		m.Title,
		strconv.FormatInt(m.Budget, 10),
		strconv.FormatInt(m.Revenue, 10),
		m.ReleaseDate,
		formatFloat(m.VoteAverage),
		m.Overview,
		derefOrEmpty(m.PosterURL),
		derefOrEmpty(m.Genres),
		formatFloat(m.ROI),
		derefOrEmpty(m.Actor1Name),
		derefOrEmpty(m.Actor1ImageURL),
		derefOrEmpty(m.Actor2Name),
		derefOrEmpty(m.Actor2ImageURL),
		derefOrEmpty(m.Actor3Name),
		derefOrEmpty(m.Actor3ImageURL),
	}
}

// ProcessedFromCSVRecord parses one CSV record back into a row. The record
// must follow the ProcessedCSVHeader column order.
func ProcessedFromCSVRecord(record []string) (*ProcessedMovie, error) {
	if len(record) != len(ProcessedCSVHeader()) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(ProcessedCSVHeader()), len(record))
	}

	id, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q: %w", record[0], err)
	}
	budget, err := strconv.ParseInt(record[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid budget %q: %w", record[2], err)
	}
	revenue, err := strconv.ParseInt(record[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid revenue %q: %w", record[3], err)
	}
	voteAverage, err := strconv.ParseFloat(record[5], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid vote_average %q: %w", record[5], err)
	}
	roi, err := strconv.ParseFloat(record[9], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ROI %q: %w", record[9], err)
	}

	return &ProcessedMovie{
		ID:             id,
		Title:          record[1],
		Budget:         budget,
		Revenue:        revenue,
		ReleaseDate:    record[4],
		VoteAverage:    voteAverage,
		Overview:       record[6],
		PosterURL:      emptyToNil(record[7]),
		Genres:         emptyToNil(record[8]),
		ROI:            roi,
		Actor1Name:     emptyToNil(record[10]),
		Actor1ImageURL: emptyToNil(record[11]),
		Actor2Name:     emptyToNil(record[12]),
		Actor2ImageURL: emptyToNil(record[13]),
		Actor3Name:     emptyToNil(record[14]),
		Actor3ImageURL: emptyToNil(record[15]),
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
