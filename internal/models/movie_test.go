package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVRecordRoundTrip(t *testing.T) {
	poster := "https://image.tmdb.org/t/p/w342/abc.jpg"
	genres := "Action, Drama"
	actor := "Lead"

	movie := &ProcessedMovie{
		ID:          550,
		Title:       "Fight Club",
		Budget:      63000000,
		Revenue:     100853753,
		ReleaseDate: "1999-10-15",
		VoteAverage: 8.4,
		Overview:    "An insomniac office worker...",
		PosterURL:   &poster,
		Genres:      &genres,
		ROI:         0.6008532222222222,
		Actor1Name:  &actor,
	}

	record := movie.CSVRecord()
	require.Len(t, record, len(ProcessedCSVHeader()))

	parsed, err := ProcessedFromCSVRecord(record)
	require.NoError(t, err)
	require.Equal(t, movie, parsed)
}

func TestCSVRecordNullsAreEmptyCells(t *testing.T) {
	movie := &ProcessedMovie{ID: 1, Title: "Sparse", Budget: 100, Revenue: 200, ROI: 1}

	record := movie.CSVRecord()
	require.Equal(t, "", record[7])  // poster_url
	require.Equal(t, "", record[8])  // genres
	require.Equal(t, "", record[10]) // actor_1_name
	require.Equal(t, "", record[15]) // actor_3_image_url

	parsed, err := ProcessedFromCSVRecord(record)
	require.NoError(t, err)
	require.Nil(t, parsed.PosterURL)
	require.Nil(t, parsed.Genres)
	require.Nil(t, parsed.Actor1Name)
}

func TestProcessedFromCSVRecordRejectsBadInput(t *testing.T) {
	_, err := ProcessedFromCSVRecord([]string{"1", "too", "short"})
	require.Error(t, err)

	record := (&ProcessedMovie{ID: 1, Title: "X", Budget: 1, Revenue: 2, ROI: 1}).CSVRecord()
	record[2] = "not-a-number"
	_, err = ProcessedFromCSVRecord(record)
	require.Error(t, err)
}

func TestROIFormatting(t *testing.T) {
	movie := &ProcessedMovie{ID: 1, Title: "Hit", Budget: 1000, Revenue: 2500, ROI: 1.5}
	require.Equal(t, "1.5", movie.CSVRecord()[9])
}
