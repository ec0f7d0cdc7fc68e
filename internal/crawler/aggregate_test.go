package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"places-crawler/pkg/models"
)

func record(url, place string) models.ArticleRecord {
	return models.ArticleRecord{PlaceName: place, ArticleURL: url}
}

func TestAddArticleMergesByCountry(t *testing.T) {
	entries := []models.CountryEntry{}

	entries, err := AddArticle(record(
		"https://www.united.com/en/us/hemispheres/places-to-go/africa/morocco/marrakesh.html", "Marrakesh"), entries)
	require.NoError(t, err)
	entries, err = AddArticle(record(
		"https://www.united.com/en/us/hemispheres/places-to-go/africa/morocco/fes.html", "Fes"), entries)
	require.NoError(t, err)

	require.Len(t, entries, 1, "same (region, country) merges into one entry")
	assert.Equal(t, "Africa", entries[0].Region)
	assert.Equal(t, "Morocco", entries[0].Country)
	require.Len(t, entries[0].Destinations, 2)
	assert.Equal(t, "Marrakesh", entries[0].Destinations[0].PlaceName, "insertion order preserved")
	assert.Equal(t, "Fes", entries[0].Destinations[1].PlaceName)
}

func TestAddArticleNewCountry(t *testing.T) {
	entries, err := AddArticle(record(
		"https://www.united.com/en/us/hemispheres/places-to-go/africa/morocco/fes.html", "Fes"), nil)
	require.NoError(t, err)
	entries, err = AddArticle(record(
		"https://www.united.com/en/us/hemispheres/places-to-go/europe/france/paris.html", "Paris"), entries)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "Morocco", entries[0].Country)
	assert.Equal(t, "France", entries[1].Country)
}

func TestAddArticleDuplicatePlaceKept(t *testing.T) {
	// De-duplication is the orchestrator's job via the processed set;
	// the aggregator itself appends unconditionally.
	url := "https://www.united.com/en/us/hemispheres/places-to-go/africa/morocco/fes.html"
	entries, err := AddArticle(record(url, "Fes"), nil)
	require.NoError(t, err)
	entries, err = AddArticle(record(url, "Fes"), entries)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Len(t, entries[0].Destinations, 2)
}

func TestAddArticleMalformedURL(t *testing.T) {
	before := []models.CountryEntry{{Region: "Africa", Country: "Morocco"}}
	after, err := AddArticle(record("https://example.com/nope.html", "Nope"), before)
	require.Error(t, err)
	assert.Equal(t, before, after, "entries untouched on error")
}
