package crawler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"places-crawler/pkg/models"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want models.Location
	}{
		{
			name: "single word segments",
			url:  "https://www.united.com/en/us/hemispheres/places-to-go/europe/france/paris.html",
			want: models.Location{Region: "Europe", Country: "France", Place: "Paris"},
		},
		{
			name: "hyphenated segments title-case each word",
			url:  "https://www.united.com/en/us/hemispheres/places-to-go/africa/south-africa/cape-town.html",
			want: models.Location{Region: "Africa", Country: "South Africa", Place: "Cape Town"},
		},
		{
			name: "multi word place",
			url:  "https://www.united.com/en/us/hemispheres/places-to-go/africa/morocco/marrakesh-solo-travel.html",
			want: models.Location{Region: "Africa", Country: "Morocco", Place: "Marrakesh Solo Travel"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocation(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// Pure function: a second call yields the same result.
			again, err := ParseLocation(tt.url)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestParseLocationMalformed(t *testing.T) {
	urls := []string{
		"https://www.united.com/en/us/hemispheres/index.html",
		"https://www.united.com/en/us/hemispheres/places-to-go/africa.html",
		"not a url at all",
	}
	for _, u := range urls {
		_, err := ParseLocation(u)
		require.Error(t, err, u)
		assert.True(t, errors.Is(err, ErrMalformedURL), "expected ErrMalformedURL for %q, got %v", u, err)
	}
}
