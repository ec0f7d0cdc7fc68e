package crawler

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"places-crawler/pkg/models"
)

var locationPattern = regexp.MustCompile(`/places-to-go/([^/]+)/([^/]+)/([^/]+?)(?:\.html)?/?$`)

// ParseLocation derives the region/country/place triple from an
// article URL. It is a pure function of the URL; callers treat a
// failure as skip-and-log, never fatal.
func ParseLocation(url string) (models.Location, error) {
	m := locationPattern.FindStringSubmatch(url)
	if m == nil {
		return models.Location{}, fmt.Errorf("%w: %s", ErrMalformedURL, url)
	}
	return models.Location{
		Region:  segmentTitle(m[1]),
		Country: segmentTitle(m[2]),
		Place:   segmentTitle(m[3]),
	}, nil
}

// segmentTitle turns a URL path segment into a display name:
// "south-africa" -> "South Africa".
func segmentTitle(segment string) string {
	// Casers are stateful, so build one per call.
	return cases.Title(language.English).String(strings.ReplaceAll(segment, "-", " "))
}
