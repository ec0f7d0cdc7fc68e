package crawler

import (
	"regexp"
	"strings"
)

// Article URLs sit exactly three segments below the places-to-go root:
// .../hemispheres/places-to-go/<region>/<country>/<place>.html
var (
	articlePattern     = regexp.MustCompile(`/hemispheres/places-to-go/[^/]+/[^/]+/[^/]+\.html$`)
	regionIndexPattern = regexp.MustCompile(`/hemispheres/places-to-go/[^/]+/index\.html$`)
	indexPattern       = regexp.MustCompile(`/index\.html$`)
)

// DefaultBlockedSegments are path markers for content types that live
// under places-to-go but are not destination articles.
var DefaultBlockedSegments = []string{
	"/nyt/",
	"/things-to-do/",
	"/stays/",
	"/food/",
	"/culture/",
	"three-perfect-days",
}

// Classifier decides which discovered links are worth following.
// Both predicates are pure: no network, no state.
type Classifier struct {
	blocked []string
}

func NewClassifier(blockedSegments []string) *Classifier {
	if len(blockedSegments) == 0 {
		blockedSegments = DefaultBlockedSegments
	}
	return &Classifier{blocked: blockedSegments}
}

// IsArticleURL reports whether url is a scrapeable destination article.
// Blocklist checks run before the shape check, so a URL that matches
// both is rejected.
func (c *Classifier) IsArticleURL(url string) bool {
	for _, bad := range c.blocked {
		if strings.Contains(url, bad) {
			return false
		}
	}
	if indexPattern.MatchString(url) || strings.HasSuffix(url, "/places-to-go.html") {
		return false
	}
	return articlePattern.MatchString(url)
}

// IsRegionIndexURL reports whether href is a top-level region listing
// (one level below the places-to-go root). Country and place index
// pages nest deeper and do not match.
func (c *Classifier) IsRegionIndexURL(href string) bool {
	return regionIndexPattern.MatchString(href)
}
