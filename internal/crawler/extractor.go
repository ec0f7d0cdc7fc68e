package crawler

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"places-crawler/pkg/models"
)

// Per-field fallback chains, tried in order, first match wins. The site
// has been through several redesigns and different article templates
// still coexist, hence the breadth.
var (
	heroSelectors = []string{
		`img[fetchpriority="high"]`,
		"article img",
		".hero-image img",
		".featured-image img",
	}
	descriptionSelectors = []string{
		"p.intro",
		".deck",
		".article-intro p",
		"article p",
		"main p",
	}
)

// Extractor turns a loaded article Document into an ArticleRecord.
type Extractor struct {
	maxDescription int
	minDescription int
	minParagraph   int
	maxImages      int
}

func NewExtractor() *Extractor {
	return &Extractor{
		maxDescription: 500,
		minDescription: 50,
		minParagraph:   20,
		maxImages:      10,
	}
}

// ldMetadata is what we pull out of an embedded JSON-LD block.
type ldMetadata struct {
	Headline    string
	Description string
	Image       string
	Author      string
}

// Extract builds the article record. A missing title or image degrades
// the record, it never drops it; only a URL that fails location parsing
// or a panic inside a selector chain yields an error.
func (e *Extractor) Extract(doc *Document, pageURL string) (rec *models.ArticleRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, err = nil, fmt.Errorf("%w: %s: %v", ErrExtraction, pageURL, r)
		}
	}()

	loc, err := ParseLocation(pageURL)
	if err != nil {
		return nil, err
	}

	meta := e.structuredMetadata(doc)

	title := meta.Headline
	if title == "" {
		title = doc.Text("h1")
	}

	return &models.ArticleRecord{
		PlaceName:    loc.Place,
		ArticleTitle: title,
		ArticleURL:   pageURL,
		HeroImage:    e.heroImage(doc, meta),
		Description:  e.description(doc, meta),
		Author:       meta.Author,
		FullText:     e.fullText(doc),
		Headlines:    e.headlines(doc),
		Images:       e.images(doc),
	}, nil
}

// structuredMetadata scans the page's JSON-LD blocks for the first one
// describing an article.
func (e *Extractor) structuredMetadata(doc *Document) ldMetadata {
	var meta ldMetadata
	found := false
	doc.Each(`script[type="application/ld+json"]`, func(s *goquery.Selection) {
		if found {
			return
		}
		var block struct {
			Type        string          `json:"@type"`
			Headline    string          `json:"headline"`
			Description string          `json:"description"`
			Image       json.RawMessage `json:"image"`
			Author      json.RawMessage `json:"author"`
		}
		if err := json.Unmarshal([]byte(s.Text()), &block); err != nil {
			return
		}
		switch block.Type {
		case "Article", "NewsArticle", "TravelAction":
		default:
			return
		}
		meta = ldMetadata{
			Headline:    strings.TrimSpace(block.Headline),
			Description: strings.TrimSpace(block.Description),
			Image:       decodeStringOrURL(block.Image),
			Author:      decodeStringOrName(block.Author),
		}
		found = true
	})
	return meta
}

// heroImage tries the selector chain first, then the JSON-LD image.
// nil means no hero was found, which serializes as JSON null.
func (e *Extractor) heroImage(doc *Document, meta ldMetadata) *string {
	for _, sel := range heroSelectors {
		if src := doc.Attr(sel, "src"); src != "" {
			if abs := doc.Resolve(src); abs != "" {
				return &abs
			}
		}
	}
	if meta.Image != "" {
		if abs := doc.Resolve(meta.Image); abs != "" {
			return &abs
		}
	}
	return nil
}

func (e *Extractor) description(doc *Document, meta ldMetadata) string {
	desc := meta.Description
	if desc == "" {
		for _, sel := range descriptionSelectors {
			doc.Each(sel, func(s *goquery.Selection) {
				if desc != "" {
					return
				}
				if text := strings.TrimSpace(s.Text()); len(text) >= e.minDescription {
					desc = text
				}
			})
			if desc != "" {
				break
			}
		}
	}
	// The limit is characters, not bytes: slicing bytes could split a
	// multi-byte rune and leave invalid UTF-8 in the checkpoint.
	if utf8.RuneCountInString(desc) > e.maxDescription {
		desc = string([]rune(desc)[:e.maxDescription])
	}
	return desc
}

// fullText joins every paragraph long enough to be prose, filtering
// out captions and UI strings.
func (e *Extractor) fullText(doc *Document) string {
	var parts []string
	doc.Each("p", func(s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); len(text) > e.minParagraph {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

func (e *Extractor) headlines(doc *Document) []string {
	var heads []string
	doc.Each("h2, h3, h4", func(s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			heads = append(heads, text)
		}
	})
	return heads
}

// images collects img src/data-src plus the first srcset variant of
// each picture source, absolute-resolved and deduped in first-seen
// order, capped at maxImages.
func (e *Extractor) images(doc *Document) []string {
	seen := make(map[string]bool)
	var images []string
	add := func(ref string) {
		abs := doc.Resolve(ref)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		images = append(images, abs)
	}

	doc.Each("img", func(s *goquery.Selection) {
		src, _ := s.Attr("src")
		if src == "" {
			src, _ = s.Attr("data-src")
		}
		add(src)
	})
	doc.Each("picture source", func(s *goquery.Selection) {
		srcset, _ := s.Attr("srcset")
		if srcset == "" {
			return
		}
		first := strings.Fields(strings.SplitN(srcset, ",", 2)[0])
		if len(first) > 0 {
			add(first[0])
		}
	})

	if len(images) > e.maxImages {
		images = images[:e.maxImages]
	}
	return images
}

// decodeStringOrURL handles JSON-LD image values that are either a
// bare string or an ImageObject with a url field.
func decodeStringOrURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.URL
	}
	return ""
}

func decodeStringOrName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Name
	}
	return ""
}
