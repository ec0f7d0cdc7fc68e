package crawler

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a queryable snapshot of a loaded page. The extractor is
// written against it, so the browser backend and the plain HTTP
// backend are interchangeable.
type Document struct {
	doc  *goquery.Document
	base *url.URL
}

// Fetcher loads a URL into a Document. waitFor names a CSS selector
// the backend should wait on before snapshotting; backends without a
// render step may ignore it.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL, waitFor string) (*Document, error)
}

// Expander is implemented by backends that can trigger "See more"
// style pagination before handing the document back.
type Expander interface {
	FetchExpanded(ctx context.Context, pageURL string, maxClicks int) (*Document, error)
}

// ParseDocument builds a Document from raw HTML. baseURL anchors
// relative link resolution.
func ParseDocument(rawHTML, baseURL string) (*Document, error) {
	node, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Document{doc: goquery.NewDocumentFromNode(node), base: base}, nil
}

// Text returns the trimmed text of the first node matching sel, or "".
func (d *Document) Text(sel string) string {
	return strings.TrimSpace(d.doc.Find(sel).First().Text())
}

// Attr returns the named attribute of the first node matching sel, or "".
func (d *Document) Attr(sel, name string) string {
	v, _ := d.doc.Find(sel).First().Attr(name)
	return strings.TrimSpace(v)
}

// Each visits every node matching sel in document order.
func (d *Document) Each(sel string, fn func(s *goquery.Selection)) {
	d.doc.Find(sel).Each(func(_ int, s *goquery.Selection) { fn(s) })
}

// Links returns every anchor href on the page, absolute-resolved, in
// document order.
func (d *Document) Links() []string {
	var links []string
	d.Each("a[href]", func(s *goquery.Selection) {
		href, _ := s.Attr("href")
		if abs := d.Resolve(href); abs != "" {
			links = append(links, abs)
		}
	})
	return links
}

// Resolve turns a possibly relative or protocol-relative reference
// into an absolute URL against the document base. Inline data URIs
// and unparseable references resolve to "".
func (d *Document) Resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return d.base.ResolveReference(u).String()
}
