package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// StaticFetcher is the lightweight HTTP backend. The source site serves
// article markup without JavaScript, so for scraping individual
// articles a plain GET with browser-like headers is enough. It cannot
// expand "See more" listings, so discovery stays on the browser backend.
type StaticFetcher struct {
	client    *http.Client
	userAgent string
}

func NewStaticFetcher(userAgent string, timeout time.Duration) *StaticFetcher {
	return &StaticFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

func (f *StaticFetcher) Fetch(ctx context.Context, pageURL, waitFor string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNavigation, pageURL, err)
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNavigation, pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: status %d", ErrNavigation, pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNavigation, pageURL, err)
	}
	doc, err := ParseDocument(string(body), pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExtraction, pageURL, err)
	}
	return doc, nil
}

// setHeaders mimics a regular browser session; the bare default Go
// user agent gets blocked by the site's bot detection.
func (f *StaticFetcher) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Cache-Control", "max-age=0")
}
