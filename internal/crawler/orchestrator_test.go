package crawler

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"places-crawler/internal/storage"
	"places-crawler/pkg/models"
)

const (
	rootURL      = "https://www.united.com/en/us/hemispheres/places-to-go/index.html"
	africaURL    = "https://www.united.com/en/us/hemispheres/places-to-go/africa/index.html"
	europeURL    = "https://www.united.com/en/us/hemispheres/places-to-go/europe/index.html"
	fesURL       = "https://www.united.com/en/us/hemispheres/places-to-go/africa/morocco/fes.html"
	marrakeshURL = "https://www.united.com/en/us/hemispheres/places-to-go/africa/morocco/marrakesh.html"
	parisURL     = "https://www.united.com/en/us/hemispheres/places-to-go/europe/france/paris.html"
)

func articleHTML(title string) string {
	return fmt.Sprintf(`<html><body><h1>%s</h1>
		<article><p>A paragraph comfortably past the fifty character description minimum for %s.</p></article>
		</body></html>`, title, title)
}

func sitePages() map[string]string {
	return map[string]string{
		rootURL: `<html><body>
			<a href="/en/us/hemispheres/places-to-go/africa/index.html">Africa</a>
			<a href="/en/us/hemispheres/places-to-go/europe/index.html">Europe</a>
			<a href="/en/us/hemispheres/places-to-go/index.html">Places to go</a>
			<a href="/en/us/some-other-page.html">Noise</a>
			</body></html>`,
		africaURL: `<html><body>
			<a href="/en/us/hemispheres/places-to-go/africa/morocco/marrakesh.html">Marrakesh</a>
			<a href="/en/us/hemispheres/places-to-go/africa/morocco/fes.html">Fes</a>
			<a href="/en/us/hemispheres/places-to-go/africa/morocco/things-to-do/markets.html">Markets</a>
			<a href="/en/us/hemispheres/places-to-go/africa/morocco/index.html">Morocco</a>
			</body></html>`,
		europeURL: `<html><body>
			<a href="/en/us/hemispheres/places-to-go/europe/france/paris.html">Paris</a>
			</body></html>`,
		fesURL:       articleHTML("Fes"),
		marrakeshURL: articleHTML("Marrakesh"),
		parisURL:     articleHTML("Paris"),
	}
}

type fakeFetcher struct {
	pages   map[string]string
	failing map[string]bool
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, pageURL, _ string) (*Document, error) {
	f.fetched = append(f.fetched, pageURL)
	if f.failing[pageURL] {
		return nil, fmt.Errorf("%w: %s: boom", ErrNavigation, pageURL)
	}
	page, ok := f.pages[pageURL]
	if !ok {
		return nil, fmt.Errorf("%w: %s: not found", ErrNavigation, pageURL)
	}
	return ParseDocument(page, pageURL)
}

// expandingFetcher additionally implements Expander, recording which
// pages were fetched through the expansion path.
type expandingFetcher struct {
	fakeFetcher
	expanded []string
}

func (f *expandingFetcher) FetchExpanded(ctx context.Context, pageURL string, _ int) (*Document, error) {
	f.expanded = append(f.expanded, pageURL)
	return f.Fetch(ctx, pageURL, "body")
}

type fakeStore struct {
	saves     int
	processed [][]string // processed set at each save
}

func (s *fakeStore) Save(cp *storage.Checkpoint) error {
	s.saves++
	s.processed = append(s.processed, cp.Processed.Values())
	return nil
}

func newTestOrchestrator(f Fetcher, s Store) *Orchestrator {
	return NewOrchestrator(Options{StartURL: rootURL, Delays: NoDelays}, f, s)
}

func TestOrchestratorFullRun(t *testing.T) {
	fetcher := &fakeFetcher{pages: sitePages()}
	store := &fakeStore{}
	cp := storage.NewCheckpoint()

	stats, err := newTestOrchestrator(fetcher, store).Run(context.Background(), cp)
	require.NoError(t, err)

	assert.Equal(t, Stats{Regions: 2, Scraped: 3}, stats)
	assert.Equal(t, 3, cp.Processed.Len())
	assert.Equal(t, 3, store.saves, "checkpoint saved after every success")

	// Every save carried both halves together: the processed set grew
	// one URL at a time, never ahead of the aggregate.
	for i, snapshot := range store.processed {
		assert.Len(t, snapshot, i+1)
	}

	require.Len(t, cp.Countries, 2)
	assert.Equal(t, "Morocco", cp.Countries[0].Country)
	require.Len(t, cp.Countries[0].Destinations, 2)
	assert.Equal(t, "Fes", cp.Countries[0].Destinations[0].PlaceName, "articles visited in sorted order")
	assert.Equal(t, "Marrakesh", cp.Countries[0].Destinations[1].PlaceName)
	assert.Equal(t, "France", cp.Countries[1].Country)
}

func TestOrchestratorResumeSkipsProcessed(t *testing.T) {
	fetcher := &fakeFetcher{pages: sitePages()}
	store := &fakeStore{}

	cp := storage.NewCheckpoint()
	cp.Processed.Add(fesURL)
	cp.Countries = []models.CountryEntry{{
		Region: "Africa", Country: "Morocco",
		Destinations: []models.ArticleRecord{{PlaceName: "Fes", ArticleURL: fesURL}},
	}}

	stats, err := newTestOrchestrator(fetcher, store).Run(context.Background(), cp)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Scraped)
	assert.Equal(t, 1, stats.Skipped)
	assert.NotContains(t, fetcher.fetched, fesURL, "processed article never refetched")
	require.Len(t, cp.Countries[0].Destinations, 2, "resumed aggregate keeps the old record")
}

func TestOrchestratorFailedArticleNotMarked(t *testing.T) {
	fetcher := &fakeFetcher{pages: sitePages(), failing: map[string]bool{marrakeshURL: true}}
	store := &fakeStore{}
	cp := storage.NewCheckpoint()

	stats, err := newTestOrchestrator(fetcher, store).Run(context.Background(), cp)
	require.NoError(t, err, "an article failure never aborts the run")

	assert.Equal(t, 2, stats.Scraped)
	assert.Equal(t, 1, stats.Failed)
	assert.False(t, cp.Processed.Contains(marrakeshURL), "failed article stays retryable")
	require.Len(t, cp.Countries[0].Destinations, 1)
	assert.Equal(t, "Fes", cp.Countries[0].Destinations[0].PlaceName)
}

func TestOrchestratorRegionFailureNonFatal(t *testing.T) {
	fetcher := &fakeFetcher{pages: sitePages(), failing: map[string]bool{africaURL: true}}
	store := &fakeStore{}
	cp := storage.NewCheckpoint()

	stats, err := newTestOrchestrator(fetcher, store).Run(context.Background(), cp)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Regions)
	assert.Equal(t, 1, stats.Scraped, "surviving region still scraped")
	assert.True(t, cp.Processed.Contains(parisURL))
}

func TestOrchestratorRootFailureFatal(t *testing.T) {
	fetcher := &fakeFetcher{pages: sitePages(), failing: map[string]bool{rootURL: true}}
	cp := storage.NewCheckpoint()

	_, err := newTestOrchestrator(fetcher, &fakeStore{}).Run(context.Background(), cp)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSetup)
}

func TestOrchestratorExpandsRegionListings(t *testing.T) {
	fetcher := &expandingFetcher{fakeFetcher: fakeFetcher{pages: sitePages()}}
	cp := storage.NewCheckpoint()

	_, err := newTestOrchestrator(fetcher, &fakeStore{}).Run(context.Background(), cp)
	require.NoError(t, err)

	assert.Equal(t, []string{africaURL, europeURL}, fetcher.expanded,
		"region pages go through See-more expansion, the root and articles do not")
}

type fakeGate struct {
	blocked map[string]bool
	waits   int
}

func (g *fakeGate) Wait(context.Context, string) error { g.waits++; return nil }
func (g *fakeGate) Allowed(url string) bool            { return !g.blocked[url] }

func TestOrchestratorHonorsGate(t *testing.T) {
	fetcher := &fakeFetcher{pages: sitePages()}
	gate := &fakeGate{blocked: map[string]bool{marrakeshURL: true}}
	cp := storage.NewCheckpoint()

	orch := NewOrchestrator(Options{StartURL: rootURL, Delays: NoDelays},
		fetcher, &fakeStore{}, WithGate(gate))
	stats, err := orch.Run(context.Background(), cp)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Scraped)
	assert.Equal(t, 1, stats.Skipped)
	assert.NotContains(t, fetcher.fetched, marrakeshURL)
	assert.Greater(t, gate.waits, 0)
}

type fakeSink struct {
	saved []models.ArticleRecord
}

func (s *fakeSink) Save(_ models.Location, rec models.ArticleRecord) error {
	s.saved = append(s.saved, rec)
	return nil
}

func TestOrchestratorMirrorsToSink(t *testing.T) {
	fetcher := &fakeFetcher{pages: sitePages()}
	sink := &fakeSink{}
	cp := storage.NewCheckpoint()

	orch := NewOrchestrator(Options{StartURL: rootURL, Delays: NoDelays},
		fetcher, &fakeStore{}, WithSink(sink))
	_, err := orch.Run(context.Background(), cp)
	require.NoError(t, err)

	assert.Len(t, sink.saved, 3)
}
