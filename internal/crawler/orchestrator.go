package crawler

import (
	"context"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"places-crawler/internal/storage"
	"places-crawler/pkg/models"
)

// Store persists the checkpoint. Satisfied by storage.FileStore.
type Store interface {
	Save(cp *storage.Checkpoint) error
}

// Sink receives a copy of each scraped record. Optional; failures are
// logged, never fatal.
type Sink interface {
	Save(loc models.Location, rec models.ArticleRecord) error
}

// Gate applies politeness rules before each network fetch. Optional.
type Gate interface {
	Wait(ctx context.Context, url string) error
	Allowed(url string) bool
}

// Options are the orchestrator's run parameters.
type Options struct {
	StartURL    string
	ContentWait string // selector marking loaded article content
	MaxLoadMore int    // safety cap on "See more" expansion clicks
	Delays      DelaySchedule
}

// Stats summarizes a run.
type Stats struct {
	Regions int
	Scraped int
	Failed  int
	Skipped int
}

// Orchestrator drives the crawl: region discovery, per-region article
// discovery, per-article extraction, with checkpoint-based resume.
// Strictly sequential; the checkpoint is saved after every success so
// an abrupt termination loses at most the in-flight article.
type Orchestrator struct {
	opts       Options
	fetcher    Fetcher
	extractor  *Extractor
	classifier *Classifier
	store      Store
	sink       Sink
	gate       Gate
}

type Option func(*Orchestrator)

func WithSink(s Sink) Option       { return func(o *Orchestrator) { o.sink = s } }
func WithGate(g Gate) Option       { return func(o *Orchestrator) { o.gate = g } }
func WithClassifier(c *Classifier) Option {
	return func(o *Orchestrator) { o.classifier = c }
}

func NewOrchestrator(opts Options, fetcher Fetcher, store Store, extra ...Option) *Orchestrator {
	if opts.ContentWait == "" {
		opts.ContentWait = "h1"
	}
	if opts.MaxLoadMore <= 0 {
		opts.MaxLoadMore = 25
	}
	if opts.Delays == nil {
		opts.Delays = DefaultDelays
	}
	o := &Orchestrator{
		opts:       opts,
		fetcher:    fetcher,
		extractor:  NewExtractor(),
		classifier: NewClassifier(nil),
		store:      store,
	}
	for _, opt := range extra {
		opt(o)
	}
	return o
}

// Run executes the full crawl against cp and returns run statistics.
// Only a failure to load the root listing (or context cancellation)
// returns an error; per-region and per-article failures are logged
// and skipped.
func (o *Orchestrator) Run(ctx context.Context, cp *storage.Checkpoint) (Stats, error) {
	var stats Stats

	log.WithField("url", o.opts.StartURL).Info("loading root listing")
	root, err := o.fetcher.Fetch(ctx, o.opts.StartURL, "body")
	if err != nil {
		return stats, fmt.Errorf("%w: root listing: %v", ErrSetup, err)
	}

	regions := o.discoverRegions(root)
	log.Infof("found %d regions", len(regions))

	for i, regionURL := range regions {
		if err := sleep(ctx, o.opts.Delays(DelayRegion, i)); err != nil {
			return stats, err
		}
		stats.Regions++
		if err := o.processRegion(ctx, regionURL, cp, &stats); err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			log.WithError(err).WithField("region", regionURL).Warn("region failed, continuing")
		}
	}

	o.logSummary(cp, stats)
	return stats, nil
}

// discoverRegions pulls region index links off the root listing,
// deduped and sorted for a deterministic crawl order.
func (o *Orchestrator) discoverRegions(root *Document) []string {
	seen := make(map[string]bool)
	var regions []string
	for _, link := range root.Links() {
		if link == o.opts.StartURL || !o.classifier.IsRegionIndexURL(link) {
			continue
		}
		if !seen[link] {
			seen[link] = true
			regions = append(regions, link)
		}
	}
	sort.Strings(regions)
	return regions
}

func (o *Orchestrator) processRegion(ctx context.Context, regionURL string, cp *storage.Checkpoint, stats *Stats) error {
	logger := log.WithField("region", regionURL)
	logger.Info("processing region")

	if err := o.waitGate(ctx, regionURL); err != nil {
		return err
	}

	doc, err := o.fetchExpanded(ctx, regionURL)
	if err != nil {
		return err
	}

	articles := o.discoverArticles(doc)
	logger.Infof("found %d articles", len(articles))

	var fresh []string
	for _, u := range articles {
		if cp.Processed.Contains(u) {
			stats.Skipped++
			continue
		}
		fresh = append(fresh, u)
	}
	logger.Infof("%d new articles to scrape", len(fresh))

	for j, articleURL := range fresh {
		if err := sleep(ctx, o.opts.Delays(DelayArticle, j)); err != nil {
			return err
		}
		if err := o.scrapeArticle(ctx, articleURL, cp, stats); err != nil {
			return err
		}
	}
	return nil
}

// fetchExpanded uses the backend's load-more expansion when available;
// the static backend just loads the page as served.
func (o *Orchestrator) fetchExpanded(ctx context.Context, pageURL string) (*Document, error) {
	if exp, ok := o.fetcher.(Expander); ok {
		return exp.FetchExpanded(ctx, pageURL, o.opts.MaxLoadMore)
	}
	return o.fetcher.Fetch(ctx, pageURL, "body")
}

func (o *Orchestrator) discoverArticles(doc *Document) []string {
	seen := make(map[string]bool)
	var articles []string
	for _, link := range doc.Links() {
		if !o.classifier.IsArticleURL(link) {
			continue
		}
		if !seen[link] {
			seen[link] = true
			articles = append(articles, link)
		}
	}
	sort.Strings(articles)
	return articles
}

// scrapeArticle runs one unit of work. All failures short of context
// cancellation are absorbed: the URL stays unprocessed so a later run
// retries it. Returned errors are cancellation only.
func (o *Orchestrator) scrapeArticle(ctx context.Context, articleURL string, cp *storage.Checkpoint, stats *Stats) error {
	logger := log.WithField("url", articleURL)

	if o.gate != nil && !o.gate.Allowed(articleURL) {
		logger.Info("disallowed by robots.txt, skipping")
		stats.Skipped++
		return nil
	}
	if err := o.waitGate(ctx, articleURL); err != nil {
		return err
	}

	doc, err := o.fetcher.Fetch(ctx, articleURL, o.opts.ContentWait)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.WithError(err).Warn("failed to load article")
		stats.Failed++
		return nil
	}

	rec, err := o.extractor.Extract(doc, articleURL)
	if err != nil || rec == nil {
		logger.WithError(err).Warn("failed to extract article")
		stats.Failed++
		return nil
	}

	entries, err := AddArticle(*rec, cp.Countries)
	if err != nil {
		logger.WithError(err).Warn("could not place article, skipping")
		stats.Failed++
		return nil
	}
	cp.Countries = entries
	cp.Processed.Add(articleURL)

	if err := o.store.Save(cp); err != nil {
		// The in-memory state is still intact; the next successful
		// save persists the full picture including this article.
		logger.WithError(err).Error("checkpoint save failed")
	}

	if o.sink != nil {
		if loc, locErr := ParseLocation(articleURL); locErr == nil {
			if sinkErr := o.sink.Save(loc, *rec); sinkErr != nil {
				logger.WithError(sinkErr).Warn("sink write failed")
			}
		}
	}

	stats.Scraped++
	logger.WithField("title", rec.ArticleTitle).Info("scraped article")
	return nil
}

func (o *Orchestrator) waitGate(ctx context.Context, url string) error {
	if o.gate == nil {
		return nil
	}
	return o.gate.Wait(ctx, url)
}

func (o *Orchestrator) logSummary(cp *storage.Checkpoint, stats Stats) {
	perRegion := make(map[string]int)
	perRegionCountries := make(map[string]int)
	for _, entry := range cp.Countries {
		perRegion[entry.Region] += len(entry.Destinations)
		perRegionCountries[entry.Region]++
	}
	log.WithFields(log.Fields{
		"regions": stats.Regions,
		"scraped": stats.Scraped,
		"failed":  stats.Failed,
		"skipped": stats.Skipped,
	}).Info("crawl complete")
	for region, destinations := range perRegion {
		log.Infof("  %s: %d countries, %d destinations", region, perRegionCountries[region], destinations)
	}
}
