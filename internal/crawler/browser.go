package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"
)

// Selector lists come from the source site: the consent banner and the
// "See more" affordance vary between templates, so each is tried in order.
var (
	cookieBannerSelectors = []string{
		`//button[@id='onetrust-accept-btn-handler']`,
		`//button[contains(., 'Accept all')]`,
		`//button[contains(., 'Accept cookies')]`,
		`//button[contains(., 'Accept')]`,
	}
	seeMoreSelectors = []string{
		`//button[contains(., 'See more')]`,
		`//a[contains(., 'See more')]`,
		`//button[contains(., 'Load more')]`,
	}
)

// BrowserConfig holds the knobs for the chromedp backend.
type BrowserConfig struct {
	Headless        bool
	UserAgent       string
	NavTimeout      time.Duration
	SelectorTimeout time.Duration
}

// Browser is the rendering Fetcher. It drives a single headless Chrome
// tab: one page at a time, matching the crawl's sequential model.
type Browser struct {
	cfg     BrowserConfig
	tab     context.Context
	cancels []context.CancelFunc
}

// NewBrowser launches Chrome and opens the tab all fetches share.
// Launch failure is a setup error: without a browser there is no run.
func NewBrowser(cfg BrowserConfig) (*Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-http2", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.UserAgent(cfg.UserAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	tab, cancelTab := chromedp.NewContext(allocCtx)

	b := &Browser{cfg: cfg, tab: tab, cancels: []context.CancelFunc{cancelTab, cancelAlloc}}
	if err := chromedp.Run(tab, emulation.SetDeviceMetricsOverride(1920, 1080, 1, false)); err != nil {
		b.Close()
		return nil, fmt.Errorf("%w: launch browser: %v", ErrSetup, err)
	}
	return b, nil
}

func (b *Browser) Close() {
	for _, cancel := range b.cancels {
		cancel()
	}
}

// Fetch navigates to pageURL, waits for waitFor to become visible, and
// snapshots the rendered page.
func (b *Browser) Fetch(ctx context.Context, pageURL, waitFor string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := b.navigate(ctx, pageURL, waitFor); err != nil {
		return nil, err
	}
	return b.snapshot(ctx, pageURL)
}

// FetchExpanded loads a listing page, dismisses any consent banner, and
// clicks the "See more" affordance until it stops appearing or the
// click cap is hit, then snapshots the fully expanded page.
func (b *Browser) FetchExpanded(ctx context.Context, pageURL string, maxClicks int) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := b.navigate(ctx, pageURL, "body"); err != nil {
		return nil, err
	}
	b.dismissCookieBanner(ctx)

	for i := 0; i < maxClicks; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !b.clickSeeMore(ctx) {
			break
		}
		log.WithField("url", pageURL).Debugf("clicked see-more (%d)", i+1)
	}
	return b.snapshot(ctx, pageURL)
}

// opContext bounds one chromedp operation. Actions must run on the
// tab's context chain, so the caller's ctx cannot be inherited
// directly; its cancellation is forwarded instead, keeping shutdown
// prompt even mid-navigation.
func (b *Browser) opContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithTimeout(b.tab, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}

func (b *Browser) navigate(ctx context.Context, pageURL, waitFor string) error {
	navCtx, cancel := b.opContext(ctx, b.cfg.NavTimeout)
	defer cancel()
	if err := chromedp.Run(navCtx, chromedp.Navigate(pageURL)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNavigation, pageURL, err)
	}
	if waitFor == "" {
		waitFor = "body"
	}
	waitCtx, cancelWait := b.opContext(ctx, b.cfg.SelectorTimeout)
	defer cancelWait()
	if err := chromedp.Run(waitCtx, chromedp.WaitVisible(waitFor, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("%w: %s: wait for %q: %v", ErrNavigation, pageURL, waitFor, err)
	}
	return nil
}

func (b *Browser) snapshot(ctx context.Context, pageURL string) (*Document, error) {
	snapCtx, cancel := b.opContext(ctx, b.cfg.SelectorTimeout)
	defer cancel()
	var rendered string
	if err := chromedp.Run(snapCtx, chromedp.OuterHTML("html", &rendered, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("%w: %s: read page: %v", ErrNavigation, pageURL, err)
	}
	doc, err := ParseDocument(rendered, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExtraction, pageURL, err)
	}
	return doc, nil
}

// dismissCookieBanner is best-effort: the banner only shows on the
// first navigation of a session, if at all.
func (b *Browser) dismissCookieBanner(ctx context.Context) {
	for _, sel := range cookieBannerSelectors {
		clickCtx, cancel := b.opContext(ctx, 3*time.Second)
		err := chromedp.Run(clickCtx,
			chromedp.Click(sel, chromedp.BySearch),
			chromedp.Sleep(time.Second),
		)
		cancel()
		if err == nil {
			log.Debugf("dismissed cookie banner via %s", sel)
			return
		}
	}
}

// clickSeeMore reports whether an expansion click landed.
func (b *Browser) clickSeeMore(ctx context.Context) bool {
	for _, sel := range seeMoreSelectors {
		clickCtx, cancel := b.opContext(ctx, 3*time.Second)
		err := chromedp.Run(clickCtx,
			chromedp.Click(sel, chromedp.BySearch),
			chromedp.Sleep(time.Second),
		)
		cancel()
		if err == nil {
			return true
		}
	}
	return false
}
