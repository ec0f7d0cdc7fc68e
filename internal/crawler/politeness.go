package crawler

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

// Politeness enforces per-host pacing and robots.txt rules. It sits
// underneath the orchestrator's own delay schedule as a floor: even a
// zero-delay schedule cannot hit a host faster than the limiter allows.
type Politeness struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	robots   map[string]*robotstxt.Group
	interval time.Duration
	agent    string
	client   *http.Client
}

func NewPoliteness(interval time.Duration, agent string) *Politeness {
	return &Politeness{
		limiters: make(map[string]*rate.Limiter),
		robots:   make(map[string]*robotstxt.Group),
		interval: interval,
		agent:    agent,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Wait blocks until the host's limiter releases the next request.
func (p *Politeness) Wait(ctx context.Context, targetURL string) error {
	u, err := url.Parse(targetURL)
	if err != nil {
		return err
	}

	p.mu.Lock()
	limiter, ok := p.limiters[u.Host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(p.interval), 1)
		p.limiters[u.Host] = limiter
	}
	p.mu.Unlock()

	return limiter.Wait(ctx)
}

// Allowed checks the host's robots.txt, caching the parsed group.
// A missing or unreadable robots.txt counts as allowed.
func (p *Politeness) Allowed(targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	group, cached := p.robots[u.Host]
	if !cached {
		group = p.fetchGroup(u)
		p.robots[u.Host] = group
	}
	if group == nil {
		return true
	}
	return group.Test(u.Path)
}

func (p *Politeness) fetchGroup(u *url.URL) *robotstxt.Group {
	resp, err := p.client.Get(u.Scheme + "://" + u.Host + "/robots.txt")
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data.FindGroup(p.agent)
}
