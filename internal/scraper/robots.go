// internal/scraper/robots.go
package scraper

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsChecker caches robots.txt rules per origin. A disabled checker allows everything.
type RobotsChecker struct {
	client    *http.Client
	userAgent string
	enabled   bool
	cacheTTL  time.Duration

	mu     sync.Mutex
	rules  map[string]*robotstxt.RobotsData
	expiry map[string]time.Time
}

func NewRobotsChecker(client *http.Client, userAgent string, enabled bool) *RobotsChecker {
	return &RobotsChecker{
		client:    client,
		userAgent: userAgent,
		enabled:   enabled,
		cacheTTL:  time.Hour,
		rules:     make(map[string]*robotstxt.RobotsData),
		expiry:    make(map[string]time.Time),
	}
}

// Allowed reports whether u may be fetched. Unreadable robots.txt files allow the request.
func (r *RobotsChecker) Allowed(ctx context.Context, u *url.URL) bool {
	if !r.enabled || u.Path == "/robots.txt" {
		return true
	}

	data := r.load(ctx, u.Scheme+"://"+u.Host)
	if data == nil {
		return true
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return data.TestAgent(path, r.userAgent)
}

func (r *RobotsChecker) load(ctx context.Context, origin string) *robotstxt.RobotsData {
	r.mu.Lock()
	defer r.mu.Unlock()

	if data, ok := r.rules[origin]; ok && time.Now().Before(r.expiry[origin]) {
		return data
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512<<10))
	if err != nil {
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil
	}

	r.rules[origin] = data
	r.expiry[origin] = time.Now().Add(r.cacheTTL)
	return data
}
