// internal/scraper/fetcher.go
package scraper

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/javajoker/shopinsights/internal/config"
)

// Response is a fetched page.
type Response struct {
	StatusCode  int
	Body        []byte
	FinalURL    string
	ContentType string
	Header      http.Header
	// Truncated is set when the body was cut at the configured size limit.
	Truncated bool
}

// Fetcher performs single-attempt GET requests with browser-like headers.
type Fetcher struct {
	client *http.Client
	cfg    config.ScraperConfig
	robots *RobotsChecker
	logger *logrus.Entry

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewFetcher(cfg config.ScraperConfig, logger *logrus.Logger) *Fetcher {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: cfg.RequestTimeout,
		}).DialContext,
		MaxIdleConnsPerHost: 4,
		TLSHandshakeTimeout: cfg.RequestTimeout,
		DisableCompression:  true,
	}

	maxRedirects := cfg.MaxRedirects
	client := &http.Client{
		Transport: transport,
		Timeout:   cfg.RequestTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return errTooManyRedirects
			}
			return nil
		},
	}

	f := &Fetcher{
		client:   client,
		cfg:      cfg,
		logger:   logger.WithField("component", "fetcher"),
		limiters: make(map[string]*rate.Limiter),
	}
	f.robots = NewRobotsChecker(client, cfg.UserAgent, cfg.RespectRobots)
	return f
}

// Fetch issues one GET request. Non-2xx responses come back as *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, headers http.Header) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, &FetchError{Kind: FetchConnection, URL: rawURL, Err: fmt.Errorf("invalid url: %v", err)}
	}

	if !f.robots.Allowed(ctx, u) {
		return nil, &FetchError{Kind: FetchBlocked, URL: rawURL, Err: errors.New("disallowed by robots.txt")}
	}

	if err := f.wait(ctx, u.Host); err != nil {
		return nil, &FetchError{Kind: classifyTransportError(err), URL: rawURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: FetchConnection, URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for key, values := range headers {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: classifyTransportError(err), URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	if resp.StatusCode >= 400 {
		kind := FetchHTTP4xx
		if resp.StatusCode >= 500 {
			kind = FetchHTTP5xx
		}
		return nil, &FetchError{
			Kind:       kind,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}

	reader, err := decompressReader(resp)
	if err != nil {
		return nil, &FetchError{Kind: FetchConnection, URL: rawURL, Err: fmt.Errorf("decode body: %w", err)}
	}
	if f.cfg.MaxBodySize > 0 {
		// one extra byte tells a body at the limit from one over it
		reader = io.LimitReader(reader, f.cfg.MaxBodySize+1)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &FetchError{Kind: classifyTransportError(err), URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}

	truncated := false
	if f.cfg.MaxBodySize > 0 && int64(len(body)) > f.cfg.MaxBodySize {
		body = body[:f.cfg.MaxBodySize]
		truncated = true
		f.logger.WithFields(logrus.Fields{
			"url":   rawURL,
			"limit": f.cfg.MaxBodySize,
		}).Warn("response body truncated")
	}

	f.logger.WithFields(logrus.Fields{
		"url":    rawURL,
		"status": resp.StatusCode,
		"bytes":  len(body),
	}).Debug("fetch complete")

	return &Response{
		StatusCode:  resp.StatusCode,
		Body:        body,
		FinalURL:    finalURL,
		ContentType: resp.Header.Get("Content-Type"),
		Header:      resp.Header,
		Truncated:   truncated,
	}, nil
}

// wait spaces consecutive requests to the same host.
func (f *Fetcher) wait(ctx context.Context, host string) error {
	if f.cfg.DelayBetweenRequests <= 0 {
		return nil
	}

	f.mu.Lock()
	limiter, ok := f.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(f.cfg.DelayBetweenRequests), 1)
		f.limiters[host] = limiter
	}
	f.mu.Unlock()

	return limiter.Wait(ctx)
}

func decompressReader(resp *http.Response) (io.Reader, error) {
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		return gzip.NewReader(resp.Body)
	case "deflate":
		return flate.NewReader(resp.Body), nil
	case "br":
		return brotli.NewReader(resp.Body), nil
	default:
		return resp.Body, nil
	}
}

func classifyTransportError(err error) FetchErrorKind {
	if errors.Is(err, errTooManyRedirects) {
		return FetchTooManyRedirects
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FetchTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FetchTimeout
	}
	return FetchConnection
}
