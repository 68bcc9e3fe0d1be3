// internal/scraper/errors.go
package scraper

import (
	"errors"
	"fmt"
)

type FetchErrorKind string

const (
	FetchTimeout          FetchErrorKind = "timeout"
	FetchConnection       FetchErrorKind = "connection"
	FetchHTTP4xx          FetchErrorKind = "http_4xx"
	FetchHTTP5xx          FetchErrorKind = "http_5xx"
	FetchTooManyRedirects FetchErrorKind = "too_many_redirects"
	FetchBlocked          FetchErrorKind = "blocked"
)

// FetchError is returned by the fetcher for every failed request.
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s failed (%s, status %d): %v", e.URL, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s failed (%s): %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type EndpointErrorKind string

const (
	EndpointNotShopify  EndpointErrorKind = "not_shopify"
	EndpointMalformed   EndpointErrorKind = "malformed"
	EndpointUnreachable EndpointErrorKind = "unreachable"
)

// EndpointError means /products.json could not be read. Callers treat it as
// "not a Shopify store" rather than as a failed run.
type EndpointError struct {
	Kind EndpointErrorKind
	URL  string
	Err  error
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("catalog endpoint %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *EndpointError) Unwrap() error { return e.Err }

// ExtractionWarning records a non-fatal per-field or per-page problem.
type ExtractionWarning struct {
	Field   string `json:"field"`
	URL     string `json:"url,omitempty"`
	Message string `json:"message"`
}

func (w ExtractionWarning) String() string {
	if w.URL != "" {
		return fmt.Sprintf("%s (%s): %s", w.Field, w.URL, w.Message)
	}
	return w.Field + ": " + w.Message
}

var errTooManyRedirects = errors.New("stopped after too many redirects")

// IsFetchError reports whether err carries a FetchError and returns it.
func IsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
