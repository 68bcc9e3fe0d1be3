// internal/llm/errors.go
package llm

import (
	"errors"
	"fmt"
)

type SummarizerErrorKind string

const (
	ErrMissingCredentials SummarizerErrorKind = "missing_credentials"
	ErrQuotaExceeded      SummarizerErrorKind = "quota_exceeded"
	ErrTimeout            SummarizerErrorKind = "timeout"
	ErrInvalidResponse    SummarizerErrorKind = "invalid_response"
)

// SummarizerError is recorded on the analysis result; it never fails the analysis.
type SummarizerError struct {
	Kind SummarizerErrorKind
	Err  error
}

func (e *SummarizerError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("summarizer %s", e.Kind)
	}
	return fmt.Sprintf("summarizer %s: %v", e.Kind, e.Err)
}

func (e *SummarizerError) Unwrap() error { return e.Err }

// KindOf returns the kind of a *SummarizerError anywhere in err's chain, or "".
func KindOf(err error) SummarizerErrorKind {
	var se *SummarizerError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
