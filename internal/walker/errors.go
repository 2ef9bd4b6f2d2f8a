package walker

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoNavigableLinks is returned when the source page has no usable links,
// or when every candidate was skipped without an error being recorded.
var ErrNoNavigableLinks = errors.New("no navigable links found")

// ErrNoResult is returned when a Fetcher reports neither a result nor an error.
var ErrNoResult = errors.New("fetcher returned no result")

// UnsafeURLError is returned when the safety filter rejected a candidate.
// It is only surfaced when it was the last candidate failure.
type UnsafeURLError struct {
	// URL is the final, post-redirect URL that was rejected.
	URL string

	// Reasons are the verdict's explanations, high-risk reasons first.
	Reasons []string

	// Score is the verdict's risk score.
	Score int

	// Domain is the registrable domain of URL, empty for IP hosts.
	Domain string
}

// Error implements the error interface.
func (e *UnsafeURLError) Error() string {
	if len(e.Reasons) == 0 {
		return fmt.Sprintf("blocked unsafe URL %s", e.URL)
	}
	return fmt.Sprintf("blocked unsafe URL %s: %s", e.URL, strings.Join(e.Reasons, "; "))
}

// FailureKind distinguishes the failures a caller must treat differently.
// Dead ends call for stepping back, unsafe targets for halting.
type FailureKind int

const (
	// FailureGeneric covers invalid input, fetch and sanitize failures.
	FailureGeneric FailureKind = iota
	// FailureUnsafe means the safety filter rejected the last candidate.
	FailureUnsafe
	// FailureNoLinks means there was nothing left to navigate to.
	FailureNoLinks
)

// Code returns a stable machine-readable identifier for the kind.
func (k FailureKind) Code() string {
	switch k {
	case FailureUnsafe:
		return "unsafe_url"
	case FailureNoLinks:
		return "no_navigable_links"
	default:
		return "walk_failed"
	}
}

// String implements fmt.Stringer.
func (k FailureKind) String() string {
	return k.Code()
}

// Classify reports which kind of failure err represents.
// It must only be called with a non-nil error.
func Classify(err error) FailureKind {
	var unsafe *UnsafeURLError
	switch {
	case errors.As(err, &unsafe):
		return FailureUnsafe
	case errors.Is(err, ErrNoNavigableLinks):
		return FailureNoLinks
	default:
		return FailureGeneric
	}
}
