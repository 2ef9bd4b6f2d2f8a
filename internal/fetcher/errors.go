package fetcher

import (
	"errors"
	"fmt"
)

// Redirect chain errors.
// These are always returned wrapped in a *FetchError.
var (
	// ErrTooManyRedirects is returned when the hop budget is exhausted before
	// a non-redirect response is received.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrRedirectWithoutLocation is returned for a 3xx response that carries
	// no Location header.
	ErrRedirectWithoutLocation = errors.New("redirect without location")

	// ErrUnsupportedRedirectScheme is returned when a redirect points at
	// anything other than http or https.
	ErrUnsupportedRedirectScheme = errors.New("redirected to unsupported scheme")
)

// ErrInvalidProxyAddress is returned by New when the proxy address is not in
// "host:port" format.
var ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

// FetchError reports a failed fetch. It covers transport failures (DNS, TLS,
// timeouts, refused connections), non-success HTTP statuses and broken
// redirect chains. The original cause is available through errors.Unwrap.
type FetchError struct {
	// URL is the URL that was requested, before any redirect.
	URL string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// StatusError is the cause of a FetchError when the server answered with a
// status that is neither success nor redirection.
type StatusError struct {
	// Code is the HTTP status code, e.g. 404.
	Code int

	// Reason is the reason phrase, e.g. "Not Found".
	Reason string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.Code, e.Reason)
}
