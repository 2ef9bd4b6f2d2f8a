package weburl

import (
	"fmt"
	"net/url"
	"strings"
)

// IsWebScheme reports whether scheme is http or https, ignoring case.
func IsWebScheme(scheme string) bool {
	switch strings.ToLower(scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}

// Validate parses raw and constrains it to an absolute http or https URL.
// Surrounding whitespace is ignored. The returned URL keeps its fragment;
// use Canonical when the URL serves as an identity key.
func Validate(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidURL)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidURL, trimmed, err) //nolint:errorlint // the parse error is detail only
	}

	if err := Check(u); err != nil {
		return nil, fmt.Errorf("%w: %q", err, trimmed)
	}
	return u, nil
}

// Check reports whether an already parsed URL is acceptable.
// It returns ErrInvalidURL for nil, relative, non-web or host-less URLs.
func Check(u *url.URL) error {
	if u == nil {
		return ErrInvalidURL
	}
	if !u.IsAbs() || !IsWebScheme(u.Scheme) {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}
