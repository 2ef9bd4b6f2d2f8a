package weburl

import "errors"

// ErrInvalidURL is returned when a string is blank, cannot be parsed, or is
// not an absolute http/https URL with a host.
var ErrInvalidURL = errors.New("invalid URL")
