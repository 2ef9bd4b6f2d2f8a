package sanitize

import "errors"

// ErrEmptyResponse is returned when the document to sanitize is blank.
var ErrEmptyResponse = errors.New("empty response")
