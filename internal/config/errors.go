package config

import "errors"

// Configuration validation errors returned by Config.Validate and
// Config.ValidateServer. Callers use errors.Is to tell them apart.
var (
	// ErrInvalidStartURL is returned when the start URL is not an absolute http(s) URL.
	ErrInvalidStartURL = errors.New("invalid start URL: must be an absolute http or https URL")

	// ErrInvalidTimeout is returned when either timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxRedirects is returned when the redirect budget is not positive.
	ErrInvalidMaxRedirects = errors.New("invalid max redirects: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrInvalidRequestsPerSecond is returned for a negative request rate.
	// Use 0 to disable pacing.
	ErrInvalidRequestsPerSecond = errors.New("invalid requests per second: must be non-negative")

	// ErrInvalidProxyAddress is returned when the proxy is not "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address: must be host:port")

	// ErrInvalidSteps is returned when the step count is not positive.
	ErrInvalidSteps = errors.New("invalid steps: must be positive")

	// ErrInvalidAutoInterval is returned for a negative auto interval.
	ErrInvalidAutoInterval = errors.New("invalid auto interval: must be non-negative")

	// ErrInvalidMaxFailureStreak is returned when the failure streak limit is not positive.
	ErrInvalidMaxFailureStreak = errors.New("invalid max failure streak: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidVisitedURL is returned when a pre-visited entry is not a web URL.
	ErrInvalidVisitedURL = errors.New("invalid visited URL: must be an absolute http or https URL")

	// ErrInvalidListenAddress is returned when the listen address is not "host:port".
	ErrInvalidListenAddress = errors.New("invalid listen address: must be host:port")
)
