// Package config provides the configuration for randomwalker: fetch limits,
// walk pacing, report format, and the HTTP listen address. Values come from
// NewConfig defaults, an optional YAML file, and CLI flags, in increasing
// order of precedence.
package config
