package config

import "time"

// File represents the structure of the .randomwalker configuration file.
// Every field is optional; zero values leave the corresponding Config
// setting untouched.
type File struct {
	// StartURL overrides DefaultStartURL.
	StartURL string `yaml:"start_url,omitempty"`

	// UserAgent overrides DefaultUserAgent.
	UserAgent string `yaml:"user_agent,omitempty"`

	// OpenTimeout is a Go duration string such as "3s".
	OpenTimeout time.Duration `yaml:"open_timeout,omitempty"`

	// ReadTimeout is a Go duration string such as "10s".
	ReadTimeout time.Duration `yaml:"read_timeout,omitempty"`

	MaxRedirects      int     `yaml:"max_redirects,omitempty"`
	MaxBodySize       int64   `yaml:"max_body_size,omitempty"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`

	// Proxy is a SOCKS5 proxy in "host:port" format.
	Proxy string `yaml:"proxy,omitempty"`

	// AutoInterval is the pause between hops of a multi-step walk.
	AutoInterval time.Duration `yaml:"auto_interval,omitempty"`

	// Listen is the serve command's "host:port".
	Listen string `yaml:"listen,omitempty"`

	// Visited lists URLs to seed every session's visited set with.
	// Useful for keeping a walk away from pages you have already seen.
	Visited []string `yaml:"visited,omitempty"`
}

// Apply copies every non-zero value from the file into cfg.
// Visited entries are appended to those already present.
func (f *File) Apply(cfg *Config) {
	if f == nil || cfg == nil {
		return
	}
	if f.StartURL != "" {
		cfg.StartURL = f.StartURL
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.OpenTimeout != 0 {
		cfg.OpenTimeout = f.OpenTimeout
	}
	if f.ReadTimeout != 0 {
		cfg.ReadTimeout = f.ReadTimeout
	}
	if f.MaxRedirects != 0 {
		cfg.MaxRedirects = f.MaxRedirects
	}
	if f.MaxBodySize != 0 {
		cfg.MaxBodySize = f.MaxBodySize
	}
	if f.RequestsPerSecond != 0 {
		cfg.RequestsPerSecond = f.RequestsPerSecond
	}
	if f.Proxy != "" {
		cfg.ProxyAddress = f.Proxy
	}
	if f.AutoInterval != 0 {
		cfg.AutoInterval = f.AutoInterval
	}
	if f.Listen != "" {
		cfg.ListenAddress = f.Listen
	}
	cfg.Visited = append(cfg.Visited, f.Visited...)
}
