package config

import (
	"net"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/randomwalker/internal/weburl"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "randomwalker"

	// DefaultStartURL is where a walk begins when no URL is given.
	// The page itself redirects to a random article, so every default walk
	// starts somewhere different.
	DefaultStartURL = "https://en.wikipedia.org/wiki/Special:Random"

	// DefaultOpenTimeout bounds connection setup for each request.
	DefaultOpenTimeout = 5 * time.Second

	// DefaultReadTimeout bounds the wait for response headers.
	DefaultReadTimeout = 5 * time.Second

	// DefaultMaxRedirects is the request budget for one fetch, counting the
	// initial request. A chain of N redirects succeeds only when N < 5.
	DefaultMaxRedirects = 5

	// DefaultUserAgent identifies randomwalker in HTTP requests.
	DefaultUserAgent = "randomwalker/1.0 (+https://github.com/nao1215/randomwalker)"

	// DefaultMaxBodySize limits the response body read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultSteps is the number of hops taken by the walk command.
	DefaultSteps = 1

	// DefaultAutoInterval is the pause between hops in auto mode.
	DefaultAutoInterval = 5 * time.Second

	// DefaultMaxFailureStreak is the number of consecutive dead ends after
	// which a session steps back one extra page.
	DefaultMaxFailureStreak = 5

	// DefaultListenAddress is where the serve command listens.
	// Loopback only; exposing a fetch-anything endpoint is an explicit choice.
	DefaultListenAddress = "127.0.0.1:8080"
)

// Config holds all configuration options for randomwalker.
// It is populated from defaults, the config file, and CLI flags, then passed
// to the commands explicitly.
type Config struct {
	// StartURL is the first page of a walk. Must be an absolute http(s) URL.
	StartURL string

	// OpenTimeout bounds TCP connect and TLS handshake for each request.
	OpenTimeout time.Duration

	// ReadTimeout bounds the wait for response headers after a request is sent.
	ReadTimeout time.Duration

	// MaxRedirects is the number of requests one fetch may issue while
	// following redirects, including the first.
	MaxRedirects int

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Larger responses are truncated.
	MaxBodySize int64

	// RequestsPerSecond paces outgoing requests. Zero disables pacing.
	RequestsPerSecond float64

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	// Empty means direct connections.
	ProxyAddress string

	// Seed seeds link selection. Zero selects a time-based seed; any other
	// value makes a walk over unchanged pages reproducible.
	Seed uint64

	// Steps is the number of hops the walk command takes.
	Steps int

	// AutoInterval is the pause between hops when Steps > 1.
	// Zero walks without pausing.
	AutoInterval time.Duration

	// MaxFailureStreak is the number of consecutive dead ends tolerated
	// before a session skips back past the current page.
	MaxFailureStreak int

	// ListenAddress is the "host:port" the serve command binds.
	ListenAddress string

	// Verbose enables debug logging.
	Verbose bool

	// JSONReport selects the JSON transcript format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects the Markdown transcript format.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the transcript.
	// Empty means stdout.
	ReportFile string

	// ConfigFilePath is the explicit configuration file path, if any.
	ConfigFilePath string

	// Visited lists URLs the walk must never land on.
	Visited []string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		StartURL:         DefaultStartURL,
		OpenTimeout:      DefaultOpenTimeout,
		ReadTimeout:      DefaultReadTimeout,
		MaxRedirects:     DefaultMaxRedirects,
		UserAgent:        DefaultUserAgent,
		MaxBodySize:      DefaultMaxBodySize,
		Steps:            DefaultSteps,
		AutoInterval:     DefaultAutoInterval,
		MaxFailureStreak: DefaultMaxFailureStreak,
		ListenAddress:    DefaultListenAddress,
	}
}

// XDGConfigDir returns the XDG config directory for randomwalker.
// On Linux: ~/.config/randomwalker
// On macOS: ~/Library/Application Support/randomwalker
// On Windows: %APPDATA%\randomwalker
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGConfigFile returns the path of the config file inside XDGConfigDir.
func XDGConfigFile() string {
	return filepath.Join(XDGConfigDir(), "config.yaml")
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if _, err := weburl.Validate(c.StartURL); err != nil {
		return ErrInvalidStartURL
	}
	if c.OpenTimeout <= 0 || c.ReadTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxRedirects <= 0 {
		return ErrInvalidMaxRedirects
	}
	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}
	if c.RequestsPerSecond < 0 {
		return ErrInvalidRequestsPerSecond
	}
	if c.ProxyAddress != "" && !validHostPort(c.ProxyAddress) {
		return ErrInvalidProxyAddress
	}
	if c.Steps <= 0 {
		return ErrInvalidSteps
	}
	if c.AutoInterval < 0 {
		return ErrInvalidAutoInterval
	}
	if c.MaxFailureStreak <= 0 {
		return ErrInvalidMaxFailureStreak
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	for _, raw := range c.Visited {
		if _, err := weburl.Validate(raw); err != nil {
			return ErrInvalidVisitedURL
		}
	}
	return nil
}

// ValidateServer checks the options used only by the serve command.
func (c *Config) ValidateServer() error {
	if !validHostPort(c.ListenAddress) {
		return ErrInvalidListenAddress
	}
	return nil
}

func validHostPort(address string) bool {
	_, port, err := net.SplitHostPort(address)
	if err != nil {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 0 && n <= 65535
}
