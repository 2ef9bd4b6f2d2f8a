package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/nao1215/randomwalker/internal/weburl"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

// Default fetch settings.
const (
	// DefaultMaxRedirects is the hop budget of a single Fetch. It counts the
	// requests that may be issued, so a chain of N redirects succeeds only
	// when N < DefaultMaxRedirects.
	DefaultMaxRedirects = 5

	// DefaultOpenTimeout bounds connection establishment, TLS included.
	DefaultOpenTimeout = 5 * time.Second

	// DefaultReadTimeout bounds waiting for and reading one response.
	DefaultReadTimeout = 5 * time.Second

	// DefaultMaxBodySize caps the number of decoded bytes kept from a
	// response body. Longer bodies are truncated.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultUserAgent identifies randomwalker in HTTP requests.
	DefaultUserAgent = "randomwalker/1.0 (+https://github.com/nao1215/randomwalker)"
)

// Fetcher retrieves a page and reports where it finally came from.
type Fetcher interface {
	Fetch(ctx context.Context, u *url.URL) (*Result, error)
}

// FetcherFunc adapts an ordinary function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, u *url.URL) (*Result, error)

// Fetch calls f(ctx, u).
func (f FetcherFunc) Fetch(ctx context.Context, u *url.URL) (*Result, error) {
	return f(ctx, u)
}

// Result is the outcome of a successful fetch.
type Result struct {
	// Body is the response body decoded to UTF-8.
	Body string

	// FinalURL is the URL that produced Body. It differs from the requested
	// URL when redirects were followed.
	FinalURL *url.URL
}

// HTTPFetcher is the production Fetcher backed by net/http.
// It is safe for concurrent use.
type HTTPFetcher struct {
	client       *http.Client
	logger       *slog.Logger
	limiter      *rate.Limiter
	userAgent    string
	maxRedirects int
	maxBodySize  int64
	openTimeout  time.Duration
	readTimeout  time.Duration
	proxyAddress string
	rps          float64
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithTimeouts sets the connect and read timeouts applied to every hop.
// Non-positive values keep the defaults.
func WithTimeouts(open, read time.Duration) Option {
	return func(f *HTTPFetcher) {
		if open > 0 {
			f.openTimeout = open
		}
		if read > 0 {
			f.readTimeout = read
		}
	}
}

// WithMaxRedirects sets the hop budget. Non-positive values keep the default.
func WithMaxRedirects(n int) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxRedirects = n
		}
	}
}

// WithMaxBodySize sets the body cap in bytes. Non-positive values keep the default.
func WithMaxBodySize(n int64) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithProxy routes all connections through a SOCKS5 proxy in "host:port"
// format. An empty address means direct connections.
func WithProxy(address string) Option {
	return func(f *HTTPFetcher) {
		f.proxyAddress = strings.TrimSpace(address)
	}
}

// WithRateLimit limits outgoing requests to rps per second. Every hop of a
// redirect chain consumes one token. Zero or negative disables pacing.
func WithRateLimit(rps float64) Option {
	return func(f *HTTPFetcher) {
		f.rps = rps
	}
}

// WithLogger sets the logger used for per-hop debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(f *HTTPFetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates an HTTPFetcher. It fails only when the proxy address is malformed.
func New(opts ...Option) (*HTTPFetcher, error) {
	f := &HTTPFetcher{
		logger:       slog.Default(),
		userAgent:    DefaultUserAgent,
		maxRedirects: DefaultMaxRedirects,
		maxBodySize:  DefaultMaxBodySize,
		openTimeout:  DefaultOpenTimeout,
		readTimeout:  DefaultReadTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	dialer := &net.Dialer{Timeout: f.openTimeout, KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   f.openTimeout,
		ResponseHeaderTimeout: f.readTimeout,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		// Accept-Encoding is set by hand and bodies are decoded in readBody.
		DisableCompression: true,
	}

	if f.proxyAddress != "" {
		dial, err := socksDialContext(f.proxyAddress, dialer)
		if err != nil {
			return nil, err
		}
		transport.DialContext = dial
	}

	if f.rps > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(f.rps), 1)
	}

	f.client = &http.Client{
		Transport: transport,
		Timeout:   f.openTimeout + f.readTimeout,
		CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return f, nil
}

// Fetch issues a GET for u and follows redirects within the hop budget.
// Every failure is returned as a *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, u *url.URL) (*Result, error) {
	if err := weburl.Check(u); err != nil {
		raw := ""
		if u != nil {
			raw = u.String()
		}
		return nil, &FetchError{URL: raw, Err: err}
	}

	requested := u.String()
	current := u
	for remaining := f.maxRedirects; ; remaining-- {
		if remaining <= 0 {
			return nil, &FetchError{URL: requested, Err: ErrTooManyRedirects}
		}

		next, result, err := f.hop(ctx, current)
		if err != nil {
			return nil, &FetchError{URL: requested, Err: err}
		}
		if result != nil {
			return result, nil
		}

		f.logger.Debug("following redirect",
			slog.String("from", current.String()),
			slog.String("to", next.String()),
			slog.Int("remaining", remaining-1))
		current = next
	}
}

// hop performs a single request. Exactly one of next and result is set on
// success: next for a redirect, result for a 2xx response.
func (f *HTTPFetcher) hop(ctx context.Context, current *url.URL) (next *url.URL, result *Result, err error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, current.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := f.readBody(resp)
		if err != nil {
			return nil, nil, err
		}
		return nil, &Result{Body: body, FinalURL: current}, nil

	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		drain(resp.Body)
		location := strings.TrimSpace(resp.Header.Get("Location"))
		if location == "" {
			return nil, nil, ErrRedirectWithoutLocation
		}
		target, err := current.Parse(location)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redirect location %q: %w", location, err)
		}
		if !weburl.IsWebScheme(target.Scheme) {
			return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedRedirectScheme, target.Scheme)
		}
		if target.Hostname() == "" {
			return nil, nil, fmt.Errorf("invalid redirect location %q: missing host", location)
		}
		return target, nil, nil

	default:
		drain(resp.Body)
		return nil, nil, &StatusError{Code: resp.StatusCode, Reason: reasonPhrase(resp)}
	}
}

// readBody decompresses, caps and decodes the response body to UTF-8.
func (f *HTTPFetcher) readBody(resp *http.Response) (string, error) {
	reader := io.Reader(resp.Body)

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	limited := io.LimitReader(reader, f.maxBodySize)
	decoded, err := charset.NewReader(limited, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}

	body, err := io.ReadAll(decoded)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

// reasonPhrase extracts "Not Found" from a status line like "404 Not Found",
// falling back to the standard text for the code.
func reasonPhrase(resp *http.Response) string {
	if reason, ok := strings.CutPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); ok && reason != "" {
		return reason
	}
	return http.StatusText(resp.StatusCode)
}

// drain discards a bounded amount of the body so the connection can be reused.
func drain(body io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
}
