package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/randomwalker/internal/fetcher"
	"github.com/nao1215/randomwalker/internal/report"
	"github.com/nao1215/randomwalker/internal/walker"
	"github.com/nao1215/randomwalker/internal/weburl"
)

const (
	// readHeaderTimeout bounds how long a client may take to send headers.
	readHeaderTimeout = 10 * time.Second

	// shutdownTimeout bounds graceful shutdown. Walks in flight after it
	// elapses are cut off.
	shutdownTimeout = 15 * time.Second
)

// Server serves walk requests. Every request gets its own Walker, so
// requests never share random state or visited sets.
type Server struct {
	fetcher   fetcher.Fetcher
	evaluator walker.SafetyEvaluator
	startURL  string
	visited   *weburl.VisitedSet
	logger    *slog.Logger
	mux       *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithStartURL sets the page walked from when a request has no url parameter.
func WithStartURL(raw string) Option {
	return func(s *Server) {
		s.startURL = raw
	}
}

// WithVisited names URLs no request may land on, in addition to the
// request's own visited parameters. Invalid entries are ignored.
func WithVisited(urls ...string) Option {
	return func(s *Server) {
		s.visited = weburl.NewVisitedSet(urls...)
	}
}

// WithEvaluator replaces the walker's default safety evaluator.
func WithEvaluator(e walker.SafetyEvaluator) Option {
	return func(s *Server) {
		s.evaluator = e
	}
}

// WithLogger sets the logger for request and walk logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New wires the handlers onto a mux. Pages are fetched with f.
func New(f fetcher.Fetcher, opts ...Option) *Server {
	s := &Server{
		fetcher: f,
		logger:  slog.Default(),
		mux:     http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// ServeHTTP satisfies the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/walk", s.handleWalk)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWalk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	query := r.URL.Query()
	source := strings.TrimSpace(query.Get("url"))
	if source == "" {
		source = s.startURL
	}

	seed, err := parseSeed(query.Get("seed"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, report.Failure{Error: err.Error(), Code: "invalid_request"})
		return
	}

	opts := []walker.Option{
		walker.WithSeed(seed),
		walker.WithVisited(s.requestVisited(query["visited"])),
		walker.WithLogger(s.logger),
	}
	if s.evaluator != nil {
		opts = append(opts, walker.WithEvaluator(s.evaluator))
	}

	link, err := walker.New(s.fetcher, opts...).Next(r.Context(), source)
	envelope := report.NewEnvelope(link, err)
	if err != nil {
		s.logger.Info("walk failed",
			slog.String("url", source),
			slog.String("code", envelope.Code),
			slog.Any("error", err),
		)
		writeJSON(w, http.StatusUnprocessableEntity, envelope)
		return
	}

	s.logger.Debug("walked", slog.String("from", source), slog.String("to", envelope.URL))
	writeJSON(w, http.StatusOK, envelope)
}

// requestVisited merges the server-wide visited URLs with those of one request.
func (s *Server) requestVisited(urls []string) *weburl.VisitedSet {
	visited := s.visited.Clone()
	for _, raw := range urls {
		visited.AddString(raw)
	}
	return visited
}

// Serve serves on l until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// ListenAndServe listens on the TCP address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, address string) error {
	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", address, err)
	}
	s.logger.Info("listening", slog.String("address", l.Addr().String()))
	return s.Serve(ctx, l)
}

func parseSeed(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	seed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSeed, raw)
	}
	return seed, nil
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeJSON(w, http.StatusMethodNotAllowed, report.Failure{Error: "method not allowed", Code: "method_not_allowed"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
