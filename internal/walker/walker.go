package walker

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"time"

	"github.com/nao1215/randomwalker/internal/crawler"
	"github.com/nao1215/randomwalker/internal/fetcher"
	"github.com/nao1215/randomwalker/internal/model"
	"github.com/nao1215/randomwalker/internal/safety"
	"github.com/nao1215/randomwalker/internal/sanitize"
	"github.com/nao1215/randomwalker/internal/weburl"
)

// SafetyEvaluator classifies a resolved candidate URL.
// *safety.Evaluator satisfies this interface.
type SafetyEvaluator interface {
	EvaluateURL(u *url.URL) model.Verdict
}

// Walker resolves the next link of a walk.
//
// A Walker is not safe for concurrent use because its random source is
// not. Reading a shared VisitedSet from several Walkers is fine as long as
// nobody writes to it meanwhile.
type Walker struct {
	fetcher   fetcher.Fetcher
	rng       *rand.Rand
	visited   *weburl.VisitedSet
	evaluator SafetyEvaluator
	logger    *slog.Logger
}

// Option configures a Walker.
type Option func(*Walker)

// WithRand sets the random source used to order candidates.
func WithRand(rng *rand.Rand) Option {
	return func(w *Walker) {
		if rng != nil {
			w.rng = rng
		}
	}
}

// WithSeed seeds a new random source. Equal seeds give equal candidate
// orders for equal input.
func WithSeed(seed uint64) Option {
	return WithRand(NewRand(seed))
}

// WithVisited sets the visited set consulted before and after each
// candidate fetch. The walker never modifies it.
func WithVisited(visited *weburl.VisitedSet) Option {
	return func(w *Walker) {
		w.visited = visited
	}
}

// WithEvaluator replaces the default safety evaluator.
func WithEvaluator(e SafetyEvaluator) Option {
	return func(w *Walker) {
		if e != nil {
			w.evaluator = e
		}
	}
}

// WithLogger sets the logger used to report candidate failures.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewRand returns a PCG-backed random source for seed.
// A zero seed is replaced by the current time.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) //nolint:gosec // not used for security
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // shuffling is not security sensitive
}

// New creates a Walker that fetches pages with f.
func New(f fetcher.Fetcher, opts ...Option) *Walker {
	w := &Walker{
		fetcher:   f,
		evaluator: safety.NewEvaluator(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.rng == nil {
		w.rng = NewRand(0)
	}
	return w
}

// Next resolves a random outbound link of the page at source.
//
// A failure to fetch or parse the source page is returned immediately.
// Candidate failures are logged and the search continues; if no candidate
// succeeds the most recent candidate error is returned, or
// ErrNoNavigableLinks when none was recorded.
func (w *Walker) Next(ctx context.Context, source string) (*model.ResolvedLink, error) {
	src, err := weburl.Validate(source)
	if err != nil {
		return nil, err
	}

	page, err := w.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", src, err)
	}
	if page == nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", src, ErrNoResult)
	}

	documentURL := page.FinalURL
	if documentURL == nil {
		documentURL = src
	}

	candidates, err := crawler.ExtractCandidates(page.Body, documentURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", documentURL, err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoNavigableLinks
	}

	w.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	var lastErr error
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		link, err := w.resolve(ctx, candidate)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			w.logger.Debug("candidate failed",
				slog.String("candidate", candidate.URL.String()),
				slog.String("error", err.Error()))
			lastErr = err
			continue
		}
		if link == nil {
			w.logger.Debug("candidate already visited",
				slog.String("candidate", candidate.URL.String()))
			continue
		}
		return link, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoNavigableLinks
}

// resolve fetches, checks and sanitizes one candidate.
// It returns (nil, nil) when the candidate or its final URL was already visited.
func (w *Walker) resolve(ctx context.Context, candidate model.Candidate) (*model.ResolvedLink, error) {
	if w.visited.Contains(candidate.URL) {
		return nil, nil
	}

	page, err := w.fetcher.Fetch(ctx, candidate.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", candidate.URL, err)
	}
	if page == nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", candidate.URL, ErrNoResult)
	}

	finalURL := page.FinalURL
	if finalURL == nil {
		if finalURL, err = weburl.Validate(candidate.URL.String()); err != nil {
			return nil, err
		}
	}

	if w.visited.Contains(finalURL) {
		return nil, nil
	}

	verdict := w.evaluator.EvaluateURL(finalURL)
	if !verdict.Safe {
		w.logger.Info("safety filter rejected candidate",
			slog.String("url", finalURL.String()),
			slog.String("domain", verdict.Domain),
			slog.Int("score", verdict.Score))
		return nil, &UnsafeURLError{
			URL:     finalURL.String(),
			Reasons: verdict.Reasons,
			Score:   verdict.Score,
			Domain:  verdict.Domain,
		}
	}
	if verdict.HasWarnings() {
		w.logger.Debug("candidate accepted with warnings",
			slog.String("url", finalURL.String()),
			slog.String("domain", verdict.Domain),
			slog.Any("reasons", verdict.Reasons))
	}

	body, err := sanitize.Sanitize(page.Body, finalURL.String())
	if err != nil {
		return nil, fmt.Errorf("failed to sanitize %s: %w", finalURL, err)
	}

	return &model.ResolvedLink{URL: finalURL, Label: candidate.Label, HTML: body}, nil
}
