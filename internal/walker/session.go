package walker

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/randomwalker/internal/model"
	"github.com/nao1215/randomwalker/internal/weburl"
)

// DefaultMaxFailureStreak is the number of consecutive dead ends after
// which a session skips back one extra page.
const DefaultMaxFailureStreak = 5

// Messages attached to history entries.
const (
	MessageSteppedBack   = "No links here. Returned to a previous page."
	MessageNoLinks       = "No links found on the current page."
	MessageSkipped       = "Skipping page after repeated failures."
	messageBlockedPrefix = "Safety filter blocked navigation: "
)

// StepOutcome describes what a Session.Step did to the session.
type StepOutcome int

const (
	// OutcomeAdvanced means a new page was pushed onto the history.
	OutcomeAdvanced StepOutcome = iota
	// OutcomeSteppedBack means the current page was a dead end and the
	// session moved back to retry from the previous page.
	OutcomeSteppedBack
	// OutcomeStuck means the current page was a dead end with no previous
	// page to return to.
	OutcomeStuck
	// OutcomeFailed means the step failed for another reason; the session
	// stays on the current page.
	OutcomeFailed
	// OutcomeHalted means the safety filter blocked navigation. Automatic
	// stepping must stop.
	OutcomeHalted
)

// String implements fmt.Stringer.
func (o StepOutcome) String() string {
	switch o {
	case OutcomeAdvanced:
		return "advanced"
	case OutcomeSteppedBack:
		return "stepped back"
	case OutcomeStuck:
		return "stuck"
	case OutcomeFailed:
		return "failed"
	case OutcomeHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// Session is the navigation state of one walk: a history stack with a
// current position, the set of visited URLs and the dead-end streak.
//
// The session owns the Walker it was created with and grows the walker's
// visited set after every accepted step. A Session is not safe for
// concurrent use.
type Session struct {
	walker           *Walker
	visited          *weburl.VisitedSet
	history          []model.Step
	position         int
	failureStreak    int
	maxFailureStreak int
	logger           *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithMaxFailureStreak sets how many consecutive dead ends trigger an extra
// step back. Non-positive values keep the default.
func WithMaxFailureStreak(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.maxFailureStreak = n
		}
	}
}

// WithSessionLogger sets the logger used for step reporting.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession starts a walk at start. The start page becomes the first
// history entry and is marked visited.
func NewSession(start string, w *Walker, opts ...SessionOption) (*Session, error) {
	u, err := weburl.Validate(start)
	if err != nil {
		return nil, err
	}

	if w.visited == nil {
		w.visited = weburl.NewVisitedSet()
	}
	w.visited.Add(u)

	s := &Session{
		walker:           w,
		visited:          w.visited,
		history:          []model.Step{{URL: u.String()}},
		position:         0,
		maxFailureStreak: DefaultMaxFailureStreak,
		logger:           w.logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Step resolves the next link from the current page and updates the
// session. The returned error is the walk failure, nil on OutcomeAdvanced.
func (s *Session) Step(ctx context.Context) (StepOutcome, error) {
	current := s.Current()

	link, err := s.walker.Next(ctx, current.URL)
	if err == nil {
		s.push(model.Step{URL: link.URL.String(), Label: link.Label, HTML: link.HTML})
		s.visited.Add(link.URL)
		s.failureStreak = 0
		s.logger.Debug("walked", slog.String("from", current.URL), slog.String("to", link.URL.String()))
		return OutcomeAdvanced, nil
	}

	if ctx.Err() != nil {
		return OutcomeFailed, err
	}

	switch Classify(err) {
	case FailureUnsafe:
		s.annotate(s.position, blockedMessage(err))
		return OutcomeHalted, err

	case FailureNoLinks:
		deadEnd := s.position
		movedBack := s.Back()
		message := MessageNoLinks
		if movedBack {
			message = MessageSteppedBack
		}
		s.failureStreak++
		s.annotate(deadEnd, message)

		if s.failureStreak >= s.maxFailureStreak && s.Back() {
			s.annotate(s.position+1, MessageSkipped)
			s.failureStreak = 0
		}

		if movedBack {
			return OutcomeSteppedBack, err
		}
		return OutcomeStuck, err

	default:
		s.failureStreak++
		s.annotate(s.position, err.Error())
		return OutcomeFailed, err
	}
}

// AutoReport is passed to the Auto callback after every step.
type AutoReport struct {
	// Attempt is the 1-based number of the step.
	Attempt int
	// Outcome is what the step did.
	Outcome StepOutcome
	// Err is the step's failure, nil when it advanced.
	Err error
	// Current is the entry at the session's position after the step.
	Current model.Step
}

// Auto performs up to steps walk steps, waiting interval between them.
// After a step back it retries at once. It stops early when the safety
// filter halts the walk or when a dead end has no previous page, returning
// that step's error. A cancelled context stops it with the context's error.
func (s *Session) Auto(ctx context.Context, steps int, interval time.Duration, onStep func(AutoReport)) error {
	for attempt := 1; attempt <= steps; attempt++ {
		outcome, err := s.Step(ctx)
		if onStep != nil {
			onStep(AutoReport{Attempt: attempt, Outcome: outcome, Err: err, Current: s.Current()})
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		switch outcome {
		case OutcomeHalted, OutcomeStuck:
			return err
		case OutcomeSteppedBack:
			continue
		}

		if attempt < steps && interval > 0 {
			if err := sleep(ctx, interval); err != nil {
				return err
			}
		}
	}
	return nil
}

// Back moves to the previous history entry. It reports false when the
// session is already at the first entry.
func (s *Session) Back() bool {
	if s.position <= 0 {
		return false
	}
	s.position--
	return true
}

// Current returns the entry at the current position.
func (s *Session) Current() model.Step {
	return s.history[s.position]
}

// Position returns the index of the current entry in History.
func (s *Session) Position() int {
	return s.position
}

// History returns a copy of the history stack, oldest first.
func (s *Session) History() []model.Step {
	out := make([]model.Step, len(s.history))
	copy(out, s.history)
	return out
}

// Visited returns the canonical URLs visited so far, sorted.
func (s *Session) Visited() []string {
	return s.visited.Strings()
}

// push appends entry after the current position. Entries ahead of the
// position are discarded, except those carrying an error, which move to
// the tail so failures stay visible.
func (s *Session) push(entry model.Step) {
	insertAt := s.position + 1
	if insertAt < len(s.history) {
		tail := s.history[insertAt:]
		kept := s.history[:insertAt:insertAt]
		for _, item := range tail {
			if item.Failed() {
				kept = append(kept, item)
			}
		}
		s.history = kept
	}
	s.history = append(s.history, entry)
	s.position = len(s.history) - 1
}

func (s *Session) annotate(index int, message string) {
	if index < 0 || index >= len(s.history) {
		return
	}
	s.history[index].Error = message
}

func blockedMessage(err error) string {
	var unsafe *UnsafeURLError
	if errors.As(err, &unsafe) && len(unsafe.Reasons) > 0 {
		return messageBlockedPrefix + strings.Join(unsafe.Reasons, "; ")
	}
	return err.Error()
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
