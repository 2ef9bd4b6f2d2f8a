package report

import (
	"time"

	"github.com/nao1215/randomwalker/internal/model"
	"github.com/nao1215/randomwalker/internal/walker"
)

// Record is one attempted step of a walk.
type Record struct {
	// Attempt is the 1-based attempt number.
	Attempt int `json:"attempt"`

	// Outcome is the walker.StepOutcome in words.
	Outcome string `json:"outcome"`

	Envelope
}

// Transcript records a walk session for reporting.
type Transcript struct {
	StartURL   string    `json:"start_url"`
	Seed       uint64    `json:"seed,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Records holds every attempted step in order.
	Records []Record `json:"steps"`

	// History is the session's history stack when the walk ended.
	History []model.Step `json:"history"`

	// Position is the index of the current page in History.
	Position int `json:"position"`

	// Visited lists the canonical URLs the session visited.
	Visited []string `json:"visited"`
}

// NewTranscript starts a transcript for a walk from startURL.
func NewTranscript(startURL string, seed uint64) *Transcript {
	return &Transcript{
		StartURL:  startURL,
		Seed:      seed,
		StartedAt: time.Now(),
		Records:   []Record{},
		History:   []model.Step{},
		Visited:   []string{},
	}
}

// Add records the report of one session step.
func (t *Transcript) Add(r walker.AutoReport) {
	record := Record{Attempt: r.Attempt, Outcome: r.Outcome.String()}
	if r.Err == nil && r.Outcome == walker.OutcomeAdvanced {
		record.Envelope = Envelope{Success: &Success{
			URL:   r.Current.URL,
			Label: r.Current.Label,
			HTML:  r.Current.HTML,
		}}
	} else {
		record.Envelope = NewEnvelope(nil, r.Err)
	}
	t.Records = append(t.Records, record)
}

// Finish captures the final state of the session.
func (t *Transcript) Finish(s *walker.Session) {
	t.FinishedAt = time.Now()
	if s == nil {
		return
	}
	t.History = s.History()
	t.Position = s.Position()
	t.Visited = s.Visited()
}

// Current returns the page the walk ended on. ok is false when the
// transcript has no history.
func (t *Transcript) Current() (step model.Step, ok bool) {
	if t.Position < 0 || t.Position >= len(t.History) {
		return model.Step{}, false
	}
	return t.History[t.Position], true
}

// Advanced returns the number of steps that landed on a new page.
func (t *Transcript) Advanced() int {
	n := 0
	for _, r := range t.Records {
		if r.OK() {
			n++
		}
	}
	return n
}

// Halt returns the record that stopped the walk because the safety filter
// refused navigation, or nil.
func (t *Transcript) Halt() *Record {
	for i := range t.Records {
		if t.Records[i].Outcome == walker.OutcomeHalted.String() {
			return &t.Records[i]
		}
	}
	return nil
}

// Duration returns how long the walk took.
func (t *Transcript) Duration() time.Duration {
	if t.FinishedAt.IsZero() {
		return 0
	}
	return t.FinishedAt.Sub(t.StartedAt)
}
