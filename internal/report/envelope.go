package report

import (
	"errors"

	"github.com/nao1215/randomwalker/internal/model"
	"github.com/nao1215/randomwalker/internal/walker"
)

// Envelope is the result of one walk step as seen by callers.
// Exactly one of Success and Failure is set. Both are embedded so that the
// JSON form is flat: {"url","label","html"} or {"error","code",...}.
type Envelope struct {
	*Success
	*Failure
}

// Success describes the page a step landed on.
type Success struct {
	URL   string `json:"url"`
	Label string `json:"label"`
	// HTML is the sanitized page. Omitted from transcripts unless requested.
	HTML string `json:"html,omitempty"`
}

// Failure describes why a step did not land anywhere.
type Failure struct {
	// Error is the human-readable failure message.
	Error string `json:"error"`

	// Code is one of walk_failed, unsafe_url or no_navigable_links.
	Code string `json:"code"`

	// Unsafe, Reasons, BlockedURL and Domain are set when the safety
	// filter refused the destination.
	Unsafe     bool     `json:"unsafe,omitempty"`
	Reasons    []string `json:"reasons,omitempty"`
	BlockedURL string   `json:"blocked_url,omitempty"`
	Domain     string   `json:"domain,omitempty"`
}

// NewEnvelope builds the envelope for a walk result. A non-nil err wins
// over link; a nil link without an error is reported as a dead end.
func NewEnvelope(link *model.ResolvedLink, err error) Envelope {
	if err == nil && (link == nil || link.URL == nil) {
		err = walker.ErrNoNavigableLinks
	}
	if err != nil {
		return Envelope{Failure: newFailure(err)}
	}
	return Envelope{Success: &Success{
		URL:   link.URL.String(),
		Label: link.Label,
		HTML:  link.HTML,
	}}
}

// OK reports whether the envelope describes a successful step.
func (e Envelope) OK() bool {
	return e.Success != nil
}

func newFailure(err error) *Failure {
	f := &Failure{
		Error: err.Error(),
		Code:  walker.Classify(err).Code(),
	}
	var unsafe *walker.UnsafeURLError
	if errors.As(err, &unsafe) {
		f.Unsafe = true
		f.Reasons = unsafe.Reasons
		f.BlockedURL = unsafe.URL
		f.Domain = unsafe.Domain
	}
	return f
}
