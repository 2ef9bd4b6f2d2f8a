package model

// Step is one entry in a walk session's history.
// A step is either a successfully resolved page, or a page annotated with
// the error that occurred while trying to leave it.
type Step struct {
	// URL is the absolute URL of the page.
	URL string `json:"url"`

	// Label is the link text that led to this page. May be empty.
	Label string `json:"label,omitempty"`

	// HTML is the sanitized page content. Empty for the start page until
	// the first step completes.
	HTML string `json:"-"`

	// Error is the last failure observed while stepping away from this page.
	Error string `json:"error,omitempty"`
}

// DisplayLabel returns the label for presentation. The URL is used when the
// link had no label.
func (s Step) DisplayLabel() string {
	if s.Label != "" {
		return s.Label
	}
	return s.URL
}

// Failed reports whether the step carries an error annotation.
func (s Step) Failed() bool {
	return s.Error != ""
}
