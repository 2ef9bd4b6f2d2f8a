package model

import "net/url"

// Candidate is an outbound link extracted from a page but not yet fetched.
//
// Identity is the URL only. Two anchors resolving to the same URL produce a
// single Candidate carrying the label of the first anchor.
type Candidate struct {
	// URL is an absolute http or https URL without a fragment.
	URL *url.URL

	// Label is the anchor's whitespace-collapsed visible text, or its title
	// attribute when the text is empty. Empty means the anchor had neither.
	Label string
}

// ResolvedLink is the result of one walk step: the final, post-redirect
// destination of a candidate together with its display-safe HTML.
type ResolvedLink struct {
	// URL is the final URL after following redirects. It may differ from
	// the URL found in the source page.
	URL *url.URL

	// Label is copied from the candidate that produced this link.
	Label string

	// HTML is the sanitized document, safe for inert embedding.
	// It always carries a <base> element pointing at URL.
	HTML string
}

// String returns the final URL as a string, or an empty string for a nil URL.
func (r *ResolvedLink) String() string {
	if r == nil || r.URL == nil {
		return ""
	}
	return r.URL.String()
}
