package walker

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/nao1215/randomwalker/internal/fetcher"
)

// site is an in-memory web used as a Fetcher stub.
type site struct {
	pages     map[string]string
	redirects map[string]string
	errs      map[string]error

	mu      sync.Mutex
	fetched []string
}

func newSite() *site {
	return &site{
		pages:     make(map[string]string),
		redirects: make(map[string]string),
		errs:      make(map[string]error),
	}
}

// page registers a document at rawURL linking to hrefs.
func (s *site) page(rawURL string, hrefs ...string) *site {
	var b strings.Builder
	b.WriteString("<html><head><title>t</title></head><body>")
	for i, href := range hrefs {
		fmt.Fprintf(&b, `<a href="%s">link %d</a>`, href, i)
	}
	b.WriteString("</body></html>")
	s.pages[rawURL] = b.String()
	return s
}

func (s *site) Fetch(_ context.Context, u *url.URL) (*fetcher.Result, error) {
	key := u.String()

	s.mu.Lock()
	s.fetched = append(s.fetched, key)
	s.mu.Unlock()

	if err, ok := s.errs[key]; ok {
		return nil, &fetcher.FetchError{URL: key, Err: err}
	}

	final := key
	if target, ok := s.redirects[key]; ok {
		final = target
	}
	body, ok := s.pages[final]
	if !ok {
		return nil, &fetcher.FetchError{URL: key, Err: &fetcher.StatusError{Code: 404, Reason: "Not Found"}}
	}

	finalURL, err := url.Parse(final)
	if err != nil {
		return nil, err
	}
	return &fetcher.Result{Body: body, FinalURL: finalURL}, nil
}

func (s *site) fetchLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.fetched))
	copy(out, s.fetched)
	return out
}
