package weburl

import (
	"net/url"
	"slices"
	"strings"
)

// Canonical returns the identity key of u used by the visited set.
//
// The scheme and host are lowercased, a default port (80 for http, 443 for
// https) is dropped, userinfo and the fragment are removed, and an empty
// path becomes "/".
// The query is kept verbatim. Canonical returns an empty string for nil.
func Canonical(u *url.URL) string {
	if u == nil {
		return ""
	}

	c := *u
	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = strings.ToLower(c.Host)
	c.User = nil
	c.Fragment = ""
	c.RawFragment = ""

	if port := c.Port(); (c.Scheme == "http" && port == "80") || (c.Scheme == "https" && port == "443") {
		c.Host = c.Hostname()
		if strings.Contains(c.Host, ":") {
			c.Host = "[" + c.Host + "]"
		}
	}

	if c.Path == "" && c.RawPath == "" && c.Opaque == "" {
		c.Path = "/"
	}
	return c.String()
}

// CanonicalString validates raw and returns its canonical form.
func CanonicalString(raw string) (string, error) {
	u, err := Validate(raw)
	if err != nil {
		return "", err
	}
	return Canonical(u), nil
}

// VisitedSet is a set of canonical URL strings owned by the caller.
//
// Concurrent calls to Contains are safe. Writes (Add, AddString) must be
// serialized by the caller and must not overlap with readers.
type VisitedSet struct {
	entries map[string]struct{}
}

// NewVisitedSet builds a set from raw URL strings.
// Entries that fail validation are ignored, since they can never match a
// URL produced by a walk.
func NewVisitedSet(urls ...string) *VisitedSet {
	s := &VisitedSet{entries: make(map[string]struct{}, len(urls))}
	for _, raw := range urls {
		s.AddString(raw)
	}
	return s
}

// Contains reports whether the canonical form of u is in the set.
// A nil set contains nothing.
func (s *VisitedSet) Contains(u *url.URL) bool {
	if s == nil || u == nil {
		return false
	}
	_, ok := s.entries[Canonical(u)]
	return ok
}

// Add inserts u into the set.
func (s *VisitedSet) Add(u *url.URL) {
	if u == nil {
		return
	}
	if s.entries == nil {
		s.entries = make(map[string]struct{})
	}
	s.entries[Canonical(u)] = struct{}{}
}

// AddString validates raw and inserts it. It reports whether raw was valid.
func (s *VisitedSet) AddString(raw string) bool {
	key, err := CanonicalString(raw)
	if err != nil {
		return false
	}
	if s.entries == nil {
		s.entries = make(map[string]struct{})
	}
	s.entries[key] = struct{}{}
	return true
}

// Len returns the number of entries.
func (s *VisitedSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Clone returns an independent copy of the set.
func (s *VisitedSet) Clone() *VisitedSet {
	c := &VisitedSet{entries: make(map[string]struct{}, s.Len())}
	if s == nil {
		return c
	}
	for k := range s.entries {
		c.entries[k] = struct{}{}
	}
	return c
}

// Strings returns the canonical entries in sorted order.
func (s *VisitedSet) Strings() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.entries))
	for k := range s.entries {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
