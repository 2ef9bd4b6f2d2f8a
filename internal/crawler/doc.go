// Package crawler extracts navigable outbound links from HTML documents.
//
// # Components
//
//   - Parser: walks a parsed DOM and produces Candidates in document order
//   - ExtractCandidates: convenience wrapper for an in-memory document
//
// Relative references are resolved against the document's effective base:
// the first <base href> when it points at an http or https URL, otherwise
// the document URL itself. Fragments are dropped, only absolute http and
// https targets survive, and duplicates collapse onto the first occurrence.
//
// # Usage
//
//	parser, err := crawler.NewParser(finalURL)
//	candidates, err := parser.Candidates(strings.NewReader(body))
//
// The parser never fetches anything and never shuffles. Choosing among
// candidates is the walker's job.
package crawler
