// Package model defines the core data structures used throughout randomwalker.
//
// This package contains the following main types:
//   - Candidate: An extracted, not-yet-fetched outbound link
//   - ResolvedLink: The fetched and sanitized destination of a chosen candidate
//   - Verdict: The outcome of a safety evaluation
//   - Step: One entry of a walk session's history
//
// Models live in their own package so that crawler, safety, walker, server
// and report can share them without import cycles.
package model
