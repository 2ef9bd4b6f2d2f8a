// Package walker resolves the next page of a random walk.
//
// A Walker fetches a source page, extracts its outbound links, shuffles
// them with an injected random source and tries them one at a time until a
// candidate can be fetched, passes the safety filter and is sanitized. The
// first success wins. Candidate failures are recorded and the most recent
// one is reported if every candidate fails.
//
// A Session layers navigation state on top of a Walker: a history stack,
// the visited set, step-back on dead ends and auto-stepping.
//
// Candidates are resolved sequentially. One Next call is bounded by the
// number of candidates times the hop budget times the per-hop timeouts;
// there is no overall deadline beyond the caller's context.
package walker
