// Package safety scores candidate URLs against heuristic risk signals.
//
// The evaluation is advisory and purely lexical: no network request is made
// and nothing is cached. Two kinds of signals exist:
//
//   - High-risk flags (bare IPv4 host, suspicious top-level domain) make a
//     URL unsafe no matter what else is found.
//   - Low-weight warnings (plain http, phishing keywords) add one point
//     each and only matter when they exceed MaxSafeScore.
package safety
