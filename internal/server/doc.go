// Package server exposes the walker over HTTP.
//
// GET /walk?url=X resolves one random outbound link of X and answers with a
// report.Envelope: 200 with {"url","label","html"} on success, 422 with
// {"error","code",...} when the walk fails. Repeated visited parameters name
// URLs the walk must avoid, and seed makes the choice reproducible.
package server
