// Package report renders walk results.
//
// Envelope is the JSON shape of a single walk step, shared by the HTTP
// server and the CLI. Transcript records a whole walk session and is written
// by JSONWriter, MarkdownWriter or SimpleWriter.
package report
