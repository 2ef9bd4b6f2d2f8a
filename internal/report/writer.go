package report

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Writer writes a walk transcript in one output format.
type Writer interface {
	// Write outputs the transcript and returns the number of bytes written.
	Write(t *Transcript) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// truncateString shortens s to at most maxLen runes, ending with "...".
func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// oneLine collapses whitespace so a value fits on a single line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// domainSuffix returns " (domain)" for a blocked failure with a known
// registrable domain.
func domainSuffix(f *Failure) string {
	if f.Domain == "" {
		return ""
	}
	return " (" + f.Domain + ")"
}
