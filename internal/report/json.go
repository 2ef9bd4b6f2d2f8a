package report

import (
	"encoding/json"
	"io"
)

// JSONWriter outputs transcripts in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// includeHTML keeps the sanitized page of every successful step.
	includeHTML bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithHTML includes the sanitized HTML of each visited page.
// Pages can be large, so it is off by default.
func WithHTML(include bool) JSONWriterOption {
	return func(w *JSONWriter) {
		w.includeHTML = include
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the transcript in JSON format.
func (w *JSONWriter) Write(t *Transcript) (int, error) {
	out := *t
	if !w.includeHTML {
		out.Records = withoutHTML(t.Records)
	}
	return w.writeJSON(&out)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	// Trailing newline for terminal output
	data = append(data, '\n')
	return w.output.Write(data)
}

func withoutHTML(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		if r.Success != nil && r.Success.HTML != "" {
			stripped := *r.Success
			stripped.HTML = ""
			r.Envelope = Envelope{Success: &stripped, Failure: r.Failure}
		}
		out[i] = r
	}
	return out
}
