package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// SimpleWriter outputs human-readable plain text for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds the failure annotations of every history entry.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the transcript in human-readable format.
func (w *SimpleWriter) Write(t *Transcript) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, t)
	w.writeSteps(&sb, t)
	w.writeHistory(&sb, t)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, t *Transcript) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                           RANDOM WALK\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Start URL: %s\n", t.StartURL)
	if t.Seed != 0 {
		fmt.Fprintf(sb, "Seed:      %d\n", t.Seed)
	}
	fmt.Fprintf(sb, "Started:   %s\n", t.StartedAt.Format("2006-01-02 15:04:05 MST"))
	if !t.FinishedAt.IsZero() {
		fmt.Fprintf(sb, "Duration:  %s\n", t.Duration().Round(time.Millisecond))
	}
	fmt.Fprintf(sb, "Steps:     %d of %d advanced\n", t.Advanced(), len(t.Records))
	fmt.Fprintf(sb, "Visited:   %d pages\n", len(t.Visited))
	if halt := t.Halt(); halt != nil && halt.Failure != nil {
		fmt.Fprintf(sb, "Status:    HALTED - blocked %s%s\n", halt.BlockedURL, domainSuffix(halt.Failure))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSteps(sb *strings.Builder, t *Transcript) {
	writeSection(sb, "STEPS")

	if len(t.Records) == 0 {
		sb.WriteString("  No steps were taken\n\n")
		return
	}

	for _, r := range t.Records {
		fmt.Fprintf(sb, "  %3d. [%s] ", r.Attempt, r.Outcome)
		switch {
		case r.Success != nil:
			if r.Label != "" {
				fmt.Fprintf(sb, "%s\n       %s\n", truncateString(oneLine(r.Label), 60), r.URL)
			} else {
				fmt.Fprintf(sb, "%s\n", r.URL)
			}
		case r.Failure != nil:
			fmt.Fprintf(sb, "%s\n", oneLine(r.Error))
			for _, reason := range r.Reasons {
				fmt.Fprintf(sb, "       ! %s\n", reason)
			}
		default:
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeHistory(sb *strings.Builder, t *Transcript) {
	if len(t.History) == 0 {
		return
	}
	writeSection(sb, "HISTORY")

	for i, step := range t.History {
		marker := " "
		if i == t.Position {
			marker = ">"
		}
		fmt.Fprintf(sb, "  %s %s\n", marker, step.URL)
		if w.verbose && step.Failed() {
			fmt.Fprintf(sb, "      %s\n", step.Error)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by randomwalker\n")
	sb.WriteString("https://github.com/nao1215/randomwalker\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}
