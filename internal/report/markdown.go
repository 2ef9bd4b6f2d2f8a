package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
)

// MarkdownWriter outputs transcripts as GitHub Flavored Markdown, with a
// table of steps and alerts for walks the safety filter stopped.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the transcript in Markdown format.
func (w *MarkdownWriter) Write(t *Transcript) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, t)
	w.writeAlert(md, t)
	w.writeSteps(md, t)
	w.writeHistory(md, t)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, t *Transcript) {
	md.H1("Random Walk")
	md.PlainText("")

	seed := "time based"
	if t.Seed != 0 {
		seed = strconv.FormatUint(t.Seed, 10)
	}
	finished := "-"
	if current, ok := t.Current(); ok {
		finished = mdLink(current.DisplayLabel(), current.URL)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Start URL", "`" + t.StartURL + "`"},
			{"Seed", seed},
			{"Started", t.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", t.Duration().Round(time.Millisecond).String()},
			{"Steps", fmt.Sprintf("%d of %d advanced", t.Advanced(), len(t.Records))},
			{"Pages Visited", strconv.Itoa(len(t.Visited))},
			{"Ended On", escapeCell(finished)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, t *Transcript) {
	if halt := t.Halt(); halt != nil && halt.Failure != nil {
		md.Cautionf("Safety filter blocked navigation to `%s`%s: %s",
			halt.BlockedURL, domainSuffix(halt.Failure), strings.Join(halt.Reasons, "; "))
		md.PlainText("")
		return
	}
	if len(t.Records) > 0 && t.Advanced() == 0 {
		md.Warningf("The walk did not leave `%s`.", t.StartURL)
		md.PlainText("")
		return
	}
	if t.Advanced() == len(t.Records) && len(t.Records) > 0 {
		md.Tip("Every step landed on a new page.")
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeSteps(md *markdown.Markdown, t *Transcript) {
	md.H2("Steps")
	md.PlainText("")

	if len(t.Records) == 0 {
		md.PlainText("No steps were taken.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(t.Records))
	for i, r := range t.Records {
		page, detail := "-", "-"
		if r.Success != nil {
			label := r.Label
			if label == "" {
				label = r.URL
			}
			page = mdLink(truncateString(oneLine(label), 60), r.URL)
		}
		if r.Failure != nil {
			detail = "`" + r.Code + "` " + truncateString(oneLine(r.Error), 80)
		}
		rows[i] = []string{strconv.Itoa(r.Attempt), r.Outcome, escapeCell(page), escapeCell(detail)}
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", "Outcome", "Page", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, r := range t.Records {
		if r.Failure != nil && len(r.Reasons) > 0 {
			md.Details(fmt.Sprintf("Step %d: blocked %s", r.Attempt, r.BlockedURL), strings.Join(r.Reasons, "\n"))
		}
	}
}

func (w *MarkdownWriter) writeHistory(md *markdown.Markdown, t *Transcript) {
	md.H2("History")
	md.PlainText("")

	if len(t.History) == 0 {
		md.PlainText("No history recorded.")
		md.PlainText("")
		return
	}

	items := make([]string, len(t.History))
	for i, step := range t.History {
		item := mdLink(oneLine(step.DisplayLabel()), step.URL)
		if i == t.Position {
			item = "**" + item + "** (current)"
		}
		if step.Failed() {
			item += " - " + oneLine(step.Error)
		}
		items[i] = item
	}
	md.BulletList(items...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [randomwalker](https://github.com/nao1215/randomwalker)*")
}

func mdLink(text, target string) string {
	text = strings.NewReplacer("[", `\[`, "]", `\]`).Replace(text)
	target = strings.NewReplacer("(", "%28", ")", "%29", " ", "%20").Replace(target)
	return "[" + text + "](" + target + ")"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
