package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/randomwalker/internal/fetcher"
	"github.com/nao1215/randomwalker/internal/model"
	"github.com/nao1215/randomwalker/internal/walker"
)

func decode(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	return out
}

func TestNewEnvelope(t *testing.T) {
	t.Parallel()

	t.Run("success carries url, label and html", func(t *testing.T) {
		t.Parallel()

		u, _ := url.Parse("https://example.com/final")
		env := NewEnvelope(&model.ResolvedLink{URL: u, Label: "Final", HTML: "<html></html>"}, nil)
		if !env.OK() {
			t.Fatal("expected OK envelope")
		}

		got := decode(t, env)
		if got["url"] != "https://example.com/final" || got["label"] != "Final" || got["html"] != "<html></html>" {
			t.Errorf("unexpected success envelope: %v", got)
		}
		if _, ok := got["error"]; ok {
			t.Errorf("success envelope must not carry error: %v", got)
		}
	})

	t.Run("empty label is still present", func(t *testing.T) {
		t.Parallel()

		u, _ := url.Parse("https://example.com/")
		got := decode(t, NewEnvelope(&model.ResolvedLink{URL: u, HTML: "x"}, nil))
		if label, ok := got["label"]; !ok || label != "" {
			t.Errorf("expected empty label key, got %v", got)
		}
	})

	t.Run("unsafe failure exposes reasons and blocked url", func(t *testing.T) {
		t.Parallel()

		err := &walker.UnsafeURLError{
			URL:     "https://phish.zip/form",
			Reasons: []string{"Suspicious top-level domain"},
			Score:   100,
			Domain:  "phish.zip",
		}
		env := NewEnvelope(nil, fmt.Errorf("step: %w", err))
		if env.OK() {
			t.Fatal("expected failure envelope")
		}

		got := decode(t, env)
		if got["code"] != "unsafe_url" || got["unsafe"] != true || got["blocked_url"] != "https://phish.zip/form" {
			t.Errorf("unexpected unsafe envelope: %v", got)
		}
		if got["domain"] != "phish.zip" {
			t.Errorf("expected registrable domain, got %v", got["domain"])
		}
		reasons, ok := got["reasons"].([]any)
		if !ok || len(reasons) != 1 || reasons[0] != "Suspicious top-level domain" {
			t.Errorf("unexpected reasons: %v", got["reasons"])
		}
		if _, ok := got["url"]; ok {
			t.Errorf("failure envelope must not carry url: %v", got)
		}
	})

	t.Run("no navigable links", func(t *testing.T) {
		t.Parallel()

		got := decode(t, NewEnvelope(nil, walker.ErrNoNavigableLinks))
		if got["code"] != "no_navigable_links" || got["error"] != "no navigable links found" {
			t.Errorf("unexpected envelope: %v", got)
		}
		if _, ok := got["unsafe"]; ok {
			t.Errorf("dead end must not be flagged unsafe: %v", got)
		}
	})

	t.Run("generic failure", func(t *testing.T) {
		t.Parallel()

		got := decode(t, NewEnvelope(nil, errors.New("failed to fetch https://example.com/: boom")))
		if got["code"] != "walk_failed" || got["error"] != "failed to fetch https://example.com/: boom" {
			t.Errorf("unexpected envelope: %v", got)
		}
	})

	t.Run("nil link without error is a dead end", func(t *testing.T) {
		t.Parallel()

		env := NewEnvelope(nil, nil)
		if env.OK() || env.Code != "no_navigable_links" {
			t.Errorf("unexpected envelope: %+v", env.Failure)
		}
	})
}

// walkSite runs a real session over an in-memory site:
// / -> /a, and /a has no links, so the second step steps back.
func walkSite(t *testing.T, steps int) *Transcript {
	t.Helper()

	pages := map[string]string{
		"https://example.com/":  `<a href="/a">Page A</a>`,
		"https://example.com/a": `<p>dead end</p>`,
	}
	f := fetcher.FetcherFunc(func(_ context.Context, u *url.URL) (*fetcher.Result, error) {
		body, ok := pages[u.String()]
		if !ok {
			return nil, fmt.Errorf("not found: %s", u)
		}
		return &fetcher.Result{Body: body, FinalURL: u}, nil
	})

	w := walker.New(f, walker.WithSeed(7))
	session, err := walker.NewSession("https://example.com/", w)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	tr := NewTranscript("https://example.com/", 7)
	_ = session.Auto(t.Context(), steps, 0, tr.Add)
	tr.Finish(session)
	return tr
}

func TestTranscript(t *testing.T) {
	t.Parallel()

	tr := walkSite(t, 2)

	if len(tr.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(tr.Records))
	}
	first, second := tr.Records[0], tr.Records[1]
	if !first.OK() || first.URL != "https://example.com/a" || first.Label != "Page A" {
		t.Errorf("unexpected first record: %+v", first.Success)
	}
	if first.HTML == "" {
		t.Error("first record should carry sanitized HTML")
	}
	if second.OK() || second.Outcome != walker.OutcomeSteppedBack.String() || second.Code != "no_navigable_links" {
		t.Errorf("unexpected second record: %+v %+v", second, second.Failure)
	}

	if tr.Advanced() != 1 {
		t.Errorf("Advanced() = %d, want 1", tr.Advanced())
	}
	if tr.Halt() != nil {
		t.Error("walk should not be halted")
	}
	if len(tr.History) != 2 || tr.Position != 0 {
		t.Errorf("unexpected history %v at %d", tr.History, tr.Position)
	}
	if current, ok := tr.Current(); !ok || current.URL != "https://example.com/" {
		t.Errorf("Current() = %+v, %v", current, ok)
	}
	if len(tr.Visited) != 2 {
		t.Errorf("expected 2 visited pages, got %v", tr.Visited)
	}
	if tr.Duration() < 0 {
		t.Errorf("negative duration %v", tr.Duration())
	}
}

func haltedTranscript() *Transcript {
	tr := NewTranscript("https://example.com/", 0)
	tr.StartedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tr.Add(walker.AutoReport{
		Attempt: 1,
		Outcome: walker.OutcomeAdvanced,
		Current: model.Step{URL: "https://example.com/next", Label: "Next | page", HTML: "<p>next</p>"},
	})
	tr.Add(walker.AutoReport{
		Attempt: 2,
		Outcome: walker.OutcomeHalted,
		Err: &walker.UnsafeURLError{
			URL:     "https://192.168.0.1/login",
			Reasons: []string{"IP address hosts are blocked", "Contains suspicious terms: login"},
		},
	})
	tr.History = []model.Step{
		{URL: "https://example.com/"},
		{URL: "https://example.com/next", Label: "Next | page", Error: "Safety filter blocked navigation: IP address hosts are blocked"},
	}
	tr.Position = 1
	tr.Visited = []string{"https://example.com/", "https://example.com/next"}
	tr.FinishedAt = tr.StartedAt.Add(1500 * time.Millisecond)
	return tr
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("omits html by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		tr := haltedTranscript()
		if _, err := NewJSONWriter(&buf).Write(tr); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if strings.Contains(buf.String(), `"html"`) {
			t.Errorf("html should be omitted: %s", buf.String())
		}
		if tr.Records[0].HTML != "<p>next</p>" {
			t.Error("writer must not modify the transcript")
		}

		var got struct {
			StartURL string           `json:"start_url"`
			Steps    []map[string]any `json:"steps"`
			History  []map[string]any `json:"history"`
			Position int              `json:"position"`
		}
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
		if got.StartURL != "https://example.com/" || len(got.Steps) != 2 || got.Position != 1 {
			t.Errorf("unexpected transcript: %+v", got)
		}
		if got.Steps[0]["outcome"] != "advanced" || got.Steps[0]["url"] != "https://example.com/next" {
			t.Errorf("unexpected first step: %v", got.Steps[0])
		}
		if got.Steps[1]["code"] != "unsafe_url" || got.Steps[1]["blocked_url"] != "https://192.168.0.1/login" {
			t.Errorf("unexpected second step: %v", got.Steps[1])
		}
		if got.History[1]["error"] == nil {
			t.Errorf("history entry should carry its annotation: %v", got.History[1])
		}
	})

	t.Run("includes html on request", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithHTML(true)).Write(haltedTranscript()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		var got struct {
			Steps []map[string]any `json:"steps"`
		}
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
		if got.Steps[0]["html"] != "<p>next</p>" {
			t.Errorf("expected html in first step: %v", got.Steps[0])
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(haltedTranscript())
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if n != buf.Len() {
			t.Errorf("Write() = %d, wrote %d bytes", n, buf.Len())
		}
		if !strings.Contains(buf.String(), "\n  \"start_url\"") {
			t.Errorf("expected indented output: %s", buf.String())
		}
		if !strings.HasSuffix(buf.String(), "\n") {
			t.Error("expected trailing newline")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(haltedTranscript()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Random Walk",
		"`https://example.com/`",
		"1 of 2 advanced",
		"[!CAUTION]",
		"https://192.168.0.1/login",
		"## Steps",
		`Next \| page`,
		"`unsafe_url`",
		"## History",
		"(current)",
		"randomwalker",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in markdown output:\n%s", want, out)
		}
	}
}

func TestMarkdownWriter_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(NewTranscript("https://example.com/", 1)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No steps were taken.") {
		t.Errorf("expected empty-steps message:\n%s", buf.String())
	}
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(haltedTranscript()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"RANDOM WALK",
			"Start URL: https://example.com/",
			"Status:    HALTED - blocked https://192.168.0.1/login\n",
			"Duration:  1.5s",
			"[advanced] Next | page",
			"! IP address hosts are blocked",
			"> https://example.com/next",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
		if strings.Contains(out, "Seed:") {
			t.Errorf("time-based seed should not be printed:\n%s", out)
		}
		if strings.Contains(out, "Safety filter blocked navigation") {
			t.Errorf("annotations are verbose-only:\n%s", out)
		}
	})

	t.Run("blocked domain is shown", func(t *testing.T) {
		t.Parallel()

		tr := NewTranscript("https://example.com/", 0)
		tr.Add(walker.AutoReport{
			Attempt: 1,
			Outcome: walker.OutcomeHalted,
			Err: &walker.UnsafeURLError{
				URL:     "https://login.example.zip/",
				Reasons: []string{"Suspicious top-level domain"},
				Domain:  "example.zip",
			},
		})

		var simple, md bytes.Buffer
		if _, err := NewSimpleWriter(&simple).Write(tr); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(simple.String(), "HALTED - blocked https://login.example.zip/ (example.zip)") {
			t.Errorf("expected domain in status line:\n%s", simple.String())
		}
		if strings.Contains(simple.String(), "Duration:") {
			t.Errorf("unfinished transcript should not report a duration:\n%s", simple.String())
		}
		if _, err := NewMarkdownWriter(&md).Write(tr); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(md.String(), "`https://login.example.zip/` (example.zip)") {
			t.Errorf("expected domain in caution:\n%s", md.String())
		}
	})

	t.Run("verbose shows annotations", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(haltedTranscript()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "Safety filter blocked navigation") {
			t.Errorf("expected annotation in verbose output:\n%s", buf.String())
		}
	})
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{in: "short", maxLen: 10, want: "short"},
		{in: "exactly10!", maxLen: 10, want: "exactly10!"},
		{in: "this is too long", maxLen: 10, want: "this is..."},
		{in: "abcdef", maxLen: 2, want: "ab"},
		{in: "ééééééé", maxLen: 5, want: "éé..."},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := truncateString(tt.in, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
			}
		})
	}
}
