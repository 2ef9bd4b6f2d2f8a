package crawler

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/nao1215/randomwalker/internal/model"
	"github.com/nao1215/randomwalker/internal/weburl"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", raw, err)
	}
	return u
}

func extract(t *testing.T, content, documentURL string) []model.Candidate {
	t.Helper()
	candidates, err := ExtractCandidates(content, mustParse(t, documentURL))
	if err != nil {
		t.Fatalf("failed to extract candidates: %v", err)
	}
	return candidates
}

func urls(candidates []model.Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.URL.String())
	}
	return out
}

// TestParserCandidates tests link extraction and resolution.
func TestParserCandidates(t *testing.T) {
	t.Parallel()

	t.Run("no anchors yields empty list", func(t *testing.T) {
		t.Parallel()

		candidates := extract(t, `<html><body><p>nothing here</p></body></html>`, "https://example.com/")
		if candidates == nil || len(candidates) != 0 {
			t.Errorf("expected empty non-nil list, got %v", candidates)
		}
	})

	t.Run("relative href resolves against document url", func(t *testing.T) {
		t.Parallel()

		candidates := extract(t, `<a href="/relative">Rel</a>`, "https://example.com/dir/page")
		if got := urls(candidates); len(got) != 1 || got[0] != "https://example.com/relative" {
			t.Errorf("unexpected candidates %v", got)
		}
	})

	t.Run("path relative href", func(t *testing.T) {
		t.Parallel()

		candidates := extract(t, `<a href="sibling">S</a>`, "https://example.com/dir/page")
		if got := urls(candidates); len(got) != 1 || got[0] != "https://example.com/dir/sibling" {
			t.Errorf("unexpected candidates %v", got)
		}
	})

	t.Run("base href overrides document url", func(t *testing.T) {
		t.Parallel()

		content := `<html><head><base href="https://cdn.example.org/root/"></head>
			<body><a href="page">P</a></body></html>`
		candidates := extract(t, content, "https://example.com/dir/page")
		if got := urls(candidates); len(got) != 1 || got[0] != "https://cdn.example.org/root/page" {
			t.Errorf("unexpected candidates %v", got)
		}
	})

	t.Run("relative base href is resolved against document url", func(t *testing.T) {
		t.Parallel()

		content := `<html><head><base href="/other/"></head><body><a href="x">X</a></body></html>`
		candidates := extract(t, content, "https://example.com/dir/page")
		if got := urls(candidates); len(got) != 1 || got[0] != "https://example.com/other/x" {
			t.Errorf("unexpected candidates %v", got)
		}
	})

	t.Run("non web base href is ignored", func(t *testing.T) {
		t.Parallel()

		content := `<html><head><base href="javascript:void(0)"></head><body><a href="x">X</a></body></html>`
		candidates := extract(t, content, "https://example.com/dir/page")
		if got := urls(candidates); len(got) != 1 || got[0] != "https://example.com/dir/x" {
			t.Errorf("unexpected candidates %v", got)
		}
	})

	t.Run("non web schemes are excluded", func(t *testing.T) {
		t.Parallel()

		content := `<a href="mailto:someone@example.com">Mail</a>
			<a href="javascript:alert(1)">JS</a>
			<a href="tel:+123">Tel</a>
			<a href="ftp://example.com/file">FTP</a>
			<a href="data:text/html,hi">Data</a>`
		if candidates := extract(t, content, "https://example.com/"); len(candidates) != 0 {
			t.Errorf("expected no candidates, got %v", urls(candidates))
		}
	})

	t.Run("empty and missing href are skipped", func(t *testing.T) {
		t.Parallel()

		content := `<a>No href</a><a href="">Empty</a><a href="   ">Blank</a><a name="anchor">Named</a>`
		if candidates := extract(t, content, "https://example.com/"); len(candidates) != 0 {
			t.Errorf("expected no candidates, got %v", urls(candidates))
		}
	})

	t.Run("fragments are dropped", func(t *testing.T) {
		t.Parallel()

		candidates := extract(t, `<a href="https://example.com/page#section">A</a>`, "https://example.com/")
		if got := urls(candidates); len(got) != 1 || got[0] != "https://example.com/page" {
			t.Errorf("unexpected candidates %v", got)
		}
	})

	t.Run("fragment only href points at the document itself", func(t *testing.T) {
		t.Parallel()

		candidates := extract(t, `<a href="#top">Top</a>`, "https://example.com/page")
		if got := urls(candidates); len(got) != 1 || got[0] != "https://example.com/page" {
			t.Errorf("unexpected candidates %v", got)
		}
	})

	t.Run("duplicates keep the first label", func(t *testing.T) {
		t.Parallel()

		content := `<a href="/a">First</a><a href="https://example.com/a#frag">Second</a><a href="/b">B</a>`
		candidates := extract(t, content, "https://example.com/")
		if len(candidates) != 2 {
			t.Fatalf("expected 2 candidates, got %v", urls(candidates))
		}
		if candidates[0].Label != "First" {
			t.Errorf("expected first label to be kept, got %q", candidates[0].Label)
		}
	})

	t.Run("document order is preserved", func(t *testing.T) {
		t.Parallel()

		content := `<a href="/c">C</a><div><a href="/a">A</a></div><a href="/b">B</a>`
		got := urls(extract(t, content, "https://example.com/"))
		want := []string{"https://example.com/c", "https://example.com/a", "https://example.com/b"}
		if strings.Join(got, " ") != strings.Join(want, " ") {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("anchors inside noscript are candidates", func(t *testing.T) {
		t.Parallel()

		content := `<html><head><noscript><link rel="x"></noscript></head>
			<body><noscript><a href="/plain">Plain version</a></noscript><a href="/app">App</a></body></html>`
		got := urls(extract(t, content, "https://example.com/"))
		want := []string{"https://example.com/plain", "https://example.com/app"}
		if strings.Join(got, " ") != strings.Join(want, " ") {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("whitespace around href is trimmed", func(t *testing.T) {
		t.Parallel()

		candidates := extract(t, `<a href="  /spaced  ">S</a>`, "https://example.com/")
		if got := urls(candidates); len(got) != 1 || got[0] != "https://example.com/spaced" {
			t.Errorf("unexpected candidates %v", got)
		}
	})
}

// TestAnchorLabel tests label derivation.
func TestAnchorLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "visible text", content: `<a href="/x">Hello</a>`, want: "Hello"},
		{name: "whitespace collapsed", content: "<a href=\"/x\">  Hello \n\t <b>big</b>   world </a>", want: "Hello big world"},
		{name: "title fallback", content: `<a href="/x" title=" Title text "><img src="i.png"></a>`, want: "Title text"},
		{name: "text wins over title", content: `<a href="/x" title="Title">Text</a>`, want: "Text"},
		{name: "no label", content: `<a href="/x"><img src="i.png"></a>`, want: ""},
		{name: "nfc normalized", content: "<a href=\"/x\">Cafe\u0301</a>", want: "Caf\u00e9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			candidates := extract(t, tt.content, "https://example.com/")
			if len(candidates) != 1 {
				t.Fatalf("expected 1 candidate, got %d", len(candidates))
			}
			if candidates[0].Label != tt.want {
				t.Errorf("label = %q, want %q", candidates[0].Label, tt.want)
			}
		})
	}
}

func TestNewParser(t *testing.T) {
	t.Parallel()

	t.Run("rejects relative document url", func(t *testing.T) {
		t.Parallel()

		if _, err := NewParser(mustParse(t, "/relative")); !errors.Is(err, weburl.ErrInvalidURL) {
			t.Errorf("expected ErrInvalidURL, got %v", err)
		}
	})

	t.Run("rejects nil document url", func(t *testing.T) {
		t.Parallel()

		if _, err := NewParser(nil); !errors.Is(err, weburl.ErrInvalidURL) {
			t.Errorf("expected ErrInvalidURL, got %v", err)
		}
	})

	t.Run("candidates from reader", func(t *testing.T) {
		t.Parallel()

		p, err := NewParser(mustParse(t, "http://example.com/"))
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}
		candidates, err := p.Candidates(strings.NewReader(`<a href="//other.example.com/x">X</a>`))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if got := urls(candidates); len(got) != 1 || got[0] != "http://other.example.com/x" {
			t.Errorf("scheme relative link should inherit scheme, got %v", got)
		}
	})
}
