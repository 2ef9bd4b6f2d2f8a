package crawler

import (
	"io"
	"net/url"
	"strings"

	"github.com/nao1215/randomwalker/internal/model"
	"github.com/nao1215/randomwalker/internal/weburl"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Parser extracts outbound link candidates from HTML content.
//
// golang.org/x/net/html is used instead of pattern matching because it
// follows the HTML5 parsing algorithm and copes with the malformed markup
// common on the web.
type Parser struct {
	// documentURL is the URL the document was served from, after redirects.
	documentURL *url.URL
}

// NewParser creates a parser for a document served from documentURL.
// documentURL must be an absolute http or https URL.
func NewParser(documentURL *url.URL) (*Parser, error) {
	if err := weburl.Check(documentURL); err != nil {
		return nil, err
	}
	return &Parser{documentURL: documentURL}, nil
}

// ExtractCandidates parses content served from documentURL and returns its
// candidates in document order.
func ExtractCandidates(content string, documentURL *url.URL) ([]model.Candidate, error) {
	p, err := NewParser(documentURL)
	if err != nil {
		return nil, err
	}
	return p.Candidates(strings.NewReader(content))
}

// Candidates parses content and returns every distinct navigable link in
// document order. An empty, non-nil slice means the document has none.
func (p *Parser) Candidates(content io.Reader) ([]model.Candidate, error) {
	doc, err := html.ParseWithOptions(content, html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, err
	}

	base := p.effectiveBase(doc)
	candidates := make([]model.Candidate, 0)
	seen := make(map[string]struct{})

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href, ok := lookupAttr(n, "href"); ok {
				if target := resolveLink(base, href); target != nil {
					key := weburl.Canonical(target)
					if _, dup := seen[key]; !dup {
						seen[key] = struct{}{}
						candidates = append(candidates, model.Candidate{URL: target, Label: anchorLabel(n)})
					}
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return candidates, nil
}

// effectiveBase returns the target of the first <base href> when it resolves
// to a web URL, otherwise the document URL.
func (p *Parser) effectiveBase(doc *html.Node) *url.URL {
	baseNode := findFirst(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "base" {
			return false
		}
		_, ok := lookupAttr(n, "href")
		return ok
	})
	if baseNode == nil {
		return p.documentURL
	}

	href, _ := lookupAttr(baseNode, "href")
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return p.documentURL
	}
	resolved := p.documentURL.ResolveReference(ref)
	if weburl.Check(resolved) != nil {
		return p.documentURL
	}
	return resolved
}

// resolveLink turns an href into an absolute, fragment-less web URL.
// It returns nil for anything that cannot be navigated to.
func resolveLink(base *url.URL, href string) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" {
		return nil
	}

	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}

	target := ref
	if !ref.IsAbs() {
		target = base.ResolveReference(ref)
	}
	target.Fragment = ""
	target.RawFragment = ""

	if weburl.Check(target) != nil {
		return nil
	}
	return target
}

// anchorLabel derives the display label of an anchor: its visible text with
// whitespace collapsed, else its title attribute, else empty.
func anchorLabel(n *html.Node) string {
	var text strings.Builder
	var collect func(*html.Node)
	collect = func(c *html.Node) {
		switch {
		case c.Type == html.TextNode:
			text.WriteString(c.Data)
			text.WriteString(" ")
		case c.Type == html.ElementNode && (c.Data == "script" || c.Data == "style"):
			return
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(n)

	if label := collapseWhitespace(text.String()); label != "" {
		return label
	}
	if title, ok := lookupAttr(n, "title"); ok {
		return collapseWhitespace(title)
	}
	return ""
}

// collapseWhitespace joins the whitespace-separated fields of s with single
// spaces and normalizes the result to NFC.
func collapseWhitespace(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// findFirst returns the first node in document order matching pred.
func findFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// lookupAttr retrieves an attribute value from an HTML node and reports
// whether the attribute is present.
func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
