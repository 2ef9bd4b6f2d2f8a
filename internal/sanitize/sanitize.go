package sanitize

import (
	"fmt"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// removedElements are dropped together with their content.
const removedElements = "script, iframe, frame, frameset, object, embed"

// urlAttributes are checked for javascript: targets.
var urlAttributes = []string{"href", "src", "action", "formaction"}

// Sanitize parses document and returns a display-safe serialization whose
// relative references resolve against baseURL.
// It returns ErrEmptyResponse when document is blank.
func Sanitize(document, baseURL string) (string, error) {
	if strings.TrimSpace(document) == "" {
		return "", ErrEmptyResponse
	}

	// Without scripting, <noscript> content is parsed as markup and cleaned
	// like the rest of the document.
	root, err := html.ParseWithOptions(strings.NewReader(document), html.ParseOptionEnableScripting(false))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	doc.Find(removedElements).Remove()
	ensureBody(doc)
	doc.Find("meta[http-equiv]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("http-equiv")
		return strings.EqualFold(strings.TrimSpace(v), "refresh")
	}).Remove()

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			n.Attr = cleanAttributes(n.Attr)
		}
	})

	setBase(doc, baseURL)

	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return out, nil
}

// cleanAttributes drops inline event handlers and javascript: URLs.
func cleanAttributes(attrs []html.Attribute) []html.Attribute {
	kept := attrs[:0]
	for _, attr := range attrs {
		if attr.Namespace == "" && strings.HasPrefix(strings.ToLower(attr.Key), "on") {
			continue
		}
		if isURLAttribute(attr.Key) && isJavaScriptURL(attr.Val) {
			continue
		}
		kept = append(kept, attr)
	}
	return kept
}

func isURLAttribute(key string) bool {
	return slices.Contains(urlAttributes, strings.ToLower(key))
}

// isJavaScriptURL reports whether v targets the javascript: scheme.
// Tabs and newlines are ignored because browsers strip them from URLs.
func isJavaScriptURL(v string) bool {
	v = strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r':
			return -1
		}
		return r
	}, v)
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(v)), "javascript:")
}

// ensureBody appends an empty <body> when removing a frameset left none, so
// that parsing the output again yields the same tree.
func ensureBody(doc *goquery.Document) {
	if doc.Find("body").Length() > 0 {
		return
	}
	root := doc.Find("html").First()
	if root.Length() == 0 {
		return
	}
	root.AppendNodes(&html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"})
}

// setBase leaves exactly one <base href=baseURL> as the first child of <head>.
func setBase(doc *goquery.Document, baseURL string) {
	doc.Find("base").Remove()

	head := doc.Find("head").First()
	if head.Length() == 0 {
		root := doc.Find("html").First()
		if root.Length() == 0 {
			root = doc.Selection
		}
		root.PrependHtml("<head></head>")
		head = doc.Find("head").First()
	}

	base := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Base,
		Data:     "base",
		Attr:     []html.Attribute{{Key: "href", Val: baseURL}},
	}
	head.PrependNodes(base)
}
