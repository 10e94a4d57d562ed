package summarizer

import (
	"strings"

	"golang.org/x/net/html"
)

// skipElements are elements whose text carries no release information.
var skipElements = map[string]bool{
	"script":   true,
	"style":    true,
	"svg":      true,
	"iframe":   true,
	"noscript": true,
}

// blockElements force a line break in the extracted text.
var blockElements = map[string]bool{
	"p":          true,
	"h1":         true,
	"h2":         true,
	"h3":         true,
	"h4":         true,
	"h5":         true,
	"h6":         true,
	"li":         true,
	"ul":         true,
	"ol":         true,
	"blockquote": true,
	"div":        true,
	"pre":        true,
	"br":         true,
	"tr":         true,
}

// HTMLToText extracts plain text from HTML content to save tokens. Returns
// the input unchanged when it does not parse as HTML.
func HTMLToText(content string) string {
	if !strings.Contains(content, "<") {
		return content
	}
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return content
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			b.WriteString("\n")
		}
	}
	walk(doc)

	lines := strings.Split(b.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}
