// Package extract turns HTML input into the plain text that gets analyzed.
package extract

import (
	"net/http"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// blockElements end a paragraph in the extracted text
var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "blockquote": true,
	"li": true, "dd": true, "dt": true, "tr": true, "pre": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "footer": true, "aside": true, "figcaption": true,
}

// VisibleText extracts the readable text of an HTML document. Scripts,
// styles and navigation are skipped. Block elements become paragraphs
// separated by a blank line; whitespace inside a paragraph is collapsed.
func VisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var paragraphs []string
	var current strings.Builder

	flush := func() {
		if p := strings.Join(strings.Fields(current.String()), " "); p != "" {
			paragraphs = append(paragraphs, p)
		}
		current.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			// Skip script, style, noscript tags
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template", "nav", "svg":
				return
			case "br":
				current.WriteString(" ")
				return
			}
		}

		if n.Type == html.TextNode {
			current.WriteString(n.Data)
			current.WriteString(" ")
		}

		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			flush()
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if block {
			flush()
		}
	}

	walk(doc)
	flush()

	return strings.Join(paragraphs, "\n\n"), nil
}

// IsHTML reports whether the input named path looks like an HTML document,
// by extension first and then by content sniffing
func IsHTML(path string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return true
	case ".txt", ".md", ".markdown", ".text":
		return false
	}
	return strings.HasPrefix(http.DetectContentType(data), "text/html")
}
