package source

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// HTMLLoader re-renders HTML through the html5 parser. The result has
// balanced tags, quoted attributes and an explicit html/head/body skeleton,
// which the scanner pairs far more reliably than hand-written HTML.
type HTMLLoader struct{}

func (l *HTMLLoader) Load(r io.Reader, filename string) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	// Comments can contain "<" runs the scanner would treat as tags.
	stripComments(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

func stripComments(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
		} else {
			stripComments(c)
		}
		c = next
	}
}
