package source

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// MarkdownLoader renders Markdown to XHTML using goldmark and wraps it in a
// single <document> root.
type MarkdownLoader struct{}

func (l *MarkdownLoader) Load(r io.Reader, filename string) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	md := goldmark.New(goldmark.WithRendererOptions(html.WithXHTML()))

	var body bytes.Buffer
	if err := md.Convert(src, &body); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	var w writer
	w.open("document", "title", titleOf(filename))
	w.b.WriteByte('\n')
	w.b.Write(body.Bytes())
	w.close("document")
	return w.String(), nil
}
