package source

import (
	"bufio"
	"io"
	"strings"
)

// TextLoader handles plain text files. Blank-line separated paragraphs
// become <p> elements.
type TextLoader struct{}

func (l *TextLoader) Load(r io.Reader, filename string) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return "", err
	}

	var w writer
	w.open("document", "title", titleOf(filename))
	w.b.WriteByte('\n')
	for _, para := range paragraphs {
		w.element("p", para)
	}
	w.close("document")
	return w.String(), nil
}
