package source

import (
	"strings"

	"golang.org/x/net/html"
)

// writer builds the markup emitted by the non-markup loaders. Text and
// attribute values are escaped so that they never introduce tags or quotes.
type writer struct {
	b strings.Builder
}

func (w *writer) open(name string, attrs ...string) {
	w.b.WriteByte('<')
	w.b.WriteString(name)
	for i := 0; i+1 < len(attrs); i += 2 {
		w.b.WriteByte(' ')
		w.b.WriteString(attrs[i])
		w.b.WriteString(`="`)
		w.b.WriteString(html.EscapeString(attrs[i+1]))
		w.b.WriteByte('"')
	}
	w.b.WriteByte('>')
}

func (w *writer) close(name string) {
	w.b.WriteString("</")
	w.b.WriteString(name)
	w.b.WriteString(">\n")
}

func (w *writer) text(s string) {
	w.b.WriteString(html.EscapeString(s))
}

// element writes <name attrs...>text</name>.
func (w *writer) element(name, text string, attrs ...string) {
	w.open(name, attrs...)
	w.text(text)
	w.close(name)
}

func (w *writer) String() string {
	return w.b.String()
}
