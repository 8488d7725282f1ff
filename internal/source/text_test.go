package source

import (
	"math"
	"strings"
	"testing"

	"github.com/dgallion1/markscan/internal/scheme"
)

func TestTextLoader_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	l := &TextLoader{}
	out, err := l.Load(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := scheme.New(out)
	doc := s.FirstMatch("document", nil, 0, math.MaxInt)
	if doc != 0 {
		t.Fatalf("expected document root at row 0, got %d", doc)
	}
	title := s.Attributes(doc)
	if len(title) != 1 || title[0].Value != scheme.Some("notes") {
		t.Errorf("expected title attribute %q, got %v", "notes", title)
	}

	paras := s.FindAll("p", nil, 0, math.MaxInt)
	if len(paras) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(paras))
	}

	want := []string{
		"First paragraph line one.\nFirst paragraph line two.",
		"Second paragraph.",
		"Third paragraph.",
	}
	for i, w := range want {
		if got := s.InnerText(paras[i]); got != w {
			t.Errorf("paragraph[%d]: expected %q, got %q", i, w, got)
		}
	}
}

func TestTextLoader_EmptyInput(t *testing.T) {
	l := &TextLoader{}
	out, err := l.Load(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "<document title=\"empty\">\n</document>\n"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestTextLoader_MultipleBlankLines(t *testing.T) {
	// Multiple consecutive blank lines should not produce empty paragraphs.
	input := "Para one.\n\n\n\nPara two.\n   \nPara three."
	l := &TextLoader{}
	out, err := l.Load(strings.NewReader(input), "gaps.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := strings.Count(out, "<p>"); n != 3 {
		t.Fatalf("expected 3 paragraphs, got %d in %q", n, out)
	}
}

func TestTextLoader_EscapesMarkup(t *testing.T) {
	l := &TextLoader{}
	out, err := l.Load(strings.NewReader(`if a < b && c > "d" then <stop>`), "code.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := scheme.New(out)
	if s.FirstMatch("stop", nil, 0, math.MaxInt) != -1 {
		t.Error("text must not introduce elements")
	}
	p := s.FirstMatch("p", nil, 0, math.MaxInt)
	want := "if a &lt; b &amp;&amp; c &gt; &#34;d&#34; then &lt;stop&gt;"
	if got := s.InnerText(p); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
