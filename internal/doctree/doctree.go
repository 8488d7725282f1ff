// Package doctree derives a nested outline from a scheme's flat element table.
// The outline is a presentation view only; queries go through the table.
package doctree

import (
	"strings"

	"github.com/dgallion1/markscan/internal/scheme"
)

// DocTree is the root of an outline.
type DocTree struct {
	Title    string     `json:"title"`    // Document title (from metadata or filename)
	Children []*DocNode `json:"children"` // Top-level elements
}

// DocNode is one opener of the element table and the openers nested in it.
type DocNode struct {
	Name       string             `json:"name"`
	Index      int                `json:"index"` // Row index in the element table
	Depth      int                `json:"depth"`
	Attributes []scheme.Attribute `json:"attributes,omitempty"`
	Text       string             `json:"text,omitempty"` // Trimmed inner text without markup
	Children   []*DocNode         `json:"children,omitempty"`
}

// FromScheme nests every opener under the nearest matched opener whose
// closer comes after it. Unmatched openers and enclosures become leaves.
func FromScheme(s *scheme.Scheme, title string) *DocTree {
	tree := &DocTree{Title: title}

	type stackEntry struct {
		node  *DocNode
		close int
	}
	var stack []stackEntry

	for i, e := range s.Elements() {
		if e.Open != i {
			continue
		}
		for len(stack) > 0 && stack[len(stack)-1].close < i {
			stack = stack[:len(stack)-1]
		}

		node := &DocNode{
			Name:       e.Name,
			Index:      i,
			Depth:      e.Depth,
			Attributes: s.Attributes(i),
			Text:       strings.TrimSpace(s.InnerOnlyText(i)),
		}
		if len(stack) == 0 {
			tree.Children = append(tree.Children, node)
		} else {
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, node)
		}

		if e.Close > i {
			stack = append(stack, stackEntry{node: node, close: e.Close})
		}
	}

	return tree
}

// Walk visits every node depth-first with the names of its ancestors.
func (t *DocTree) Walk(fn func(n *DocNode, path []string)) {
	var walk func(nodes []*DocNode, path []string)
	walk = func(nodes []*DocNode, path []string) {
		for _, n := range nodes {
			fn(n, path)
			walk(n.Children, append(path[:len(path):len(path)], n.Name))
		}
	}
	walk(t.Children, nil)
}
