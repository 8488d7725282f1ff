package doctree

import (
	"strings"
	"testing"

	"github.com/dgallion1/markscan/internal/scheme"
)

func TestFromScheme_Nesting(t *testing.T) {
	s := scheme.New(`<rss><channel><title>Feed</title><item><title>A</title><enclosure url="u"/></item><item><title>B</title></item></channel></rss>`)

	tree := FromScheme(s, "feed")

	if tree.Title != "feed" {
		t.Errorf("expected title %q, got %q", "feed", tree.Title)
	}
	if len(tree.Children) != 1 || tree.Children[0].Name != "rss" {
		t.Fatalf("expected single rss root, got %+v", tree.Children)
	}
	channel := tree.Children[0].Children[0]
	if channel.Name != "channel" || len(channel.Children) != 3 {
		t.Fatalf("expected channel with 3 children, got %+v", channel)
	}
	if channel.Children[0].Text != "Feed" {
		t.Errorf("expected channel title %q, got %q", "Feed", channel.Children[0].Text)
	}

	item := channel.Children[1]
	if len(item.Children) != 2 {
		t.Fatalf("expected item with title and enclosure, got %d children", len(item.Children))
	}
	enc := item.Children[1]
	if enc.Name != scheme.Enclosure || len(enc.Children) != 0 {
		t.Errorf("expected leaf enclosure, got %+v", enc)
	}
	if len(enc.Attributes) != 1 || enc.Attributes[0].Name != "url" {
		t.Errorf("expected url attribute, got %v", enc.Attributes)
	}
	if item.Text != "A" {
		t.Errorf("expected item text %q, got %q", "A", item.Text)
	}
}

func TestFromScheme_Siblings(t *testing.T) {
	s := scheme.New("<a></a><b><c></c></b>")

	tree := FromScheme(s, "")
	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(tree.Children))
	}
	if tree.Children[1].Children[0].Name != "c" {
		t.Errorf("expected c under b, got %+v", tree.Children[1].Children)
	}
}

func TestFromScheme_UnmatchedOpenerIsLeaf(t *testing.T) {
	s := scheme.New("<r><x><y></y></r>", scheme.WithNameFilter(scheme.AllNames))

	tree := FromScheme(s, "")
	r := tree.Children[0]
	if len(r.Children) != 2 {
		t.Fatalf("expected x and y directly under r, got %+v", r.Children)
	}
	if r.Children[0].Name != "x" || len(r.Children[0].Children) != 0 {
		t.Errorf("expected leaf x, got %+v", r.Children[0])
	}
}

func TestFromScheme_Empty(t *testing.T) {
	tree := FromScheme(scheme.New("plain text"), "empty")
	if len(tree.Children) != 0 {
		t.Errorf("expected no children, got %d", len(tree.Children))
	}
}

func TestWalk_Paths(t *testing.T) {
	tree := FromScheme(scheme.New("<a><b><c></c></b><d></d></a>"), "")

	var got []string
	tree.Walk(func(n *DocNode, path []string) {
		got = append(got, strings.Join(append(path, n.Name), "/"))
	})

	want := "a a/b a/b/c a/d"
	if strings.Join(got, " ") != want {
		t.Errorf("expected %q, got %q", want, strings.Join(got, " "))
	}
}
