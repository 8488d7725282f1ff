package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/markscan/internal/doctree"
	"github.com/dgallion1/markscan/internal/scheme"
	"github.com/dgallion1/markscan/internal/store"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// elementView is a table row tagged with its index.
type elementView struct {
	Index int `json:"index"`
	scheme.Element
}

func views(s *scheme.Scheme, indices []int) []elementView {
	out := make([]elementView, 0, len(indices))
	for _, i := range indices {
		if e, ok := s.Element(i); ok {
			out = append(out, elementView{Index: i, Element: e})
		}
	}
	return out
}

// document resolves {docID} or writes a 404.
func (s *Server) document(w http.ResponseWriter, r *http.Request) (*store.Document, bool) {
	doc := s.orchestrator.Documents().Get(chi.URLParam(r, "docID"))
	if doc == nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return nil, false
	}
	return doc, true
}

// element resolves {docID} and {index} or writes an error.
func (s *Server) element(w http.ResponseWriter, r *http.Request) (*store.Document, int, bool) {
	doc, ok := s.document(w, r)
	if !ok {
		return nil, 0, false
	}
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		jsonError(w, "index must be an integer", http.StatusBadRequest)
		return nil, 0, false
	}
	if _, ok := doc.Scheme.Element(i); !ok {
		jsonError(w, "element not found", http.StatusNotFound)
		return nil, 0, false
	}
	return doc, i, true
}

func (s *Server) handleElements(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	offset, err := intParam(q.Get("offset"), 0)
	if err != nil || offset < 0 {
		jsonError(w, "offset must be a non-negative integer", http.StatusBadRequest)
		return
	}
	limit, err := intParam(q.Get("limit"), defaultPageSize)
	if err != nil || limit <= 0 {
		jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
		return
	}
	limit = min(limit, maxPageSize)

	rows := doc.Scheme.Elements()
	page := make([]elementView, 0)
	for i := offset; i < len(rows) && i < offset+limit; i++ {
		page = append(page, elementView{Index: i, Element: rows[i]})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":   doc.ID,
		"total":    len(rows),
		"offset":   offset,
		"limit":    limit,
		"elements": page,
	})
}

func (s *Server) handleElement(w http.ResponseWriter, r *http.Request) {
	doc, i, ok := s.element(w, r)
	if !ok {
		return
	}
	e, _ := doc.Scheme.Element(i)
	attrs := doc.Scheme.Attributes(i)
	if attrs == nil {
		attrs = []scheme.Attribute{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"element":         elementView{Index: i, Element: e},
		"attributes":      attrs,
		"inner_text":      doc.Scheme.InnerText(i),
		"inner_only_text": doc.Scheme.InnerOnlyText(i),
	})
}

func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	doc, i, ok := s.element(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"index":    i,
		"children": views(doc.Scheme, doc.Scheme.Children(i)),
	})
}

// handleFind locates openers by name and attributes, or by a selector:
//
//	?name=item&attr=id=2&attr=hidden
//	?select=item[@id="2"][@hidden]
//
// start and end bound the row range; all=true returns every match.
func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	start, err := intParam(q.Get("start"), 0)
	if err != nil || start < 0 {
		jsonError(w, "start must be a non-negative integer", http.StatusBadRequest)
		return
	}
	end, err := intParam(q.Get("end"), math.MaxInt)
	if err != nil {
		jsonError(w, "end must be an integer", http.StatusBadRequest)
		return
	}
	all := q.Get("all") == "true"

	name := q.Get("name")
	attrs := parseAttrParams(q["attr"])
	expr := q.Get("select")
	if expr != "" {
		if name != "" || len(attrs) > 0 {
			jsonError(w, "select cannot be combined with name or attr", http.StatusBadRequest)
			return
		}
		sel, err := scheme.ParseSelector(expr)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		name, attrs = sel.Name, sel.Attributes
	}
	if name == "" && len(attrs) == 0 {
		jsonError(w, "name, attr or select is required", http.StatusBadRequest)
		return
	}

	var found []int
	switch {
	case all:
		found = doc.Scheme.FindAll(name, attrs, start, end)
	case expr != "":
		if i := doc.Scheme.Select(expr, start, end); i >= 0 {
			found = []int{i}
		}
	default:
		if i := doc.Scheme.FirstMatch(name, attrs, start, end); i >= 0 {
			found = []int{i}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":  doc.ID,
		"matches": views(doc.Scheme, found),
	})
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doctree.FromScheme(doc.Scheme, doc.Title))
}

// parseAttrParams turns "k=v" into a valued attribute and "k" into a bare one.
func parseAttrParams(params []string) []scheme.Attribute {
	var attrs []scheme.Attribute
	for _, p := range params {
		if p == "" {
			continue
		}
		if k, v, ok := strings.Cut(p, "="); ok {
			attrs = append(attrs, scheme.Attribute{Name: k, Value: scheme.Some(v)})
		} else {
			attrs = append(attrs, scheme.Attribute{Name: p, Value: scheme.None()})
		}
	}
	return attrs
}

var errNotInt = errors.New("not an integer")

func intParam(v string, fallback int) (int, error) {
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errNotInt
	}
	return n, nil
}
