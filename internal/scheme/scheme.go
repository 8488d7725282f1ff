// Package scheme scans markup-like text once and answers structural queries
// against the resulting flat element table.
package scheme

import (
	"errors"
	"fmt"
	"log/slog"
)

// Enclosure is the reserved name of self-terminating elements. Every
// occurrence of it stands alone and is never paired.
const Enclosure = "enclosure"

// ErrOutOfRange is reported to the logger when an index falls outside the table.
var ErrOutOfRange = errors.New("index out of range")

// Scheme holds a document and the element table built from it. The table is
// built once by New and never mutated afterwards, so a Scheme is safe for
// concurrent readers.
type Scheme struct {
	doc   string
	table []Element
	log   *slog.Logger
}

// Option configures New.
type Option func(*options)

type options struct {
	log         *slog.Logger
	filter      NameFilter
	legacyDepth bool
}

// WithLogger sets the sink for failed-query reports. Nil discards them.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithNameFilter replaces the rule that decides which tag names enter the table.
func WithNameFilter(f NameFilter) Option {
	return func(o *options) { o.filter = f }
}

// WithLegacyDepth switches to look-behind-one-row depth arithmetic: an opener
// compares against the previous row only, and a closer reports the depth
// inside the element it closes.
func WithLegacyDepth() Option {
	return func(o *options) { o.legacyDepth = true }
}

// New scans doc and builds its element table.
func New(doc string, opts ...Option) *Scheme {
	o := options{filter: PairedNames}
	for _, fn := range opts {
		fn(&o)
	}
	if o.filter == nil {
		o.filter = PairedNames
	}
	if o.log == nil {
		o.log = slog.New(slog.DiscardHandler)
	}

	s := &Scheme{doc: doc, log: o.log}
	s.table = s.buildTable(o)
	return s
}

func (s *Scheme) buildTable(o options) (table []Element) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("New() failed", "error", fmt.Sprint(r))
			table = nil
		}
	}()
	return build(Tokenize(s.doc), o.filter, o.legacyDepth)
}

// Doc returns the scanned document text.
func (s *Scheme) Doc() string { return s.doc }

// Len returns the number of rows in the element table.
func (s *Scheme) Len() int { return len(s.table) }

// Element returns row i.
func (s *Scheme) Element(i int) (Element, bool) {
	if i < 0 || i >= len(s.table) {
		return Element{}, false
	}
	return s.table[i], true
}

// Elements returns a copy of the element table.
func (s *Scheme) Elements() []Element {
	out := make([]Element, len(s.table))
	copy(out, s.table)
	return out
}

// inRange reports whether i addresses a row, logging on behalf of method when it doesn't.
func (s *Scheme) inRange(method string, i int) bool {
	if i >= 0 && i < len(s.table) {
		return true
	}
	s.log.Error(method+"() failed", "index", i, "size", len(s.table), "error", ErrOutOfRange)
	return false
}
