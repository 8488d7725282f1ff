package scheme

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadSelector is wrapped by ParseSelector errors.
var ErrBadSelector = errors.New("malformed selector")

// Selector is a parsed element query: an optional name plus attribute
// predicates.
type Selector struct {
	Name       string
	Attributes []Attribute
}

// ParseSelector parses `name`, `name[@attr="v"]`, `[@attr='v']` and
// `[@attr]`. Predicates may be chained; values may be quoted or bare.
func ParseSelector(expr string) (Selector, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Selector{}, fmt.Errorf("%w: empty", ErrBadSelector)
	}

	var sel Selector
	i := strings.IndexByte(expr, '[')
	if i < 0 {
		i = len(expr)
	}
	sel.Name = expr[:i]
	if strings.ContainsAny(sel.Name, " <>/=@]") {
		return Selector{}, fmt.Errorf("%w: bad element name %q", ErrBadSelector, sel.Name)
	}

	rest := expr[i:]
	for rest != "" {
		if !strings.HasPrefix(rest, "[@") {
			return Selector{}, fmt.Errorf("%w: expected [@ at %q", ErrBadSelector, rest)
		}
		end := predicateEnd(rest)
		if end < 0 {
			return Selector{}, fmt.Errorf("%w: unterminated predicate %q", ErrBadSelector, rest)
		}
		attr, err := parsePredicate(rest[2:end])
		if err != nil {
			return Selector{}, err
		}
		sel.Attributes = append(sel.Attributes, attr)
		rest = rest[end+1:]
	}

	return sel, nil
}

// predicateEnd finds the ']' closing the predicate at the start of s,
// skipping over quoted values.
func predicateEnd(s string) int {
	var quote byte
	for i := 2; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ']':
			return i
		}
	}
	return -1
}

func parsePredicate(p string) (Attribute, error) {
	name, value, hasValue := strings.Cut(p, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return Attribute{}, fmt.Errorf("%w: empty attribute name in %q", ErrBadSelector, p)
	}
	if !hasValue {
		return Attribute{Name: name, Value: None()}, nil
	}
	value = strings.TrimSpace(value)
	if n := len(value); n >= 2 && (value[0] == '"' || value[0] == '\'') && value[n-1] == value[0] {
		value = value[1 : n-1]
	}
	return Attribute{Name: name, Value: Some(value)}, nil
}
