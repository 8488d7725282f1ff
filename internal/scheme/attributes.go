package scheme

import (
	"encoding/json"
	"strings"
)

// Value is an attribute value that may be absent. A bare attribute such as
// <input disabled> has no value, which is distinct from disabled="".
type Value struct {
	s  string
	ok bool
}

// Some returns a present value.
func Some(v string) Value { return Value{s: v, ok: true} }

// None returns an absent value.
func None() Value { return Value{} }

// Get returns the value and whether it is present.
func (v Value) Get() (string, bool) { return v.s, v.ok }

// IsSet reports whether the value is present.
func (v Value) IsSet() bool { return v.ok }

func (v Value) String() string {
	if !v.ok {
		return "<none>"
	}
	return v.s
}

// MarshalJSON encodes an absent value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.s)
}

// UnmarshalJSON decodes null as an absent value.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = None()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Some(s)
	return nil
}

// Attribute is one name/value pair of an opening tag.
type Attribute struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}

// Attributes re-scans opener i and returns its attributes in source order.
// Duplicates are kept. Closers and out-of-range indices yield nil.
func (s *Scheme) Attributes(i int) []Attribute {
	if !s.inRange("Attributes", i) {
		return nil
	}
	return s.attributesAt(i)
}

func (s *Scheme) attributesAt(i int) []Attribute {
	e := s.table[i]
	if e.Open != i || s.doc[e.Start] != '<' {
		return nil
	}
	return parseAttributes(s.doc, e.Start+len(e.Name)+1, e.Finish)
}

// parseAttributes scans doc[from:to]. Values end on a newline, '>' or '"'
// unless one of the two preceding bytes is '=', which keeps the quote that
// opens a value from also closing it. Single quotes never terminate a value;
// they are only trimmed from its ends.
func parseAttributes(doc string, from, to int) []Attribute {
	var (
		attrs   []Attribute
		name    strings.Builder
		value   strings.Builder
		inValue bool
	)

	emitBare := func() {
		if name.Len() == 0 {
			return
		}
		attrs = append(attrs, Attribute{Name: name.String(), Value: None()})
		name.Reset()
	}
	emitValue := func() {
		if value.Len() == 0 {
			return
		}
		attrs = append(attrs, Attribute{Name: name.String(), Value: Some(trimQuotes(value.String()))})
		name.Reset()
		value.Reset()
		inValue = false
	}

	for j := from; j < to; j++ {
		c := doc[j]

		if !inValue {
			switch {
			case c == '=':
				inValue = true
				value.Reset()
			case c == '>' || isSpace(c):
				emitBare()
			default:
				name.WriteByte(c)
			}
			continue
		}

		if (c == '"' || c == '\'') && value.Len() == 0 && byteAt(doc, j-1) == '=' {
			continue
		}
		if c == '\n' || c == '>' || c == '"' {
			if byteAt(doc, j-1) != '=' && byteAt(doc, j-2) != '=' {
				emitValue()
			}
			continue
		}
		value.WriteByte(c)
	}

	if inValue {
		emitValue()
	} else if name.String() != "/" {
		emitBare()
	}

	return attrs
}

func trimQuotes(v string) string {
	if len(v) > 0 && (v[0] == '"' || v[0] == '\'') {
		v = v[1:]
	}
	if len(v) > 0 && (v[len(v)-1] == '"' || v[len(v)-1] == '\'') {
		v = v[:len(v)-1]
	}
	return v
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func byteAt(doc string, i int) byte {
	if i < 0 || i >= len(doc) {
		return 0
	}
	return doc[i]
}
