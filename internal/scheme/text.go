package scheme

import "strings"

// InnerText returns the raw text between opener i and its closer, markup
// included. It returns "" for closers, unmatched openers, enclosures and
// out-of-range indices.
func (s *Scheme) InnerText(i int) string {
	lo, hi, ok := s.innerWindow("InnerText", i)
	if !ok {
		return ""
	}
	return s.doc[lo:hi]
}

// InnerOnlyText is InnerText with angle-bracket runs removed. The strip is
// flat: it toggles on '<' and '>' without tracking depth, so text of nested
// elements is kept as well.
func (s *Scheme) InnerOnlyText(i int) string {
	lo, hi, ok := s.innerWindow("InnerOnlyText", i)
	if !ok {
		return ""
	}

	var b strings.Builder
	plain := true
	for j := lo; j < hi; j++ {
		c := s.doc[j]
		if c == '<' {
			plain = false
		}
		if plain {
			b.WriteByte(c)
		}
		if c == '>' {
			plain = true
		}
	}
	return b.String()
}

func (s *Scheme) innerWindow(method string, i int) (lo, hi int, ok bool) {
	if !s.inRange(method, i) {
		return 0, 0, false
	}
	e := s.table[i]
	if e.Open != i || e.Close == -1 {
		return 0, 0, false
	}
	lo = e.Finish + 1
	hi = s.table[e.Close].Start
	if lo >= hi {
		return 0, 0, false
	}
	return lo, hi, true
}
