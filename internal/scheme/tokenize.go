package scheme

import "strings"

// Occurrence is one raw tag found by Tokenize.
type Occurrence struct {
	Name    string
	Start   int // offset of '<'
	End     int // offset of the matching '>'
	Closing bool
}

// Tokenize scans doc left to right and returns its tag occurrences in
// document order. Comments, doctypes and processing instructions are skipped.
// Tags still open at the end of input are dropped.
func Tokenize(doc string) []Occurrence {
	var (
		occs      []Occurrence
		name      strings.Builder
		capturing bool
		started   bool
		left      int
	)

	for i := 0; i < len(doc); i++ {
		c := doc[i]

		if capturing {
			if isNameTerminator(doc, i) {
				capturing = false
			} else {
				name.WriteByte(c)
			}
		}

		switch c {
		case '<':
			// "!" means we are inside <!-- ... --> and must wait for "-->".
			if name.String() != "!" {
				name.Reset()
				capturing = true
				started = true
				left = i
			}
		case '>':
			tag := name.String()
			if !started || tag == "" || (tag == "!" && doc[i-1] != '-') {
				continue
			}
			if occ, ok := classify(tag, left, i); ok {
				occs = append(occs, occ)
			}
			name.Reset()
			capturing = false
			started = false
		}
	}

	return occs
}

func isNameTerminator(doc string, i int) bool {
	switch doc[i] {
	case ' ', '>', '\n', '-':
		return true
	case '/':
		return i == 0 || doc[i-1] != '<'
	}
	return false
}

func classify(tag string, start, end int) (Occurrence, bool) {
	switch {
	case tag[0] == '/':
		return Occurrence{Name: tag[1:], Start: start, End: end, Closing: true}, true
	case tag[0] == '!' || tag[0] == '?':
		return Occurrence{}, false
	}
	return Occurrence{Name: tag, Start: start, End: end}, true
}
