package scheme

// NameFilter decides which tag names are structurally significant. It
// receives every occurrence of the document and returns the set of names to
// keep in the element table.
//
// Two rules have been used historically and they are not equivalent, so the
// rule is pluggable rather than fixed.
type NameFilter func(occurrences []Occurrence) map[string]bool

// PairedNames keeps Enclosure and every name that occurs at least once as an
// opener and at least once as a closer.
func PairedNames(occurrences []Occurrence) map[string]bool {
	opened := make(map[string]bool)
	closed := make(map[string]bool)
	keep := make(map[string]bool)

	for _, o := range occurrences {
		if o.Name == Enclosure {
			keep[o.Name] = true
			continue
		}
		if o.Closing {
			closed[o.Name] = true
		} else {
			opened[o.Name] = true
		}
		if opened[o.Name] && closed[o.Name] {
			keep[o.Name] = true
		}
	}
	return keep
}

// RepeatedNames keeps Enclosure and every name whose opener group or closer
// group has more than one member. A name seen twice only as an opener is
// kept; a name seen once as opener and once as closer is not.
func RepeatedNames(occurrences []Occurrence) map[string]bool {
	type group struct {
		name    string
		closing bool
	}
	counts := make(map[group]int)
	keep := make(map[string]bool)

	for _, o := range occurrences {
		if o.Name == Enclosure {
			keep[o.Name] = true
			continue
		}
		g := group{name: o.Name, closing: o.Closing}
		counts[g]++
		if counts[g] > 1 {
			keep[o.Name] = true
		}
	}
	return keep
}

// AllNames keeps every name. Unpaired openers and closers then show up in the
// table as unmatched rows.
func AllNames(occurrences []Occurrence) map[string]bool {
	keep := make(map[string]bool)
	for _, o := range occurrences {
		keep[o.Name] = true
	}
	return keep
}
