package scheme

// Element is one row of the element table. Open and Close are row indices
// into the same table; -1 means the counterpart is absent. An opener row has
// Open equal to its own index, a closer row has Close equal to its own index.
type Element struct {
	Name   string `json:"name"`
	Start  int    `json:"start"`  // offset of this tag's '<'
	Finish int    `json:"finish"` // offset of this tag's '>'
	Open   int    `json:"open"`
	Close  int    `json:"close"`
	Depth  int    `json:"depth"`
}

// stillOpen reports an opener whose closer has not been seen yet.
func (e Element) stillOpen() bool {
	return e.Open > -1 && e.Close == -1
}

// build appends one row per retained occurrence, pairing closers with the
// nearest unmatched opener of the same name. The backward scans make this
// O(n²) in the worst case.
func build(occs []Occurrence, filter NameFilter, legacy bool) []Element {
	keep := filter(occs)
	table := make([]Element, 0, len(occs))

	for _, o := range occs {
		if !keep[o.Name] {
			continue
		}

		n := len(table)
		row := Element{Name: o.Name, Start: o.Start, Finish: o.End, Open: -1, Close: -1}

		switch {
		case o.Name == Enclosure:
			row.Open, row.Close = n, n
			row.Depth = enclosureDepth(table)
		case o.Closing:
			row.Close = n
			if h := unmatchedOpener(table, o.Name); h >= 0 {
				table[h].Close = n
				row.Open = h
				row.Depth = table[h].Depth
				if legacy {
					row.Depth++
				}
			}
		default:
			row.Open = n
			if legacy {
				row.Depth = legacyOpenerDepth(table)
			} else {
				row.Depth = openerDepth(table)
			}
		}

		table = append(table, row)
	}

	return table
}

// enclosureDepth follows a run of enclosures, nests under a still-open
// opener, and otherwise dedents by one. The dedent is a heuristic and can go
// negative.
func enclosureDepth(table []Element) int {
	if len(table) == 0 {
		return 0
	}
	prev := table[len(table)-1]
	switch {
	case prev.Name == Enclosure:
		return prev.Depth
	case prev.stillOpen():
		return prev.Depth + 1
	}
	return prev.Depth - 1
}

// openerDepth nests one level below the nearest row still waiting for a closer.
func openerDepth(table []Element) int {
	for h := len(table) - 1; h >= 0; h-- {
		if table[h].Close == -1 {
			return table[h].Depth + 1
		}
	}
	return 0
}

func legacyOpenerDepth(table []Element) int {
	if len(table) == 0 {
		return 0
	}
	prev := table[len(table)-1]
	if prev.Close == -1 {
		return prev.Depth + 1
	}
	return prev.Depth - 1
}

func unmatchedOpener(table []Element, name string) int {
	for h := len(table) - 1; h >= 0; h-- {
		if table[h].Name == name && table[h].stillOpen() {
			return h
		}
	}
	return -1
}
