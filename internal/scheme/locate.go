package scheme

// FirstMatch returns the first opener in rows [start, end) whose name equals
// name (any name when empty) and which carries every attribute in attrs with
// an equal value. An empty name together with no attributes is a degenerate
// query and yields -1, as does no match. end is clamped to the table size.
func (s *Scheme) FirstMatch(name string, attrs []Attribute, start, end int) int {
	if name == "" && len(attrs) == 0 {
		return -1
	}
	if start < 0 {
		s.log.Error("FirstMatch() failed", "start", start, "size", len(s.table), "error", ErrOutOfRange)
		return -1
	}
	end = min(end, len(s.table))

	for i := start; i < end; i++ {
		if s.matches(i, name, attrs) {
			return i
		}
	}
	return -1
}

// FindAll is FirstMatch returning every match in order.
func (s *Scheme) FindAll(name string, attrs []Attribute, start, end int) []int {
	if name == "" && len(attrs) == 0 {
		return nil
	}
	if start < 0 {
		s.log.Error("FindAll() failed", "start", start, "size", len(s.table), "error", ErrOutOfRange)
		return nil
	}
	end = min(end, len(s.table))

	var out []int
	for i := start; i < end; i++ {
		if s.matches(i, name, attrs) {
			out = append(out, i)
		}
	}
	return out
}

// Select runs FirstMatch for a selector such as `item` or
// `h1[@class="title"][@hidden]`. Malformed selectors yield -1.
func (s *Scheme) Select(expr string, start, end int) int {
	sel, err := ParseSelector(expr)
	if err != nil {
		s.log.Error("Select() failed", "selector", expr, "error", err)
		return -1
	}
	return s.FirstMatch(sel.Name, sel.Attributes, start, end)
}

// Children returns the openers directly inside opener i, one level deeper.
func (s *Scheme) Children(i int) []int {
	if !s.inRange("Children", i) {
		return nil
	}
	e := s.table[i]
	if e.Open != i || e.Close == -1 || e.Close == i {
		return nil
	}

	var out []int
	for j := i + 1; j < e.Close; j++ {
		if s.table[j].Open == j && s.table[j].Depth == e.Depth+1 {
			out = append(out, j)
		}
	}
	return out
}

func (s *Scheme) matches(i int, name string, attrs []Attribute) bool {
	e := s.table[i]
	if e.Open != i {
		return false
	}
	if name != "" && e.Name != name {
		return false
	}
	if len(attrs) == 0 {
		return true
	}
	return containsAll(s.attributesAt(i), attrs)
}

func containsAll(have, want []Attribute) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
