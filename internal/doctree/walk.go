package doctree

// Walk visits every section in pre-order (parent before children, siblings in
// discovery order). depth is 0 for roots. Returning false from fn skips the
// section's subtree.
//
// An explicit stack is used so that pathologically deep outlines cannot
// exhaust the goroutine stack.
func Walk(sections []*Section, fn func(s *Section, depth int) bool) {
	type frame struct {
		s     *Section
		depth int
	}
	stack := make([]frame, 0, len(sections))
	for i := len(sections) - 1; i >= 0; i-- {
		stack = append(stack, frame{s: sections[i]})
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.s == nil {
			continue
		}
		if !fn(top.s, top.depth) {
			continue
		}
		for i := len(top.s.Subsections) - 1; i >= 0; i-- {
			stack = append(stack, frame{s: top.s.Subsections[i], depth: top.depth + 1})
		}
	}
}

// Count returns the number of sections in the forest.
func Count(sections []*Section) int {
	n := 0
	Walk(sections, func(*Section, int) bool {
		n++
		return true
	})
	return n
}

// FindByID returns the section with the given id, or nil.
func FindByID(sections []*Section, id string) *Section {
	var found *Section
	Walk(sections, func(s *Section, _ int) bool {
		if found != nil {
			return false
		}
		if s.ID == id {
			found = s
			return false
		}
		return true
	})
	return found
}

// SetSelected marks the section with the given id and all of its descendants.
// It reports whether the id was found.
func SetSelected(sections []*Section, id string, selected bool) bool {
	target := FindByID(sections, id)
	if target == nil {
		return false
	}
	Walk([]*Section{target}, func(s *Section, _ int) bool {
		s.Selected = selected
		return true
	})
	return true
}

// SelectAll sets the selected flag on every section.
func SelectAll(sections []*Section, selected bool) {
	Walk(sections, func(s *Section, _ int) bool {
		s.Selected = selected
		return true
	})
}

// Selected returns the selected sections flattened in document order. The
// returned sections are copies without subsections.
func Selected(sections []*Section) []*Section {
	var out []*Section
	Walk(sections, func(s *Section, _ int) bool {
		if s.Selected {
			c := *s
			c.Subsections = nil
			out = append(out, &c)
		}
		return true
	})
	return out
}

// Clone deep-copies a forest so callers can mutate the copy freely.
func Clone(sections []*Section) []*Section {
	if sections == nil {
		return nil
	}
	type pair struct {
		src *Section
		dst *Section
	}
	out := make([]*Section, len(sections))
	var stack []pair
	for i, s := range sections {
		if s == nil {
			continue
		}
		c := *s
		out[i] = &c
		stack = append(stack, pair{src: s, dst: &c})
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		p.dst.Subsections = make([]*Section, len(p.src.Subsections))
		for i, child := range p.src.Subsections {
			if child == nil {
				continue
			}
			c := *child
			p.dst.Subsections[i] = &c
			stack = append(stack, pair{src: child, dst: &c})
		}
	}
	return out
}
