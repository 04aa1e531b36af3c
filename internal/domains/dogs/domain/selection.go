package domain

import "slices"

// Selection is the set of dog ids marked as favorites, in the order they
// were picked. It is not safe for concurrent use.
type Selection struct {
	ids []string
}

func NewSelection(ids ...string) *Selection {
	s := &Selection{}
	for _, id := range ids {
		if id != "" && !s.Contains(id) {
			s.ids = append(s.ids, id)
		}
	}
	return s
}

// Toggle flips membership of id and reports whether it is now selected.
func (s *Selection) Toggle(id string) bool {
	if id == "" {
		return false
	}
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

func (s *Selection) Contains(id string) bool {
	return slices.Contains(s.ids, id)
}

func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the selected ids.
func (s *Selection) IDs() []string {
	return append([]string{}, s.ids...)
}

func (s *Selection) Clear() {
	s.ids = nil
}
