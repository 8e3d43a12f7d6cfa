package actions

// Selection is the set of candidate ids picked in the investigator, kept in
// the order they were selected.
type Selection struct {
	order []int64
}

// Toggle adds or removes id.
func (s *Selection) Toggle(id int64) {
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
	s.order = append(s.order, id)
}

// Has reports whether id is selected.
func (s Selection) Has(id int64) bool {
	for _, v := range s.order {
		if v == id {
			return true
		}
	}
	return false
}

// Len returns the number of selected ids.
func (s Selection) Len() int { return len(s.order) }

// IDs returns a copy of the selected ids.
func (s Selection) IDs() []int64 {
	out := make([]int64, len(s.order))
	copy(out, s.order)
	return out
}

// Clear empties the selection.
func (s *Selection) Clear() { s.order = nil }

// ControlState says which investigator buttons accept input.
type ControlState struct {
	Trash   bool
	Confirm bool
	Merge   bool
}

// Controls derives button enablement. Confirm and merge are mutually
// exclusive on the selection; everything is disabled while busy.
func Controls(sel Selection, busy bool) ControlState {
	if busy {
		return ControlState{}
	}
	return ControlState{
		Trash:   true,
		Confirm: sel.Len() == 0,
		Merge:   sel.Len() > 0,
	}
}

// Allows reports whether kind is enabled.
func (c ControlState) Allows(kind Kind) bool {
	switch kind {
	case Trash:
		return c.Trash
	case ConfirmSingleton:
		return c.Confirm
	case MergeSelected:
		return c.Merge
	default:
		return false
	}
}
