package modifier

import (
	"fmt"
	"slices"
)

// Sequence hands out insertion numbers. A session shares one Sequence between
// every modifier set and the sect's grant pool so recency compares across
// collections.
type Sequence struct {
	n uint64
}

// Next returns the next insertion number.
func (s *Sequence) Next() uint64 {
	s.n++
	return s.n
}

// Set is an entity's own modifier collection.
type Set struct {
	seq  *Sequence
	mods []Modifier
}

// NewSet returns an empty set drawing insertion numbers from seq. A nil seq
// gives the set a private sequence.
func NewSet(seq *Sequence) *Set {
	if seq == nil {
		seq = &Sequence{}
	}
	return &Set{seq: seq}
}

// Add stores m, assigning an insertion number and an id when m has none. It
// returns the stored modifier.
func (s *Set) Add(m Modifier) Modifier {
	m = m.Clone()
	m.Seq = s.seq.Next()
	if m.ID == "" {
		m.ID = fmt.Sprintf("mod-%d", m.Seq)
	}
	s.mods = append(s.mods, m)
	return m.Clone()
}

// Remove deletes the modifier with id.
func (s *Set) Remove(id string) bool {
	i := slices.IndexFunc(s.mods, func(m Modifier) bool { return m.ID == id })
	if i < 0 {
		return false
	}
	s.mods = slices.Delete(s.mods, i, i+1)
	return true
}

// RemoveBySource deletes every modifier from source and returns the count.
func (s *Set) RemoveBySource(source Source) int {
	before := len(s.mods)
	s.mods = slices.DeleteFunc(s.mods, func(m Modifier) bool { return m.Source == source })
	return before - len(s.mods)
}

// Clear deletes every modifier.
func (s *Set) Clear() {
	s.mods = nil
}

// Tick advances one turn: every timed modifier loses one turn and those
// reaching zero are removed. Permanent modifiers are untouched. It returns
// the number removed.
func (s *Set) Tick() int {
	before := len(s.mods)
	kept := s.mods[:0]
	for _, m := range s.mods {
		if m.Duration != nil {
			*m.Duration--
			if *m.Duration <= 0 {
				continue
			}
		}
		kept = append(kept, m)
	}
	clear(s.mods[len(kept):])
	s.mods = kept
	return before - len(s.mods)
}

// Len returns the number of modifiers held.
func (s *Set) Len() int {
	return len(s.mods)
}

// All returns copies of every modifier in insertion order.
func (s *Set) All() []Modifier {
	out := make([]Modifier, 0, len(s.mods))
	for _, m := range s.mods {
		out = append(out, m.Clone())
	}
	return out
}

// Matching returns copies of the modifiers targeting target.
func (s *Set) Matching(target Target) []Modifier {
	var out []Modifier
	for _, m := range s.mods {
		if m.Target == target {
			out = append(out, m.Clone())
		}
	}
	return out
}
