package topology

import (
	"maps"
	"slices"
)

// Set is a set of node ids. A nil Set is empty and safe to read.
type Set map[string]struct{}

// NewSet returns a set holding ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id.
func (s Set) Add(id string) { s[id] = struct{}{} }

// Remove deletes id.
func (s Set) Remove(id string) { delete(s, id) }

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of members.
func (s Set) Len() int { return len(s) }

// Sorted returns the members in ascending order.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// Clone returns an independent copy. Cloning nil yields an empty set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	maps.Copy(out, s)
	return out
}

// Equal reports whether s and other have the same members.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}
