package models

import "sort"

// IDSet is a set of item identifiers
type IDSet map[int64]struct{}

// NewIDSet builds a set from ids
func NewIDSet(ids ...int64) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts ids into the set
func (s IDSet) Add(ids ...int64) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Has reports whether id is in the set. A nil set contains nothing.
func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Clone returns an independent copy of the set
func (s IDSet) Clone() IDSet {
	c := make(IDSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Slice returns the ids in ascending order
func (s IDSet) Slice() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
