package hidden

import (
	"encoding/json"
	"fmt"
	"sort"

	"llavedesol/internal/domain/account"
)

// Set is the per-role list of message ids a user has hidden from their own panel.
// Hiding never deletes anything on the backend.
// INVARIANT: a Set belongs to exactly one role
type Set struct {
	role account.Role
	ids  map[int64]struct{}
}

// New returns an empty set for role.
func New(role account.Role) Set {
	return Set{role: role, ids: make(map[int64]struct{})}
}

// Role returns the owning role.
func (s Set) Role() account.Role { return s.role }

// Contains reports whether id is hidden.
func (s Set) Contains(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

// Add hides id. Adding twice is a no-op.
// PRE: s was built by New or Deserialize
func (s Set) Add(id int64) {
	s.ids[id] = struct{}{}
}

// Len returns the number of hidden ids.
func (s Set) Len() int { return len(s.ids) }

// IDs returns the hidden ids in ascending order.
func (s Set) IDs() []int64 {
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Serialize renders the set as a JSON array of ascending ids.
func (s Set) Serialize() string {
	data, _ := json.Marshal(s.IDs())
	return string(data)
}

// Deserialize parses the output of Serialize. An empty string is an empty set.
// POST: returns an error for anything that is not a JSON array of integers
func Deserialize(role account.Role, data string) (Set, error) {
	s := New(role)
	if data == "" {
		return s, nil
	}
	var ids []int64
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return Set{}, fmt.Errorf("decode hidden set: %w", err)
	}
	for _, id := range ids {
		s.Add(id)
	}
	return s, nil
}

// Visible returns the items whose id is not hidden, preserving order.
func Visible[T any](s Set, items []T, id func(T) int64) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !s.Contains(id(it)) {
			out = append(out, it)
		}
	}
	return out
}
