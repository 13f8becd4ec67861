package models

import (
	"encoding/json"
	"sort"
)

// StringSet is a set of strings that marshals to a sorted JSON array, used
// for enrolled-course and enrolled-student cross-references.
type StringSet map[string]struct{}

// NewStringSet builds a set from the given values.
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts value and reports whether it was absent.
func (s StringSet) Add(value string) bool {
	if _, ok := s[value]; ok {
		return false
	}
	s[value] = struct{}{}
	return true
}

// Remove deletes value and reports whether it was present.
func (s StringSet) Remove(value string) bool {
	if _, ok := s[value]; !ok {
		return false
	}
	delete(s, value)
	return true
}

// Has reports membership.
func (s StringSet) Has(value string) bool {
	_, ok := s[value]
	return ok
}

// Len returns the number of members.
func (s StringSet) Len() int {
	return len(s)
}

// Values returns the members in sorted order.
func (s StringSet) Values() []string {
	values := make([]string, 0, len(s))
	for v := range s {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// Clone returns an independent copy.
func (s StringSet) Clone() StringSet {
	clone := make(StringSet, len(s))
	for v := range s {
		clone[v] = struct{}{}
	}
	return clone
}

// MarshalJSON renders the set as a sorted array.
func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON reads the set from an array.
func (s *StringSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewStringSet(values...)
	return nil
}
