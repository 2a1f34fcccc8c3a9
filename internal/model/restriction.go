package model

import (
	"encoding/json"
	"sort"
	"strings"
)

// RestrictionSet is a normalised set of identifiers (categories, products or
// customer groups). The empty set means unrestricted.
type RestrictionSet struct {
	values map[string]struct{}
}

// NewRestrictionSet builds a set from raw identifiers. Blank entries are dropped
// and the rest are trimmed and lower-cased.
func NewRestrictionSet(values ...string) RestrictionSet {
	s := RestrictionSet{values: make(map[string]struct{}, len(values))}
	for _, v := range values {
		if n := normalizeIdentifier(v); n != "" {
			s.values[n] = struct{}{}
		}
	}
	return s
}

func normalizeIdentifier(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Empty reports whether the set places no restriction.
func (s RestrictionSet) Empty() bool {
	return len(s.values) == 0
}

// Len returns the number of identifiers in the set.
func (s RestrictionSet) Len() int {
	return len(s.values)
}

// Contains reports whether v (after normalisation) is in the set.
func (s RestrictionSet) Contains(v string) bool {
	if s.values == nil {
		return false
	}
	_, ok := s.values[normalizeIdentifier(v)]
	return ok
}

// ContainsAny reports whether any of vs is in the set.
func (s RestrictionSet) ContainsAny(vs []string) bool {
	for _, v := range vs {
		if s.Contains(v) {
			return true
		}
	}
	return false
}

// Values returns the identifiers in sorted order. Never nil.
func (s RestrictionSet) Values() []string {
	out := make([]string, 0, len(s.values))
	for v := range s.values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted JSON array.
func (s RestrictionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON decodes a JSON array (or null) into the set.
func (s *RestrictionSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewRestrictionSet(values...)
	return nil
}
