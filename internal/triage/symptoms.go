package triage

import (
	"encoding/json"
	"sort"
)

// SymptomSet holds canonical symptom names. It marshals to a sorted JSON array.
type SymptomSet map[string]struct{}

func NewSymptomSet(names ...string) SymptomSet {
	s := make(SymptomSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s SymptomSet) Add(name string) {
	s[name] = struct{}{}
}

func (s SymptomSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// HasAll reports whether every name is present. It is false for an empty list.
func (s SymptomSet) HasAll(names ...string) bool {
	if len(names) == 0 {
		return false
	}
	for _, n := range names {
		if !s.Has(n) {
			return false
		}
	}
	return true
}

// Sorted returns the names in lexical order, never nil.
func (s SymptomSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (s SymptomSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *SymptomSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*s = NewSymptomSet(names...)
	return nil
}
