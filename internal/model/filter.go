package model

import "strings"

// RecordFilter holds the optional substring filters of a list query.
// An empty value means "no filter" for that parameter.
type RecordFilter struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Params returns the non-empty filter values keyed by parameter name.
// Values are kept verbatim, surrounding whitespace included.
func (f RecordFilter) Params() map[string]string {
	params := make(map[string]string, 2)
	if f.Name != "" {
		params[FilterName] = f.Name
	}
	if f.Email != "" {
		params[FilterEmail] = f.Email
	}
	return params
}

// IsEmpty reports whether no filter is applied.
func (f RecordFilter) IsEmpty() bool {
	return len(f.Params()) == 0
}

// Matches reports whether a record satisfies every non-empty filter using
// case-insensitive substring matching.
func (s *Schema) Matches(r *Record, f RecordFilter) bool {
	for param, value := range f.Params() {
		fields, ok := s.Filters[param]
		if !ok {
			continue
		}
		needle := strings.ToLower(value)
		matched := false
		for _, field := range fields {
			if strings.Contains(strings.ToLower(r.Value(field)), needle) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// Filter returns the records matching f, preserving order.
func (s *Schema) Filter(records []*Record, f RecordFilter) []*Record {
	out := make([]*Record, 0, len(records))
	for _, r := range records {
		if s.Matches(r, f) {
			out = append(out, r)
		}
	}
	return out
}
