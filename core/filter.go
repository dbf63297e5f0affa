package core

import "strings"

// MatchMode tells how a filter value is compared to a field.
type MatchMode int

const (
	// Contains is a case-sensitive substring match.
	Contains MatchMode = iota
	// ContainsFold is a case-insensitive substring match.
	ContainsFold
	// Equal is an exact match.
	Equal
)

// FieldMatch pairs a record field with the filter value it must satisfy.
type FieldMatch struct {
	Field string
	Want  string
	Mode  MatchMode
}

// Matches reports whether Field satisfies Want. An empty Want always passes.
func (fm FieldMatch) Matches() bool {
	if fm.Want == "" {
		return true
	}
	switch fm.Mode {
	case ContainsFold:
		return strings.Contains(strings.ToLower(fm.Field), strings.ToLower(fm.Want))
	case Equal:
		return fm.Field == fm.Want
	default:
		return strings.Contains(fm.Field, fm.Want)
	}
}

// MatchAll combines field matches with a logical AND.
func MatchAll(matches ...FieldMatch) bool {
	for _, fm := range matches {
		if !fm.Matches() {
			return false
		}
	}
	return true
}

// MatchAny reports whether any of the fields matches want. An empty want always passes.
func MatchAny(want string, mode MatchMode, fields ...string) bool {
	if want == "" {
		return true
	}
	for _, f := range fields {
		if (FieldMatch{Field: f, Want: want, Mode: mode}).Matches() {
			return true
		}
	}
	return false
}
