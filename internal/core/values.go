package core

// values.go holds the cell-level vocabulary shared by the tree builder,
// the resolver and the exporter.
//
// A spreadsheet cell may carry several selectable values separated by commas
// or line breaks ("M10, M12" or "X\nY"). Those are split into atoms. A few
// single-letter atoms are not data at all but directives for the control
// that renders the column:
//
//	E  free text input
//	C  boolean check
//	X  column not used by this series

import (
	"fmt"
	"strings"
)

// Sentinel atoms.
const (
	SentinelFreeText = "E"
	SentinelBoolean  = "C"
	SentinelExcluded = "X"
)

// ControlKind tags a leaf column with the control semantics decided from a
// representative value of the column.
type ControlKind int

const (
	KindNormal ControlKind = iota
	KindFreeText
	KindBoolean
	KindExcluded
)

// String returns a lowercase name for logs and JSON.
func (k ControlKind) String() string {
	switch k {
	case KindFreeText:
		return "free_text"
	case KindBoolean:
		return "boolean"
	case KindExcluded:
		return "excluded"
	default:
		return "normal"
	}
}

// MarshalText lets ControlKind serialize by name.
func (k ControlKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a name written by MarshalText.
func (k *ControlKind) UnmarshalText(text []byte) error {
	for _, kind := range []ControlKind{KindNormal, KindFreeText, KindBoolean, KindExcluded} {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown control kind %q", text)
}

// ControlType is the control tag written into an exported Option.
type ControlType string

const (
	ControlCombo    ControlType = "COMBO"
	ControlListBox  ControlType = "LISTBOX"
	ControlEditBox  ControlType = "EDITBOX"
	ControlCheckBox ControlType = "CHECKBOX"
)

// KindOf classifies a representative atom, ignoring case. Blank samples are
// normal.
func KindOf(sample string) ControlKind {
	switch strings.ToUpper(strings.TrimSpace(sample)) {
	case SentinelFreeText:
		return KindFreeText
	case SentinelBoolean:
		return KindBoolean
	case SentinelExcluded:
		return KindExcluded
	default:
		return KindNormal
	}
}

// IsSentinel reports whether atom is exactly one of the control directives.
// Lowercase "e", "c" and "x" are ordinary values.
func IsSentinel(atom string) bool {
	switch atom {
	case SentinelFreeText, SentinelBoolean, SentinelExcluded:
		return true
	}
	return false
}

// SplitAtoms splits a multi-value cell on commas and line breaks.
// Atoms are trimmed, empty atoms dropped and duplicates removed while keeping
// first-appearance order. A blank cell yields nil.
func SplitAtoms(cell string) []string {
	if isBlank(cell) {
		return nil
	}

	fields := strings.FieldsFunc(cell, func(r rune) bool {
		return r == ',' || r == '\n'
	})

	atoms := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		atoms = append(atoms, f)
	}
	return atoms
}

// firstAtom returns the first atom of a cell, or "" for a blank cell.
func firstAtom(cell string) string {
	atoms := SplitAtoms(cell)
	if len(atoms) == 0 {
		return ""
	}
	return atoms[0]
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// orderedSet collects distinct strings in first-appearance order.
type orderedSet struct {
	items []string
	index map[string]int
}

func newOrderedSet() *orderedSet {
	return &orderedSet{index: make(map[string]int)}
}

// add inserts s if missing and returns its position.
func (o *orderedSet) add(s string) int {
	if pos, ok := o.index[s]; ok {
		return pos
	}
	pos := len(o.items)
	o.index[s] = pos
	o.items = append(o.items, s)
	return pos
}

func (o *orderedSet) position(s string) (int, bool) {
	pos, ok := o.index[s]
	return pos, ok
}

func (o *orderedSet) len() int {
	return len(o.items)
}
