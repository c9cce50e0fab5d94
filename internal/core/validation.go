package core

// validation.go checks the only structural promise a sheet has to keep:
// the headers a layout depends on are present. Cell contents are never
// validated; a blank or odd cell just yields fewer values downstream.

import (
	"fmt"
	"strings"
)

// MissingHeadersError lists required headers absent from a sheet.
type MissingHeadersError struct {
	Missing []string
}

func (e *MissingHeadersError) Error() string {
	return fmt.Sprintf("missing required column: %s", strings.Join(e.Missing, ", "))
}

// HeaderIndex maps trimmed header names to their first position.
type HeaderIndex map[string]int

// MakeHeaderIndex indexes headers, skipping blanks. The first occurrence of
// a duplicated header wins.
func MakeHeaderIndex(headers []string) HeaderIndex {
	idx := make(HeaderIndex, len(headers))
	for i, h := range headers {
		key := strings.TrimSpace(h)
		if key == "" {
			continue
		}
		if _, ok := idx[key]; !ok {
			idx[key] = i
		}
	}
	return idx
}

// ValidateHeaders returns a *MissingHeadersError naming every entry of
// required that is not among headers.
func ValidateHeaders(headers []string, required []string) error {
	if len(headers) == 0 {
		return ErrEmptyTable
	}
	idx := MakeHeaderIndex(headers)

	var missing []string
	for _, name := range required {
		if _, ok := idx[strings.TrimSpace(name)]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingHeadersError{Missing: missing}
	}
	return nil
}
