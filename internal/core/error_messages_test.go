package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "nil error returns empty", err: nil, wantCode: ""},
		{name: "empty table", err: fmt.Errorf("read sheet: %w", ErrEmptyTable), wantCode: "SHEET001"},
		{name: "missing headers", err: &MissingHeadersError{Missing: []string{"규격"}}, wantCode: "SHEET002"},
		{name: "no hierarchy", err: fmt.Errorf("layout %q: %w", "standard", ErrNoHierarchy), wantCode: "SHEET003"},
		{name: "unknown series", err: fmt.Errorf("%w: bolt", ErrSeriesNotFound), wantCode: "PATH001"},
		{name: "unknown column", err: fmt.Errorf("%w: 99", ErrUnknownColumn), wantCode: "PATH002"},
		{name: "reload without source", err: errors.New("reload disabled: no source file configured"), wantCode: "SHEET005"},
		{name: "bad request", err: errors.New("bad request: unexpected EOF"), wantCode: "REQ001"},
		{name: "connection refused", err: errors.New("dial tcp 127.0.0.1:5432: connection refused"), wantCode: "STORE001"},
		{name: "case insensitive", err: errors.New("SERIES NOT FOUND"), wantCode: "PATH001"},
		{name: "unknown error returns default", err: errors.New("some random internal error"), wantCode: "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, MapError(tt.err).Code)
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(fmt.Errorf("%w: nut", ErrSeriesNotFound))
	assert.Equal(t, "The requested series does not exist (Code: PATH001). Pick a series from the catalog", got)
	assert.Empty(t, FormatUserError(nil))
}

func TestIsUserFacing(t *testing.T) {
	assert.False(t, IsUserFacing(nil))
	assert.True(t, IsUserFacing(ErrEmptyTable))
	assert.False(t, IsUserFacing(errors.New("random internal error xyz")))
}

func TestNewUserError(t *testing.T) {
	assert.Nil(t, NewUserError(nil))

	techErr := fmt.Errorf("load: %w", ErrEmptyTable)
	userErr := NewUserError(techErr)
	assert.Equal(t, "The specification sheet has no header row", userErr.Error())
	assert.ErrorIs(t, userErr, ErrEmptyTable)
}
