package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/partspec/internal/core"
)

// ErrUnknownLayout is returned when SHEET_LAYOUT names no registered layout.
var ErrUnknownLayout = errors.New("unknown layout")

// Layout returns the sheet layout selected by the configuration: the
// registered layout named by LayoutName, overridden field by field by
// LayoutFile when one is set.
func (c *SheetConfig) Layout() (core.Layout, error) {
	base, ok := core.Get(c.LayoutName)
	if !ok {
		return core.Layout{}, fmt.Errorf("%w: %s (known: %v)", ErrUnknownLayout, c.LayoutName, core.Names())
	}
	if c.LayoutFile == "" {
		return base, nil
	}
	return LoadLayoutFile(c.LayoutFile, base)
}

// LoadLayoutFile reads a YAML layout profile from path on top of base.
func LoadLayoutFile(path string, base core.Layout) (core.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Layout{}, fmt.Errorf("open layout file: %w", err)
	}
	defer f.Close()

	l, err := DecodeLayout(f, base)
	if err != nil {
		return core.Layout{}, fmt.Errorf("layout file %s: %w", path, err)
	}
	return l, nil
}

// DecodeLayout decodes a YAML layout profile. Keys absent from the document
// keep the value from base; unknown keys are rejected.
func DecodeLayout(r io.Reader, base core.Layout) (core.Layout, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Layout{}, err
	}

	l := base
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&l); err != nil {
			return core.Layout{}, fmt.Errorf("decode: %w", err)
		}
	}

	if err := l.Validate(); err != nil {
		return core.Layout{}, err
	}
	return l, nil
}
