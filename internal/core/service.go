package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrSeriesNotFound is returned when a named series has no rows.
var ErrSeriesNotFound = errors.New("series not found")

// ErrUnknownColumn is returned when a column name or index does not exist.
var ErrUnknownColumn = errors.New("column not found")

// Workbook is one loaded specification source.
type Workbook struct {
	Source   string
	Table    *SpecTable
	Codes    CodeBook
	LoadedAt time.Time
}

// PublishRecord is what a Publisher stores for one series.
type PublishRecord struct {
	PartType string
	PartCode string
	PartName string
	SpecData []byte
}

// Publisher persists exported series. Implemented by the store package.
type Publisher interface {
	Publish(ctx context.Context, rec PublishRecord) error
}

// Service serves cascading queries and exports over the current workbook.
//
// A loaded workbook is never modified. Load swaps in a new snapshot, so
// readers holding a Tree from the previous one keep a consistent view.
type Service struct {
	layout Layout

	mu   sync.RWMutex
	snap *snapshot
}

type snapshot struct {
	wb       Workbook
	exporter *Exporter

	treesMu sync.Mutex
	trees   map[string]*Tree
}

// Resolution is the state of a cascade for one path.
type Resolution struct {
	Series         string         `json:"series"`
	Path           map[int]string `json:"path"`
	NextColumn     int            `json:"next_column"`
	NextColumnName string         `json:"next_column_name,omitempty"`
	Available      []string       `json:"available"`
	Complete       bool           `json:"complete"`
	Leaf           []LeafField    `json:"leaf"`
}

// NewService creates a Service over wb using layout.
func NewService(wb Workbook, layout Layout) (*Service, error) {
	s := &Service{layout: layout}
	if err := s.Load(wb); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the current workbook.
func (s *Service) Load(wb Workbook) error {
	if wb.Table == nil {
		return ErrEmptyTable
	}
	exporter, err := NewExporter(wb.Table, s.layout, wb.Codes)
	if err != nil {
		return fmt.Errorf("load %s: %w", wb.Source, err)
	}

	snap := &snapshot{
		wb:       wb,
		exporter: exporter,
		trees:    make(map[string]*Tree),
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	return nil
}

func (s *Service) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Workbook returns the loaded workbook.
func (s *Service) Workbook() Workbook {
	return s.current().wb
}

// Layout returns the layout resolved against the loaded headers.
func (s *Service) Layout() ResolvedLayout {
	return s.current().exporter.Layout()
}

// Catalog lists classifications and series of the loaded workbook.
func (s *Service) Catalog() []ClassificationInfo {
	return s.current().exporter.Catalog()
}

// ColumnIndex resolves a column given by header name or decimal index.
func (s *Service) ColumnIndex(ref string) (int, error) {
	table := s.current().wb.Table
	ref = strings.TrimSpace(ref)
	if col := table.ColumnIndex(ref); col >= 0 {
		return col, nil
	}
	if col, err := strconv.Atoi(ref); err == nil && col >= 0 && col < table.Width() {
		return col, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownColumn, ref)
}

// Tree returns the hierarchy tree of series. An empty name selects the whole
// table. Trees are built on first use and reused for the snapshot.
func (s *Service) Tree(series string) (*Tree, error) {
	return s.current().tree(series)
}

func (sn *snapshot) tree(series string) (*Tree, error) {
	series = strings.TrimSpace(series)

	sn.treesMu.Lock()
	defer sn.treesMu.Unlock()

	if t, ok := sn.trees[series]; ok {
		return t, nil
	}

	rows := sn.wb.Table
	if series != "" {
		if !sn.exporter.HasSeries(series) {
			return nil, fmt.Errorf("%w: %s", ErrSeriesNotFound, series)
		}
		rows = sn.exporter.seriesRows(series)
	}

	t := BuildTree(rows, sn.exporter.Layout().Hierarchy)
	sn.trees[series] = t
	return t, nil
}

// AvailableValues returns the values offered at column for path in series.
func (s *Service) AvailableValues(series string, path SelectionPath, column int) ([]string, error) {
	t, err := s.Tree(series)
	if err != nil {
		return nil, err
	}
	return t.AvailableValues(path, column), nil
}

// Resolve reports the next unresolved level of path with its values, or the
// leaf fields once path is complete.
func (s *Service) Resolve(series string, path SelectionPath) (*Resolution, error) {
	snap := s.current()
	t, err := snap.tree(series)
	if err != nil {
		return nil, err
	}

	res := &Resolution{
		Series:     series,
		Path:       path.Map(),
		NextColumn: -1,
		Available:  []string{},
		Leaf:       []LeafField{},
	}

	if next, ok := t.NextLevel(path); ok {
		res.NextColumn = next
		res.NextColumnName = snap.wb.Table.Column(next)
		if vals := t.AvailableValues(path, next); vals != nil {
			res.Available = vals
		}
		return res, nil
	}

	res.Complete = t.Complete(path)
	if leaf := t.LeafValues(path); leaf != nil {
		res.Leaf = leaf
	}
	return res, nil
}

// Export builds the whole-table schema.
func (s *Service) Export() ExportSchema {
	return s.current().exporter.Export()
}

// ExportSeries builds the single-series schema of name.
func (s *Service) ExportSeries(name string) (*SeriesSchema, error) {
	schema, ok := s.current().exporter.ExportSeries(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSeriesNotFound, name)
	}
	return schema, nil
}

// Publish exports series and hands it to p together with its
// classification and code.
func (s *Service) Publish(ctx context.Context, series string, p Publisher) (PublishRecord, error) {
	snap := s.current()

	schema, ok := snap.exporter.ExportSeries(series)
	if !ok {
		return PublishRecord{}, fmt.Errorf("%w: %s", ErrSeriesNotFound, series)
	}

	data, err := EncodeJSON(schema)
	if err != nil {
		return PublishRecord{}, fmt.Errorf("encode series %s: %w", series, err)
	}

	rec := PublishRecord{
		PartType: snap.exporter.ClassificationOf(series),
		PartCode: snap.wb.Codes.Code(series),
		PartName: strings.TrimSpace(series),
		SpecData: data,
	}
	if err := p.Publish(ctx, rec); err != nil {
		return PublishRecord{}, fmt.Errorf("publish series %s: %w", series, err)
	}
	return rec, nil
}

// EncodeJSON renders v as indented JSON without HTML escaping, matching the
// format expected by the schema consumer.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
