package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/partspec/internal/core"
	"github.com/JonMunkholm/partspec/internal/logging"
)

// wholeTable is the series name addressing every row of the sheet.
const wholeTable = "*"

type healthResponse struct {
	Status     string                  `json:"status"`
	Source     string                  `json:"source"`
	Rows       int                     `json:"rows"`
	LoadedAt   time.Time               `json:"loaded_at"`
	Publishing bool                    `json:"publishing"`
	Writes     core.WriteLimiterStatus `json:"writes"`
}

type columnInfo struct {
	Index int              `json:"index"`
	Name  string           `json:"name"`
	Kind  core.ControlKind `json:"kind,omitempty"`
}

type treeResponse struct {
	Series string          `json:"series"`
	Levels []columnInfo    `json:"levels"`
	Leaves []columnInfo    `json:"leaves"`
	Nodes  []core.TreeNode `json:"nodes"`
}

type valuesResponse struct {
	Series string         `json:"series"`
	Column columnInfo     `json:"column"`
	Path   map[int]string `json:"path"`
	Values []string       `json:"values"`
}

type resolveRequest struct {
	Path map[string]string `json:"path"`
}

type publishResponse struct {
	PartCode string `json:"part_code"`
	PartType string `json:"part_type"`
	PartName string `json:"part_name"`
	Bytes    int    `json:"bytes"`
}

type reloadResponse struct {
	Source   string    `json:"source"`
	Rows     int       `json:"rows"`
	Series   int       `json:"series"`
	LoadedAt time.Time `json:"loaded_at"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	wb := s.service.Workbook()
	s.writeJSON(w, r, http.StatusOK, healthResponse{
		Status:     "ok",
		Source:     wb.Source,
		Rows:       wb.Table.Len(),
		LoadedAt:   wb.LoadedAt,
		Publishing: s.parts != nil,
		Writes:     s.writes.Status(),
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.service.Catalog())
}

// handleTree dumps the hierarchy of one series, or of the whole sheet when
// the series is "*".
func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	series := seriesParam(r)
	t, err := s.service.Tree(series)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	table := s.service.Workbook().Table
	resp := treeResponse{
		Series: series,
		Levels: make([]columnInfo, 0, t.Depth()),
		Leaves: make([]columnInfo, 0, len(t.LeafColumns())),
		Nodes:  t.Dump(),
	}
	for _, col := range t.Levels() {
		resp.Levels = append(resp.Levels, columnInfo{Index: col, Name: table.Column(col)})
	}
	for _, col := range t.LeafColumns() {
		resp.Leaves = append(resp.Leaves, columnInfo{Index: col, Name: table.Column(col), Kind: t.LeafKind(col)})
	}
	if resp.Nodes == nil {
		resp.Nodes = []core.TreeNode{}
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

// handleValues answers GET /api/series/{series}/values/{column}?sel=col:value.
func (s *Server) handleValues(w http.ResponseWriter, r *http.Request) {
	series := seriesParam(r)
	col, err := s.service.ColumnIndex(pathParam(r, "column"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	path, err := s.selectionFromQuery(r.URL.Query()["sel"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	values, err := s.service.AvailableValues(series, path, col)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if values == nil {
		values = []string{}
	}

	s.writeJSON(w, r, http.StatusOK, valuesResponse{
		Series: series,
		Column: columnInfo{Index: col, Name: s.service.Workbook().Table.Column(col)},
		Path:   path.Map(),
		Values: values,
	})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	series := seriesParam(r)

	var req resolveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	sel := make(map[int]string, len(req.Path))
	for ref, value := range req.Path {
		col, err := s.service.ColumnIndex(ref)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		sel[col] = value
	}

	res, err := s.service.Resolve(series, core.NewSelectionPath(sel))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.service.Export())
}

func (s *Server) handleExportSeries(w http.ResponseWriter, r *http.Request) {
	schema, err := s.service.ExportSeries(pathParam(r, "series"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, schema)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	if s.parts == nil {
		s.respondError(w, r, ErrPublishingDisabled)
		return
	}

	rec, err := s.service.Publish(r.Context(), pathParam(r, "series"), s.parts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, publishResponse{
		PartCode: rec.PartCode,
		PartType: rec.PartType,
		PartName: rec.PartName,
		Bytes:    len(rec.SpecData),
	})
}

func (s *Server) handleListParts(w http.ResponseWriter, r *http.Request) {
	if s.parts == nil {
		s.respondError(w, r, ErrPublishingDisabled)
		return
	}

	specs, err := s.parts.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, specs)
}

func (s *Server) handleGetPart(w http.ResponseWriter, r *http.Request) {
	if s.parts == nil {
		s.respondError(w, r, ErrPublishingDisabled)
		return
	}

	spec, err := s.parts.Get(r.Context(), pathParam(r, "code"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, spec)
}

func (s *Server) handleDeactivatePart(w http.ResponseWriter, r *http.Request) {
	if s.parts == nil {
		s.respondError(w, r, ErrPublishingDisabled)
		return
	}

	if err := s.parts.Deactivate(r.Context(), pathParam(r, "code")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReload re-reads the source and swaps it in. A failed read keeps the
// current workbook.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.reload == nil {
		s.respondError(w, r, ErrReloadDisabled)
		return
	}

	wb, err := s.reload(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.service.Load(wb); err != nil {
		s.respondError(w, r, err)
		return
	}

	series := 0
	for _, c := range s.service.Catalog() {
		series += len(c.Series)
	}
	logging.FromContext(r.Context()).Info("workbook reloaded",
		"source", wb.Source,
		"rows", wb.Table.Len(),
		"series", series,
	)

	s.writeJSON(w, r, http.StatusOK, reloadResponse{
		Source:   wb.Source,
		Rows:     wb.Table.Len(),
		Series:   series,
		LoadedAt: wb.LoadedAt,
	})
}

// selectionFromQuery parses repeated "column:value" parameters. Columns are
// header names or indexes.
func (s *Server) selectionFromQuery(params []string) (core.SelectionPath, error) {
	sel := make(map[int]string, len(params))
	for _, p := range params {
		ref, value, ok := strings.Cut(p, ":")
		if !ok {
			return core.SelectionPath{}, fmt.Errorf("%w: selection %q is not column:value", errBadRequest, p)
		}
		col, err := s.service.ColumnIndex(ref)
		if err != nil {
			return core.SelectionPath{}, err
		}
		sel[col] = value
	}
	return core.NewSelectionPath(sel), nil
}

func seriesParam(r *http.Request) string {
	series := pathParam(r, "series")
	if series == wholeTable {
		return ""
	}
	return series
}

// pathParam returns the decoded URL parameter name.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
