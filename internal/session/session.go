// Package session owns the mutable view state: the open database, its
// catalog, and the currently displayed table. All other components read
// this state; only Session methods write it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jetview/jetview/internal/catalog"
	"github.com/jetview/jetview/internal/config"
	"github.com/jetview/jetview/internal/jet"
	"github.com/jetview/jetview/internal/match"
	"github.com/jetview/jetview/internal/sample"
	"github.com/maruel/ksid"
	"golang.org/x/time/rate"
)

var (
	// ErrTableNotFound is returned when a named table has no usable handle.
	ErrTableNotFound = errors.New("session: table not found")
	// ErrStaleRequest is returned when a request is tagged with a table
	// that is no longer the displayed one. The caller's view has moved
	// on; the response must not mutate state.
	ErrStaleRequest = errors.New("session: request references a superseded view")
)

// Grid is the payload for rendering one table.
type Grid struct {
	Table     string
	Columns   []string
	Widths    map[string]int
	Rows      []jet.Row
	Truncated bool
	Total     int
}

// ActivateResult is the outcome of a cell click.
type ActivateResult struct {
	// Found reports whether any other table held an equal value.
	Found bool
	// Grid is the newly displayed target table when Found.
	Grid *Grid
	// RowIndex is the matching row's offset in the target table, for
	// selection highlighting.
	RowIndex int
}

// Session is one open database from successful load until replaced.
type Session struct {
	id       ksid.ID
	fileName string
	reader   jet.Reader
	cat      *catalog.Catalog

	sampler    *sample.Sampler
	matcher    *match.Matcher
	widthCfg   sample.WidthConfig
	sampleSize int

	mu      sync.Mutex
	active  string
	hover   *rate.Limiter
	memoSet bool
	memoVal jet.Value
	memoRes []string
}

// New creates a session over an opened reader and its built catalog.
func New(fileName string, r jet.Reader, cat *catalog.Catalog, limits config.Limits) *Session {
	return &Session{
		id:       ksid.NewID(),
		fileName: fileName,
		reader:   r,
		cat:      cat,
		sampler: &sample.Sampler{
			DisplayCeiling: limits.DisplayCeiling,
			SampleBlocks:   limits.SampleBlocks,
		},
		matcher: &match.Matcher{
			ClickScanCeiling: limits.ClickScanCeiling,
			HoverScanCeiling: limits.HoverScanCeiling,
		},
		widthCfg: sample.WidthConfig{
			PixelsPerChar: limits.PixelsPerChar,
			PaddingPx:     limits.PaddingPx,
			MinPx:         limits.MinColumnPx,
			MaxPx:         limits.MaxColumnPx,
		},
		sampleSize: limits.SampleSize,
		hover:      rate.NewLimiter(rate.Limit(limits.HoverPerSecond), 1),
	}
}

// ID returns the session identifier used to tag requests and responses.
func (s *Session) ID() ksid.ID { return s.id }

// FileName returns the name of the loaded file.
func (s *Session) FileName() string { return s.fileName }

// Catalog returns the catalog entries in enumeration order.
func (s *Session) Catalog() []catalog.Entry { return s.cat.Entries() }

// ActiveTable returns the currently displayed table, or "".
func (s *Session) ActiveTable() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Close releases the underlying reader.
func (s *Session) Close() error {
	return s.reader.Close()
}

// SelectTable makes name the displayed table and returns its grid:
// display rows up to the ceiling, plus column widths estimated from a
// spread sample. A sampling failure falls back to estimating from the
// display rows rather than failing the selection.
func (s *Session) SelectTable(ctx context.Context, name string) (*Grid, error) {
	h, ok := s.cat.Handle(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	rows, truncated, err := s.sampler.FetchForDisplay(ctx, h)
	if err != nil {
		return nil, err
	}
	sampleRows, err := s.sampler.FetchForSampling(ctx, h, s.sampleSize)
	if err != nil {
		sampleRows = rows
		if len(sampleRows) > s.sampleSize {
			sampleRows = sampleRows[:s.sampleSize]
		}
	}
	columns := h.Columns()
	widths := sample.Widths(s.widthCfg, columns, sampleRows)

	total := 0
	for _, e := range s.cat.Entries() {
		if e.Name == name {
			total = e.RowCount
			break
		}
	}

	s.mu.Lock()
	s.active = name
	s.memoSet = false
	s.mu.Unlock()

	return &Grid{
		Table:     name,
		Columns:   columns,
		Widths:    widths,
		Rows:      rows,
		Truncated: truncated,
		Total:     total,
	}, nil
}

// Columns returns the named table's column names, or false when the
// table has no usable handle.
func (s *Session) Columns(name string) ([]string, bool) {
	h, ok := s.cat.Handle(name)
	if !ok {
		return nil, false
	}
	return h.Columns(), true
}

// FetchRows returns one page of raw rows from the named table without
// changing the displayed table.
func (s *Session) FetchRows(ctx context.Context, name string, offset, limit int) ([]jet.Row, error) {
	h, ok := s.cat.Handle(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := h.Rows(offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rows of %s: %w", name, err)
	}
	return rows, nil
}

// ActivateCell is the click path. table must still be the displayed
// table, both before the scan starts and after it completes; otherwise
// the request is stale and rejected without touching view state. On a
// match the target table becomes the displayed one.
func (s *Session) ActivateCell(ctx context.Context, table string, value jet.Value) (*ActivateResult, error) {
	if err := s.checkCurrent(table); err != nil {
		return nil, err
	}
	m, err := s.matcher.FindMatch(ctx, s.cat, table, value)
	if err != nil {
		return nil, err
	}
	// The scan may have outlived a concurrent selection change.
	if err := s.checkCurrent(table); err != nil {
		return nil, err
	}
	if m == nil {
		return &ActivateResult{}, nil
	}
	grid, err := s.SelectTable(ctx, m.Table)
	if err != nil {
		return nil, err
	}
	return &ActivateResult{Found: true, Grid: grid, RowIndex: m.RowIndex}, nil
}

// HoverCell is the hover path. Repeated hovers over an equal value reuse
// the memoized result; rescans for new values are throttled, reporting
// throttled=true with no tables rather than queueing work.
func (s *Session) HoverCell(ctx context.Context, table string, value jet.Value) (tables []string, throttled bool, err error) {
	if err := s.checkCurrent(table); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	if s.memoSet && s.memoVal.Equal(value) {
		res := s.memoRes
		s.mu.Unlock()
		return res, false, nil
	}
	if !s.hover.Allow() {
		s.mu.Unlock()
		return nil, true, nil
	}
	s.mu.Unlock()

	tables, err = s.matcher.TablesContaining(ctx, s.cat, table, value)
	if err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	// Drop the result instead of memoizing against a superseded view.
	if s.active == table {
		s.memoSet = true
		s.memoVal = value
		s.memoRes = tables
	}
	s.mu.Unlock()
	return tables, false, nil
}

// ClearHover drops the hover memo, removing any highlight state.
func (s *Session) ClearHover() {
	s.mu.Lock()
	s.memoSet = false
	s.memoRes = nil
	s.mu.Unlock()
}

func (s *Session) checkCurrent(table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != table {
		return fmt.Errorf("%w: %s is not the displayed table", ErrStaleRequest, table)
	}
	return nil
}
