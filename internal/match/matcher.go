// Package match implements the cross-table value-matching heuristic:
// scan the other tables for a cell exactly equal to a clicked or hovered
// value, under a per-table row budget.
//
// This is deliberately not referential-integrity inference. Any equal
// scalar anywhere in a row counts, so unrelated columns with coincidental
// values produce false positives. The feature is "explore", not
// "guarantee correctness".
package match

import (
	"context"
	"log/slog"

	"github.com/jetview/jetview/internal/catalog"
	"github.com/jetview/jetview/internal/jet"
)

// Defaults applied when a Matcher field is zero. The click ceiling is
// larger than the hover ceiling: a click is a deliberate action, a hover
// must stay cheap.
const (
	DefaultClickScanCeiling = 10000
	DefaultHoverScanCeiling = 200
)

// scanBatch is the per-fetch row batch. Context cancellation is checked
// between batches so a superseded scan stops promptly.
const scanBatch = 512

// Match is the result of a click-path scan: the first table, in catalog
// order, holding an equal value, and the offset of the matching row.
type Match struct {
	Table    string
	RowIndex int
}

// Matcher scans catalogs for equal values.
type Matcher struct {
	ClickScanCeiling int
	HoverScanCeiling int
}

func (m *Matcher) clickCeiling() int {
	if m.ClickScanCeiling > 0 {
		return m.ClickScanCeiling
	}
	return DefaultClickScanCeiling
}

func (m *Matcher) hoverCeiling() int {
	if m.HoverScanCeiling > 0 {
		return m.HoverScanCeiling
	}
	return DefaultHoverScanCeiling
}

// FindMatch is the click path: scan every table but origin, in catalog
// order, up to the click ceiling each, and stop at the first cell equal
// to value. Returns nil when nothing matched. A table whose fetch fails
// is skipped; null values never match anything useful and return nil
// immediately.
func (m *Matcher) FindMatch(ctx context.Context, cat *catalog.Catalog, origin string, value jet.Value) (*Match, error) {
	if value.IsNull() {
		return nil, nil
	}
	for _, entry := range cat.Entries() {
		if entry.Name == origin {
			continue
		}
		h, ok := cat.Handle(entry.Name)
		if !ok {
			continue
		}
		idx, found, err := scanTable(ctx, h, value, m.clickCeiling())
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			slog.DebugContext(ctx, "Skipping table after scan failure", "table", entry.Name, "err", err)
			continue
		}
		if found {
			return &Match{Table: entry.Name, RowIndex: idx}, nil
		}
	}
	return nil, nil
}

// TablesContaining is the hover path: the names of all tables but origin
// holding a cell equal to value, each scanned up to the hover ceiling.
// Results come back in catalog order. Best-effort and advisory.
func (m *Matcher) TablesContaining(ctx context.Context, cat *catalog.Catalog, origin string, value jet.Value) ([]string, error) {
	if value.IsNull() {
		return nil, nil
	}
	var tables []string
	for _, entry := range cat.Entries() {
		if entry.Name == origin {
			continue
		}
		h, ok := cat.Handle(entry.Name)
		if !ok {
			continue
		}
		_, found, err := scanTable(ctx, h, value, m.hoverCeiling())
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			slog.DebugContext(ctx, "Skipping table after scan failure", "table", entry.Name, "err", err)
			continue
		}
		if found {
			tables = append(tables, entry.Name)
		}
	}
	return tables, nil
}

// scanTable reads up to ceiling rows in batches and compares every cell.
// Returns the offset of the first matching row.
func scanTable(ctx context.Context, h jet.TableHandle, value jet.Value, ceiling int) (int, bool, error) {
	for offset := 0; offset < ceiling; offset += scanBatch {
		if err := ctx.Err(); err != nil {
			return 0, false, err
		}
		limit := min(scanBatch, ceiling-offset)
		rows, err := h.Rows(offset, limit)
		if err != nil {
			return 0, false, err
		}
		for i, row := range rows {
			for _, cell := range row {
				if cell.Equal(value) {
					return offset + i, true, nil
				}
			}
		}
		if len(rows) < limit {
			break
		}
	}
	return 0, false, nil
}
