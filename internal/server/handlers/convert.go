// Conversion between domain types and dto wire types.

package handlers

import (
	"time"

	"github.com/jetview/jetview/internal/catalog"
	"github.com/jetview/jetview/internal/jet"
	"github.com/jetview/jetview/internal/server/dto"
	"github.com/jetview/jetview/internal/session"
)

// cellFromValue converts a domain value to its wire shape.
func cellFromValue(v jet.Value) dto.Cell {
	switch v.Kind() {
	case jet.KindText:
		s := v.TextValue()
		return dto.Cell{Kind: "text", Text: &s}
	case jet.KindNumber:
		f := v.NumberValue()
		return dto.Cell{Kind: "number", Number: &f}
	case jet.KindBool:
		b := v.BoolValue()
		return dto.Cell{Kind: "bool", Bool: &b}
	case jet.KindDate:
		s := v.DateValue().Format(time.RFC3339)
		return dto.Cell{Kind: "date", Date: &s}
	default:
		return dto.Cell{Kind: "null"}
	}
}

// valueFromCell converts a validated wire cell to its domain value.
func valueFromCell(c dto.CellValue) jet.Value {
	switch c.Kind {
	case "text":
		return jet.Text(*c.Text)
	case "number":
		return jet.Number(*c.Number)
	case "bool":
		return jet.Bool(*c.Bool)
	case "date":
		// Validate already checked the format.
		t, _ := time.Parse(time.RFC3339, *c.Date)
		return jet.Date(t)
	default:
		return jet.Null()
	}
}

// rowsToCells renders rows as arrays in column order for the grid.
func rowsToCells(columns []string, rows []jet.Row) [][]dto.Cell {
	out := make([][]dto.Cell, len(rows))
	for i, row := range rows {
		cells := make([]dto.Cell, len(columns))
		for j, col := range columns {
			cells[j] = cellFromValue(row[col])
		}
		out[i] = cells
	}
	return out
}

// gridToResponse converts a session grid to its wire shape.
func gridToResponse(g *session.Grid) *dto.GridResponse {
	return &dto.GridResponse{
		Table:     g.Table,
		Columns:   g.Columns,
		Widths:    g.Widths,
		Rows:      rowsToCells(g.Columns, g.Rows),
		Truncated: g.Truncated,
		Total:     g.Total,
	}
}

// catalogToResponse converts catalog entries to their wire shape.
func catalogToResponse(entries []catalog.Entry) []dto.CatalogEntry {
	out := make([]dto.CatalogEntry, len(entries))
	for i, e := range entries {
		out[i] = dto.CatalogEntry{Name: e.Name, RowCount: e.RowCount}
	}
	return out
}
