// API response types.

package dto

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// CatalogEntry is one table in the catalog list.
type CatalogEntry struct {
	Name     string `json:"name"`
	RowCount int    `json:"rowCount"`
}

// Cell is one rendered grid cell: the same typed-scalar shape as
// CellValue, so the frontend can echo a cell back into a match or hover
// request unchanged.
type Cell = CellValue

// GridResponse is the payload for rendering one table. Rows are arrays
// in Columns order, ready for the grid widget.
type GridResponse struct {
	Table     string         `json:"table"`
	Columns   []string       `json:"columns"`
	Widths    map[string]int `json:"widths"`
	Rows      [][]Cell       `json:"rows"`
	Truncated bool           `json:"truncated"`
	Total     int            `json:"total"`
}

// SessionResponse describes the current session, if any.
type SessionResponse struct {
	Loaded   bool           `json:"loaded"`
	Session  string         `json:"session,omitempty"`
	Token    string         `json:"token,omitempty"`
	FileName string         `json:"fileName,omitempty"`
	Catalog  []CatalogEntry `json:"catalog,omitempty"`
	Active   string         `json:"active,omitempty"`
}

// UploadResponse is returned after a successful file load.
type UploadResponse struct {
	Session  string         `json:"session"`
	Token    string         `json:"token"`
	FileName string         `json:"fileName"`
	Catalog  []CatalogEntry `json:"catalog"`
	// Saved reports whether the file was persisted for restore on
	// restart. Persistence failure does not fail the load.
	Saved   bool   `json:"saved"`
	Backend string `json:"backend,omitempty"`
}

// RowsResponse is one page of raw rows.
type RowsResponse struct {
	Offset int      `json:"offset"`
	Rows   [][]Cell `json:"rows"`
}

// MatchResponse is the click-path outcome.
type MatchResponse struct {
	Found bool `json:"found"`
	// Grid is the newly displayed table when Found.
	Grid *GridResponse `json:"grid,omitempty"`
	// RowIndex is the matching row's offset in the target, for selection
	// highlighting.
	RowIndex int `json:"rowIndex"`
}

// HoverResponse is the hover-path outcome: catalog tables to mark as
// referencing candidates.
type HoverResponse struct {
	Tables []string `json:"tables"`
	// Throttled reports that the scan was skipped by the hover rate
	// limit; the previous highlight state should be kept.
	Throttled bool `json:"throttled"`
}
