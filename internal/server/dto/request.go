// API request types with path/query/json tags for parameter binding.

package dto

import (
	"time"
)

// Validatable is implemented by all request types.
type Validatable interface {
	Validate() error
}

// EmptyRequest is the input for endpoints that take no parameters.
type EmptyRequest struct{}

// Validate implements Validatable.
func (r *EmptyRequest) Validate() error { return nil }

// SelectTableRequest selects the displayed table.
type SelectTableRequest struct {
	Table string `path:"table" json:"-"`
}

// Validate implements Validatable.
func (r *SelectTableRequest) Validate() error {
	if r.Table == "" {
		return MissingField("table")
	}
	return nil
}

// RowsRequest fetches one page of raw rows.
type RowsRequest struct {
	Table  string `path:"table" json:"-"`
	Offset int    `query:"offset" json:"-"`
	Limit  int    `query:"limit" json:"-"`
}

// Validate implements Validatable.
func (r *RowsRequest) Validate() error {
	if r.Table == "" {
		return MissingField("table")
	}
	if r.Offset < 0 {
		return InvalidField("offset", "must not be negative")
	}
	if r.Limit < 0 {
		return InvalidField("limit", "must not be negative")
	}
	return nil
}

// CellValue is a typed scalar crossing the JSON boundary. The kind
// discriminator preserves exact-equality semantics over transport: the
// JSON number 5 and the JSON string "5" arrive as distinct kinds and
// never compare equal.
type CellValue struct {
	Kind   string   `json:"kind"`
	Text   *string  `json:"text,omitempty"`
	Number *float64 `json:"number,omitempty"`
	Bool   *bool    `json:"bool,omitempty"`
	Date   *string  `json:"date,omitempty"` // RFC3339
}

// Validate implements Validatable.
func (v *CellValue) Validate() error {
	switch v.Kind {
	case "null":
	case "text":
		if v.Text == nil {
			return MissingField("text")
		}
	case "number":
		if v.Number == nil {
			return MissingField("number")
		}
	case "bool":
		if v.Bool == nil {
			return MissingField("bool")
		}
	case "date":
		if v.Date == nil {
			return MissingField("date")
		}
		if _, err := time.Parse(time.RFC3339, *v.Date); err != nil {
			return InvalidField("date", err.Error())
		}
	default:
		return InvalidField("kind", "must be one of null, text, number, bool, date")
	}
	return nil
}

// MatchRequest is the click path: find the first other table holding a
// cell equal to Value. Table tags the request with the view it was made
// from; a mismatch with the displayed table is rejected as stale.
type MatchRequest struct {
	Table string    `json:"table"`
	Value CellValue `json:"value"`
}

// Validate implements Validatable.
func (r *MatchRequest) Validate() error {
	if r.Table == "" {
		return MissingField("table")
	}
	return r.Value.Validate()
}

// HoverRequest is the hover path: list the other tables holding a cell
// equal to Value. Tagged like MatchRequest.
type HoverRequest struct {
	Table string    `json:"table"`
	Value CellValue `json:"value"`
}

// Validate implements Validatable.
func (r *HoverRequest) Validate() error {
	if r.Table == "" {
		return MissingField("table")
	}
	return r.Value.Validate()
}
