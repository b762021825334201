// Package jettest provides in-memory jet.Reader implementations with
// fault injection for tests.
package jettest

import (
	"errors"
	"fmt"

	"github.com/jetview/jetview/internal/jet"
)

// ErrInjected is the error returned by injected failures.
var ErrInjected = errors.New("injected failure")

// Table is an in-memory table with optional fault injection.
type Table struct {
	TableName   string
	ColumnNames []string
	Data        []jet.Row

	// FailCount makes RowCount return ErrInjected.
	FailCount bool
	// FailRows makes Rows return ErrInjected for every call.
	FailRows bool
	// FailRowsAtOffset makes Rows fail only for calls starting at or past
	// the given offset (ignored when negative). Used to simulate a bad
	// block mid-table.
	FailRowsAtOffset int

	// RowsCalls counts Rows invocations, for fetch-policy assertions.
	RowsCalls int
	// MaxRowsSeen records the largest offset+limit requested.
	MaxRowsSeen int
}

// NewTable builds a table whose rows hold a single "ID" numeric column
// with values 0..n-1. Convenient for count and offset assertions.
func NewTable(name string, n int) *Table {
	t := &Table{TableName: name, ColumnNames: []string{"ID"}, FailRowsAtOffset: -1}
	for i := range n {
		t.Data = append(t.Data, jet.Row{"ID": jet.Number(float64(i))})
	}
	return t
}

func (t *Table) Name() string { return t.TableName }

func (t *Table) RowCount() (int, error) {
	if t.FailCount {
		return 0, ErrInjected
	}
	return len(t.Data), nil
}

func (t *Table) Columns() []string {
	out := make([]string, len(t.ColumnNames))
	copy(out, t.ColumnNames)
	return out
}

func (t *Table) Rows(offset, limit int) ([]jet.Row, error) {
	t.RowsCalls++
	if offset+limit > t.MaxRowsSeen {
		t.MaxRowsSeen = offset + limit
	}
	if t.FailRows {
		return nil, ErrInjected
	}
	if t.FailRowsAtOffset >= 0 && offset >= t.FailRowsAtOffset {
		return nil, ErrInjected
	}
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("negative offset or limit")
	}
	if offset >= len(t.Data) {
		return nil, nil
	}
	end := min(offset+limit, len(t.Data))
	out := make([]jet.Row, end-offset)
	copy(out, t.Data[offset:end])
	return out, nil
}

// Reader is an in-memory jet.Reader over a fixed set of tables.
type Reader struct {
	Order  []string
	Tables map[string]*Table

	// FailOpen lists table names whose Table call fails.
	FailOpen map[string]bool

	Closed bool
}

// NewReader builds a reader over the given tables, enumerated in order.
func NewReader(tables ...*Table) *Reader {
	r := &Reader{Tables: make(map[string]*Table), FailOpen: make(map[string]bool)}
	for _, t := range tables {
		r.Order = append(r.Order, t.TableName)
		r.Tables[t.TableName] = t
	}
	return r
}

func (r *Reader) ListTables() []string {
	out := make([]string, len(r.Order))
	copy(out, r.Order)
	return out
}

func (r *Reader) Table(name string) (jet.TableHandle, error) {
	if r.FailOpen[name] {
		return nil, ErrInjected
	}
	t, ok := r.Tables[name]
	if !ok {
		return nil, fmt.Errorf("table %s not found", name)
	}
	return t, nil
}

func (r *Reader) Close() error {
	r.Closed = true
	return nil
}
