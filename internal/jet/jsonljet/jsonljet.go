// Package jsonljet is the built-in reference driver for the jet decode
// boundary: a zip container holding one .jsonl file per table.
//
// Line 1 of each table file is a schema header {version, columns}; every
// following line is one row object keyed by column name. The format exists
// so the viewer, its tests, and dev-mode fixtures have a decodable
// container without a native Jet page decoder; a real .mdb/.accdb decoder
// plugs in behind the same jet.Driver interface.
package jsonljet

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jetview/jetview/internal/jet"
)

// currentVersion is the current version of the bundle table format.
const currentVersion = "1.0"

// columnType identifies how a column's cells decode.
type columnType string

const (
	columnTypeText   columnType = "text"
	columnTypeNumber columnType = "number"
	columnTypeBool   columnType = "bool"
	columnTypeDate   columnType = "date"
)

// Column describes one table column in the schema header.
type Column struct {
	Name string     `json:"name"`
	Type columnType `json:"type"`
}

// schemaHeader is the first line of a table file.
type schemaHeader struct {
	Version string   `json:"version"`
	Columns []Column `json:"columns"`
}

// Validate checks that the header is well-formed.
func (h *schemaHeader) Validate() error {
	if h.Version == "" {
		return fmt.Errorf("schema version is required")
	}
	for i, col := range h.Columns {
		if col.Name == "" {
			return fmt.Errorf("column %d: name is required", i)
		}
	}
	return nil
}

// zipMagic is the local-file-header signature of a zip archive.
var zipMagic = []byte{'P', 'K', 0x03, 0x04}

type driver struct{}

func (driver) Name() string { return "jsonljet" }

func (driver) Sniff(data []byte) bool {
	return bytes.HasPrefix(data, zipMagic)
}

func (driver) Open(data []byte) (jet.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}
	r := &reader{tables: make(map[string]*tableHandle)}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ".jsonl") {
			continue
		}
		name := strings.TrimSuffix(f.Name, ".jsonl")
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open bundle entry %s: %w", f.Name, err)
		}
		th, err := parseTable(name, rc)
		cerr := rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse table %s: %w", name, err)
		}
		if cerr != nil {
			return nil, fmt.Errorf("failed to close bundle entry %s: %w", f.Name, cerr)
		}
		r.names = append(r.names, name)
		r.tables[name] = th
	}
	return r, nil
}

func init() {
	jet.Register(driver{})
}

// reader implements jet.Reader over a fully parsed bundle.
type reader struct {
	names  []string
	tables map[string]*tableHandle
}

func (r *reader) ListTables() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r *reader) Table(name string) (jet.TableHandle, error) {
	th, ok := r.tables[name]
	if !ok {
		return nil, fmt.Errorf("table %s not found", name)
	}
	return th, nil
}

func (r *reader) Close() error {
	return nil
}

// tableHandle implements jet.TableHandle over in-memory rows.
type tableHandle struct {
	name    string
	columns []string
	rows    []jet.Row
}

func (t *tableHandle) Name() string { return t.name }

func (t *tableHandle) RowCount() (int, error) { return len(t.rows), nil }

func (t *tableHandle) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

func (t *tableHandle) Rows(offset, limit int) ([]jet.Row, error) {
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("negative offset or limit")
	}
	if offset >= len(t.rows) {
		return nil, nil
	}
	end := min(offset+limit, len(t.rows))
	out := make([]jet.Row, end-offset)
	copy(out, t.rows[offset:end])
	return out, nil
}

// parseTable reads one table file: schema header line, then row lines.
func parseTable(name string, src io.Reader) (*tableHandle, error) {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("missing schema header")
	}
	var header schemaHeader
	if err := json.Unmarshal(scanner.Bytes(), &header); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema header: %w", err)
	}
	if err := header.Validate(); err != nil {
		return nil, err
	}

	types := make(map[string]columnType, len(header.Columns))
	columns := make([]string, 0, len(header.Columns))
	for _, col := range header.Columns {
		columns = append(columns, col.Name)
		types[col.Name] = col.Type
	}

	th := &tableHandle{name: name, columns: columns}
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, fmt.Errorf("row %d: %w", len(th.rows)+1, err)
		}
		row := make(jet.Row, len(columns))
		for _, col := range columns {
			cell, ok := raw[col]
			if !ok {
				row[col] = jet.Null()
				continue
			}
			v, err := decodeCell(types[col], cell)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", len(th.rows)+1, col, err)
			}
			row[col] = v
		}
		th.rows = append(th.rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return th, nil
}

// decodeCell decodes one JSON cell according to the declared column type.
// Unknown column types decode as text.
func decodeCell(ct columnType, raw json.RawMessage) (jet.Value, error) {
	if string(raw) == "null" {
		return jet.Null(), nil
	}
	switch ct {
	case columnTypeNumber:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return jet.Null(), err
		}
		return jet.Number(f), nil
	case columnTypeBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return jet.Null(), err
		}
		return jet.Bool(b), nil
	case columnTypeDate:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return jet.Null(), err
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return jet.Null(), err
		}
		return jet.Date(t), nil
	default:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return jet.Null(), err
		}
		return jet.Text(s), nil
	}
}
