// Bundle authoring: used by tests and dev-mode fixture generation.

package jsonljet

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jetview/jetview/internal/jet"
)

// TableDef describes one table to write into a bundle.
type TableDef struct {
	Name    string
	Columns []Column
	Rows    []jet.Row
}

// WriteBundle writes tables as a zip bundle in the jsonljet format.
// Tables appear in the bundle, and therefore enumerate, in slice order.
func WriteBundle(w io.Writer, tables []TableDef) error {
	zw := zip.NewWriter(w)
	for _, t := range tables {
		f, err := zw.Create(t.Name + ".jsonl")
		if err != nil {
			return fmt.Errorf("failed to create bundle entry %s: %w", t.Name, err)
		}
		header := schemaHeader{Version: currentVersion, Columns: t.Columns}
		if err := writeLine(f, header); err != nil {
			return fmt.Errorf("failed to write schema header for %s: %w", t.Name, err)
		}
		for i, row := range t.Rows {
			obj := make(map[string]any, len(t.Columns))
			for _, col := range t.Columns {
				obj[col.Name] = encodeCell(row[col.Name])
			}
			if err := writeLine(f, obj); err != nil {
				return fmt.Errorf("failed to write row %d of %s: %w", i, t.Name, err)
			}
		}
	}
	return zw.Close()
}

func writeLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte{'\n'})
	return err
}

// encodeCell renders a value as its JSON form for the bundle.
func encodeCell(v jet.Value) any {
	switch v.Kind() {
	case jet.KindText:
		return v.TextValue()
	case jet.KindNumber:
		return v.NumberValue()
	case jet.KindBool:
		return v.BoolValue()
	case jet.KindDate:
		return v.DateValue().Format(time.RFC3339)
	default:
		return nil
	}
}
