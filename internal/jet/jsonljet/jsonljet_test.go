package jsonljet

import (
	"archive/zip"
	"bytes"
	"testing"
	"time"

	"github.com/jetview/jetview/internal/jet"
)

// newZipWithEntry writes a zip with a single named entry into buf.
func newZipWithEntry(t *testing.T, buf *bytes.Buffer, name, content string) {
	t.Helper()
	zw := zip.NewWriter(buf)
	f, err := zw.Create(name)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.Write([]byte(content)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func buildBundle(t *testing.T, tables []TableDef) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteBundle(&buf, tables); err != nil {
		t.Fatalf("WriteBundle: %v", err)
	}
	return buf.Bytes()
}

func TestOpenBundle(t *testing.T) {
	when := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	data := buildBundle(t, []TableDef{
		{
			Name: "Orders",
			Columns: []Column{
				{Name: "ID", Type: columnTypeNumber},
				{Name: "Customer", Type: columnTypeText},
				{Name: "Shipped", Type: columnTypeBool},
				{Name: "Placed", Type: columnTypeDate},
			},
			Rows: []jet.Row{
				{"ID": jet.Number(1), "Customer": jet.Text("ACME"), "Shipped": jet.Bool(true), "Placed": jet.Date(when)},
				{"ID": jet.Number(2), "Customer": jet.Null(), "Shipped": jet.Bool(false), "Placed": jet.Null()},
			},
		},
		{
			Name:    "Customers",
			Columns: []Column{{Name: "Name", Type: columnTypeText}},
			Rows:    []jet.Row{{"Name": jet.Text("ACME")}},
		},
	})

	r, err := jet.Open("fixture.mdb", data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	t.Run("enumeration order", func(t *testing.T) {
		names := r.ListTables()
		if len(names) != 2 || names[0] != "Orders" || names[1] != "Customers" {
			t.Errorf("ListTables() = %v, want [Orders Customers]", names)
		}
	})

	t.Run("columns and counts", func(t *testing.T) {
		h, err := r.Table("Orders")
		if err != nil {
			t.Fatalf("Table: %v", err)
		}
		cols := h.Columns()
		want := []string{"ID", "Customer", "Shipped", "Placed"}
		if len(cols) != len(want) {
			t.Fatalf("Columns() = %v, want %v", cols, want)
		}
		for i := range want {
			if cols[i] != want[i] {
				t.Errorf("Columns()[%d] = %q, want %q", i, cols[i], want[i])
			}
		}
		n, err := h.RowCount()
		if err != nil || n != 2 {
			t.Errorf("RowCount() = %d, %v, want 2, nil", n, err)
		}
	})

	t.Run("typed cells survive the round trip", func(t *testing.T) {
		h, err := r.Table("Orders")
		if err != nil {
			t.Fatalf("Table: %v", err)
		}
		rows, err := h.Rows(0, 10)
		if err != nil {
			t.Fatalf("Rows: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("got %d rows, want 2", len(rows))
		}
		if !rows[0]["ID"].Equal(jet.Number(1)) {
			t.Errorf("ID = %v, want number 1", rows[0]["ID"])
		}
		if !rows[0]["Placed"].Equal(jet.Date(when)) {
			t.Errorf("Placed = %v, want %v", rows[0]["Placed"], when)
		}
		if !rows[1]["Customer"].IsNull() {
			t.Errorf("null cell decoded as %v", rows[1]["Customer"])
		}
	})

	t.Run("paging", func(t *testing.T) {
		h, err := r.Table("Orders")
		if err != nil {
			t.Fatalf("Table: %v", err)
		}
		rows, err := h.Rows(1, 10)
		if err != nil {
			t.Fatalf("Rows: %v", err)
		}
		if len(rows) != 1 || !rows[0]["ID"].Equal(jet.Number(2)) {
			t.Errorf("Rows(1, 10) = %v, want the second row only", rows)
		}
		rows, err = h.Rows(5, 10)
		if err != nil || len(rows) != 0 {
			t.Errorf("Rows past the end = %v, %v, want empty, nil", rows, err)
		}
		if _, err := h.Rows(-1, 10); err == nil {
			t.Error("negative offset did not fail")
		}
	})

	t.Run("unknown table", func(t *testing.T) {
		if _, err := r.Table("Missing"); err == nil {
			t.Error("Table(Missing) did not fail")
		}
	})
}

func TestOpenRejectsUnknownFormat(t *testing.T) {
	_, err := jet.Open("notes.mdb", []byte("this is not a database"))
	if err == nil {
		t.Fatal("Open accepted garbage")
	}
}

func TestOpenRejectsBadSchema(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing version", `{"columns":[{"name":"A","type":"text"}]}`},
		{"unnamed column", `{"version":"1.0","columns":[{"name":"","type":"text"}]}`},
		{"not json", `garbage`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			newZipWithEntry(t, &buf, "Bad.jsonl", tt.content)
			if _, err := jet.Open("bad.mdb", buf.Bytes()); err == nil {
				t.Error("Open accepted a malformed schema header")
			}
		})
	}
}

func TestOpenSkipsNonTableEntries(t *testing.T) {
	var buf bytes.Buffer
	newZipWithEntry(t, &buf, "README.txt", "not a table")
	r, err := jet.Open("readme.mdb", buf.Bytes())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()
	if n := len(r.ListTables()); n != 0 {
		t.Errorf("got %d tables, want 0", n)
	}
}
