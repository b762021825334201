package session

import (
	"context"
	"errors"
	"testing"

	"github.com/jetview/jetview/internal/catalog"
	"github.com/jetview/jetview/internal/config"
	"github.com/jetview/jetview/internal/jet"
	"github.com/jetview/jetview/internal/jet/jettest"
)

// newSession builds a session over the given tables with test limits.
func newSession(t *testing.T, limits config.Limits, tables ...*jettest.Table) (*Session, *jettest.Reader) {
	t.Helper()
	r := jettest.NewReader(tables...)
	cat, err := catalog.Build(context.Background(), r)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return New("test.mdb", r, cat, limits), r
}

func testLimits() config.Limits {
	l := config.Default().Limits
	// High enough to never throttle in tests that aren't about throttling.
	l.HoverPerSecond = 1000
	return l
}

// valueTable builds a single-column table from values.
func valueTable(name, col string, cells ...jet.Value) *jettest.Table {
	tb := &jettest.Table{TableName: name, ColumnNames: []string{col}, FailRowsAtOffset: -1}
	for _, c := range cells {
		tb.Data = append(tb.Data, jet.Row{col: c})
	}
	return tb
}

func TestSelectTable(t *testing.T) {
	ctx := context.Background()

	t.Run("grid payload", func(t *testing.T) {
		s, _ := newSession(t, testLimits(), jettest.NewTable("T", 20))
		grid, err := s.SelectTable(ctx, "T")
		if err != nil {
			t.Fatalf("SelectTable: %v", err)
		}
		if grid.Table != "T" || len(grid.Rows) != 20 || grid.Total != 20 || grid.Truncated {
			t.Errorf("grid = %+v, want 20 untruncated rows of T", grid)
		}
		if len(grid.Columns) != 1 || grid.Columns[0] != "ID" {
			t.Errorf("Columns = %v, want [ID]", grid.Columns)
		}
		if grid.Widths["ID"] == 0 {
			t.Error("no width estimated for ID")
		}
		if s.ActiveTable() != "T" {
			t.Errorf("ActiveTable = %q, want T", s.ActiveTable())
		}
	})

	t.Run("truncation over the ceiling", func(t *testing.T) {
		limits := testLimits()
		limits.DisplayCeiling = 10
		s, _ := newSession(t, limits, jettest.NewTable("Big", 50))
		grid, err := s.SelectTable(ctx, "Big")
		if err != nil {
			t.Fatalf("SelectTable: %v", err)
		}
		if len(grid.Rows) != 10 || !grid.Truncated || grid.Total != 50 {
			t.Errorf("grid rows=%d truncated=%v total=%d, want 10/true/50", len(grid.Rows), grid.Truncated, grid.Total)
		}
	})

	t.Run("unknown table", func(t *testing.T) {
		s, _ := newSession(t, testLimits(), jettest.NewTable("T", 1))
		if _, err := s.SelectTable(ctx, "Nope"); !errors.Is(err, ErrTableNotFound) {
			t.Errorf("err = %v, want ErrTableNotFound", err)
		}
	})
}

func TestActivateCell(t *testing.T) {
	ctx := context.Background()

	t.Run("match navigates to the target", func(t *testing.T) {
		s, _ := newSession(t, testLimits(),
			valueTable("Origin", "V", jet.Text("x")),
			valueTable("Target", "V", jet.Text("y"), jet.Text("x")),
		)
		if _, err := s.SelectTable(ctx, "Origin"); err != nil {
			t.Fatalf("SelectTable: %v", err)
		}
		res, err := s.ActivateCell(ctx, "Origin", jet.Text("x"))
		if err != nil {
			t.Fatalf("ActivateCell: %v", err)
		}
		if !res.Found || res.Grid.Table != "Target" || res.RowIndex != 1 {
			t.Errorf("res = %+v, want Target row 1", res)
		}
		if s.ActiveTable() != "Target" {
			t.Errorf("ActiveTable = %q, want Target after navigation", s.ActiveTable())
		}
	})

	t.Run("no match keeps the view", func(t *testing.T) {
		s, _ := newSession(t, testLimits(),
			valueTable("Origin", "V", jet.Text("x")),
			valueTable("Other", "V", jet.Text("y")),
		)
		if _, err := s.SelectTable(ctx, "Origin"); err != nil {
			t.Fatalf("SelectTable: %v", err)
		}
		res, err := s.ActivateCell(ctx, "Origin", jet.Text("x"))
		if err != nil {
			t.Fatalf("ActivateCell: %v", err)
		}
		if res.Found {
			t.Errorf("res = %+v, want no match", res)
		}
		if s.ActiveTable() != "Origin" {
			t.Errorf("ActiveTable = %q, want Origin unchanged", s.ActiveTable())
		}
	})

	t.Run("stale origin is rejected", func(t *testing.T) {
		s, _ := newSession(t, testLimits(),
			valueTable("A", "V", jet.Text("x")),
			valueTable("B", "V", jet.Text("x")),
		)
		if _, err := s.SelectTable(ctx, "A"); err != nil {
			t.Fatalf("SelectTable: %v", err)
		}
		if _, err := s.ActivateCell(ctx, "B", jet.Text("x")); !errors.Is(err, ErrStaleRequest) {
			t.Errorf("err = %v, want ErrStaleRequest for a request tagged with B", err)
		}
		if s.ActiveTable() != "A" {
			t.Errorf("ActiveTable = %q, want A untouched", s.ActiveTable())
		}
	})
}

func TestHoverCell(t *testing.T) {
	ctx := context.Background()

	t.Run("candidates in catalog order", func(t *testing.T) {
		s, _ := newSession(t, testLimits(),
			valueTable("Origin", "V", jet.Text("x")),
			valueTable("Holds", "V", jet.Text("x")),
			valueTable("Lacks", "V", jet.Text("y")),
		)
		if _, err := s.SelectTable(ctx, "Origin"); err != nil {
			t.Fatalf("SelectTable: %v", err)
		}
		tables, throttled, err := s.HoverCell(ctx, "Origin", jet.Text("x"))
		if err != nil {
			t.Fatalf("HoverCell: %v", err)
		}
		if throttled || len(tables) != 1 || tables[0] != "Holds" {
			t.Errorf("HoverCell = %v throttled=%v, want [Holds] unthrottled", tables, throttled)
		}
	})

	t.Run("repeated hover reuses the memo", func(t *testing.T) {
		target := valueTable("Target", "V", jet.Text("x"))
		s, _ := newSession(t, testLimits(), valueTable("Origin", "V", jet.Text("x")), target)
		if _, err := s.SelectTable(ctx, "Origin"); err != nil {
			t.Fatalf("SelectTable: %v", err)
		}
		if _, _, err := s.HoverCell(ctx, "Origin", jet.Text("x")); err != nil {
			t.Fatalf("first HoverCell: %v", err)
		}
		calls := target.RowsCalls
		if _, _, err := s.HoverCell(ctx, "Origin", jet.Text("x")); err != nil {
			t.Fatalf("second HoverCell: %v", err)
		}
		if target.RowsCalls != calls {
			t.Errorf("second hover rescanned: %d calls, want %d", target.RowsCalls, calls)
		}
	})

	t.Run("new values are throttled", func(t *testing.T) {
		limits := testLimits()
		limits.HoverPerSecond = 0.001
		s, _ := newSession(t, limits,
			valueTable("Origin", "V", jet.Text("a"), jet.Text("b")),
			valueTable("Other", "V", jet.Text("a"), jet.Text("b")),
		)
		if _, err := s.SelectTable(ctx, "Origin"); err != nil {
			t.Fatalf("SelectTable: %v", err)
		}
		if _, throttled, err := s.HoverCell(ctx, "Origin", jet.Text("a")); err != nil || throttled {
			t.Fatalf("first hover throttled=%v err=%v, want the initial token", throttled, err)
		}
		// Memoized value still answers.
		if _, throttled, err := s.HoverCell(ctx, "Origin", jet.Text("a")); err != nil || throttled {
			t.Errorf("memoized hover throttled=%v err=%v", throttled, err)
		}
		// A different value needs a token and there is none.
		tables, throttled, err := s.HoverCell(ctx, "Origin", jet.Text("b"))
		if err != nil {
			t.Fatalf("HoverCell: %v", err)
		}
		if !throttled || tables != nil {
			t.Errorf("HoverCell = %v throttled=%v, want throttled with no tables", tables, throttled)
		}
	})

	t.Run("selection resets the memo", func(t *testing.T) {
		target := valueTable("Target", "V", jet.Text("x"))
		s, _ := newSession(t, testLimits(), valueTable("Origin", "V", jet.Text("x")), target)
		if _, err := s.SelectTable(ctx, "Origin"); err != nil {
			t.Fatalf("SelectTable: %v", err)
		}
		if _, _, err := s.HoverCell(ctx, "Origin", jet.Text("x")); err != nil {
			t.Fatalf("HoverCell: %v", err)
		}
		if _, err := s.SelectTable(ctx, "Origin"); err != nil {
			t.Fatalf("re-SelectTable: %v", err)
		}
		calls := target.RowsCalls
		if _, _, err := s.HoverCell(ctx, "Origin", jet.Text("x")); err != nil {
			t.Fatalf("HoverCell after reselect: %v", err)
		}
		if target.RowsCalls == calls {
			t.Error("hover after reselect did not rescan")
		}
	})

	t.Run("clear drops the memo", func(t *testing.T) {
		target := valueTable("Target", "V", jet.Text("x"))
		s, _ := newSession(t, testLimits(), valueTable("Origin", "V", jet.Text("x")), target)
		if _, err := s.SelectTable(ctx, "Origin"); err != nil {
			t.Fatalf("SelectTable: %v", err)
		}
		if _, _, err := s.HoverCell(ctx, "Origin", jet.Text("x")); err != nil {
			t.Fatalf("HoverCell: %v", err)
		}
		s.ClearHover()
		calls := target.RowsCalls
		if _, _, err := s.HoverCell(ctx, "Origin", jet.Text("x")); err != nil {
			t.Fatalf("HoverCell after clear: %v", err)
		}
		if target.RowsCalls == calls {
			t.Error("hover after clear did not rescan")
		}
	})

	t.Run("stale origin is rejected", func(t *testing.T) {
		s, _ := newSession(t, testLimits(), valueTable("A", "V", jet.Text("x")))
		if _, err := s.SelectTable(ctx, "A"); err != nil {
			t.Fatalf("SelectTable: %v", err)
		}
		if _, _, err := s.HoverCell(ctx, "Other", jet.Text("x")); !errors.Is(err, ErrStaleRequest) {
			t.Errorf("err = %v, want ErrStaleRequest", err)
		}
	})
}

func TestFetchRows(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t, testLimits(), jettest.NewTable("T", 30))
	rows, err := s.FetchRows(ctx, "T", 10, 5)
	if err != nil {
		t.Fatalf("FetchRows: %v", err)
	}
	if len(rows) != 5 || !rows[0]["ID"].Equal(jet.Number(10)) {
		t.Errorf("FetchRows = %d rows starting at %v, want 5 from offset 10", len(rows), rows[0]["ID"])
	}
	if _, err := s.FetchRows(ctx, "Nope", 0, 5); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("err = %v, want ErrTableNotFound", err)
	}
}

func TestManager(t *testing.T) {
	ctx := context.Background()

	t.Run("new open supersedes and closes the predecessor", func(t *testing.T) {
		m := NewManager()
		r1 := jettest.NewReader(jettest.NewTable("T", 1))
		cat1, err := catalog.Build(ctx, r1)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		s1 := m.Open(ctx, "first.mdb", r1, cat1, testLimits())

		r2 := jettest.NewReader(jettest.NewTable("T", 1))
		cat2, err := catalog.Build(ctx, r2)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		s2 := m.Open(ctx, "second.mdb", r2, cat2, testLimits())

		if !r1.Closed {
			t.Error("superseded reader was not closed")
		}
		if m.Current() != s2 {
			t.Error("Current is not the new session")
		}
		if _, err := m.Get(s1.ID()); !errors.Is(err, ErrNoSession) {
			t.Errorf("Get(old) = %v, want ErrNoSession", err)
		}
		if got, err := m.Get(s2.ID()); err != nil || got != s2 {
			t.Errorf("Get(new) = %v, %v, want the session", got, err)
		}
	})

	t.Run("empty manager", func(t *testing.T) {
		m := NewManager()
		if m.Current() != nil {
			t.Error("Current on empty manager is not nil")
		}
		if err := m.Close(); err != nil {
			t.Errorf("Close on empty manager: %v", err)
		}
	})
}
