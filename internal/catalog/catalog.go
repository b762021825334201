// Package catalog enumerates the tables of an open database and caches
// their handles for the other components.
package catalog

import (
	"context"
	"log/slog"

	"github.com/jetview/jetview/internal/jet"
	"golang.org/x/sync/errgroup"
)

// countConcurrency bounds the per-table row-count fan-out.
const countConcurrency = 8

// Entry is one catalog row: a table name and its row count at build time.
// A table whose handle or count could not be read degrades to RowCount 0.
type Entry struct {
	Name     string `json:"name"`
	RowCount int    `json:"rowCount"`
}

// Catalog is the ordered table list plus the shared table-handle cache.
// It is immutable once built; handles are shared read-only.
type Catalog struct {
	entries []Entry
	handles map[string]jet.TableHandle
	rels    map[string][]string
}

// Build enumerates the reader's tables in order, opening each handle and
// reading its row count. Counts are fetched concurrently but Build only
// returns once all of them settled, so the catalog is never partially
// populated. Per-table failures degrade that entry to a zero count
// instead of aborting the build.
func Build(ctx context.Context, r jet.Reader) (*Catalog, error) {
	names := r.ListTables()
	c := &Catalog{
		entries: make([]Entry, len(names)),
		handles: make(map[string]jet.TableHandle, len(names)),
	}
	for i, name := range names {
		c.entries[i] = Entry{Name: name}
		h, err := r.Table(name)
		if err != nil {
			slog.WarnContext(ctx, "Failed to open table, degrading to empty entry", "table", name, "err", err)
			continue
		}
		c.handles[name] = h
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(countConcurrency)
	for i := range c.entries {
		h, ok := c.handles[c.entries[i].Name]
		if !ok {
			continue
		}
		g.Go(func() error {
			n, err := h.RowCount()
			if err != nil {
				slog.WarnContext(gctx, "Failed to count table rows", "table", h.Name(), "err", err)
				return nil
			}
			c.entries[i].RowCount = n
			return nil
		})
	}
	// Counting never returns an error; Wait is the completion barrier.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.rels = readRelationships(ctx, c)
	return c, nil
}

// Entries returns the catalog entries in enumeration order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Handle returns the cached handle for a table. A table that failed to
// open during the build has no handle.
func (c *Catalog) Handle(name string) (jet.TableHandle, bool) {
	h, ok := c.handles[name]
	return h, ok
}

// Related returns tables the advisory relationship cache links to name.
// The cache is best-effort seed data only; an empty result carries no
// meaning beyond "nothing recorded".
func (c *Catalog) Related(name string) []string {
	out := make([]string, len(c.rels[name]))
	copy(out, c.rels[name])
	return out
}
