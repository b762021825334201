// Advisory relationship cache seeded from the format's system table.

package catalog

import (
	"context"
	"log/slog"

	"github.com/jetview/jetview/internal/jet"
)

// Well-known system relationship table and its columns, when the
// underlying format exposes one. Absence is the normal case.
const (
	relationshipsTable = "MSysRelationships"
	colObject          = "szObject"
	colReferenced      = "szReferencedObject"
)

// relationshipScanLimit bounds how much of the system table is read.
const relationshipScanLimit = 4096

// readRelationships builds the table -> referenced-tables map from the
// system relationship table. Any failure yields an empty map silently;
// no other component depends on this cache for correctness.
func readRelationships(ctx context.Context, c *Catalog) map[string][]string {
	h, ok := c.handles[relationshipsTable]
	if !ok {
		return nil
	}
	rows, err := h.Rows(0, relationshipScanLimit)
	if err != nil {
		slog.DebugContext(ctx, "Failed to read relationship table", "err", err)
		return nil
	}
	rels := make(map[string][]string)
	for _, row := range rows {
		obj, ref := row[colObject], row[colReferenced]
		if obj.Kind() != jet.KindText || ref.Kind() != jet.KindText {
			continue
		}
		rels[obj.TextValue()] = append(rels[obj.TextValue()], ref.TextValue())
	}
	return rels
}
