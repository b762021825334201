// Package sample decides which rows to fetch for display and for width
// estimation, under row-count ceilings that keep large tables usable.
package sample

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jetview/jetview/internal/jet"
)

// Defaults applied when a Sampler field is zero.
const (
	DefaultDisplayCeiling = 5000
	DefaultSampleBlocks   = 10
)

// Sampler fetches rows for display and for sampling.
type Sampler struct {
	// DisplayCeiling is the maximum rows fetched for display. Tables past
	// the ceiling truncate silently; the catalog count still shows the
	// true size.
	DisplayCeiling int
	// SampleBlocks is how many even blocks a large table is split into
	// when sampling, so the sample spans the whole row range instead of
	// only the prefix.
	SampleBlocks int
}

func (s *Sampler) displayCeiling() int {
	if s.DisplayCeiling > 0 {
		return s.DisplayCeiling
	}
	return DefaultDisplayCeiling
}

func (s *Sampler) sampleBlocks() int {
	if s.SampleBlocks > 0 {
		return s.SampleBlocks
	}
	return DefaultSampleBlocks
}

// FetchForDisplay returns up to the display ceiling of rows from the
// start of the table, and whether the table was truncated.
func (s *Sampler) FetchForDisplay(ctx context.Context, h jet.TableHandle) ([]jet.Row, bool, error) {
	ceiling := s.displayCeiling()
	rows, err := h.Rows(0, ceiling)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch rows of %s: %w", h.Name(), err)
	}
	truncated := false
	if n, err := h.RowCount(); err == nil && n > len(rows) {
		truncated = true
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	return rows, truncated, nil
}

// FetchForSampling returns rows for width estimation. Tables at or below
// sampleSize return every row unsampled. Larger tables are split into
// even blocks spanning the full row range and a proportional slice is
// fetched from each, concatenated up to sampleSize. A failing block is
// skipped, so the result may be short.
func (s *Sampler) FetchForSampling(ctx context.Context, h jet.TableHandle, sampleSize int) ([]jet.Row, error) {
	if sampleSize <= 0 {
		return nil, nil
	}
	count, err := h.RowCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count rows of %s: %w", h.Name(), err)
	}
	if count <= sampleSize {
		rows, err := h.Rows(0, count)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch rows of %s: %w", h.Name(), err)
		}
		return rows, nil
	}

	blocks := s.sampleBlocks()
	perBlock := (sampleSize + blocks - 1) / blocks
	span := count / blocks
	out := make([]jet.Row, 0, sampleSize)
	for i := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		limit := min(perBlock, sampleSize-len(out))
		if limit <= 0 {
			break
		}
		rows, err := h.Rows(i*span, limit)
		if err != nil {
			slog.DebugContext(ctx, "Skipping failed sample block", "table", h.Name(), "block", i, "err", err)
			continue
		}
		out = append(out, rows...)
	}
	if len(out) > sampleSize {
		out = out[:sampleSize]
	}
	return out, nil
}
