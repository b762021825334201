// Column width estimation from sampled cell text lengths.

package sample

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/jetview/jetview/internal/jet"
)

// WidthConfig holds the pixel model for column width estimation.
type WidthConfig struct {
	// PixelsPerChar is the per-character width estimate.
	PixelsPerChar float64
	// PaddingPx is added to every column after the character estimate.
	PaddingPx int
	// MinPx and MaxPx clamp the final width.
	MinPx int
	MaxPx int
}

// DefaultWidthConfig returns the stock pixel model.
func DefaultWidthConfig() WidthConfig {
	return WidthConfig{PixelsPerChar: 8, PaddingPx: 24, MinPx: 60, MaxPx: 400}
}

// Widths derives a display width per column from the 75th percentile of
// sampled cell text lengths. The percentile, not the maximum, so a few
// outlier values cannot blow out the layout. Header label length is
// deliberately ignored: a short column with a long header must not claim
// excess space. Pure function of its inputs.
func Widths(cfg WidthConfig, columns []string, rows []jet.Row) map[string]int {
	widths := make(map[string]int, len(columns))
	lengths := make([]int, 0, len(rows))
	for _, col := range columns {
		lengths = lengths[:0]
		for _, row := range rows {
			lengths = append(lengths, utf8.RuneCountInString(row[col].Display()))
		}
		p := 0
		if len(lengths) > 0 {
			sort.Ints(lengths)
			p = lengths[int(math.Floor(0.75*float64(len(lengths))))]
		}
		w := int(math.Ceil(float64(p)*cfg.PixelsPerChar)) + cfg.PaddingPx
		if w < cfg.MinPx {
			w = cfg.MinPx
		}
		if w > cfg.MaxPx {
			w = cfg.MaxPx
		}
		widths[col] = w
	}
	return widths
}
