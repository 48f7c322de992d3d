// Package ratio derives comparison signals from a BinnedTable: per-bin log2
// ratios between two dataset columns, and per-sequence moving-average
// smoothing.  Both are missing-aware; bins without data stay missing instead
// of poisoning their neighbours.
package ratio

import (
	"fmt"
	"math"

	"github.com/JELAshford/replibin/binner"
	"gonum.org/v1/gonum/stat"
)

// Log2 returns the per-bin log2(numer/denom) of two dataset mean columns.  A
// bin is missing in the result when either column is missing there (count
// zero included) or either mean is non-positive, since the ratio is
// undefined.
func Log2(t *binner.BinnedTable, numer, denom string) ([]float64, error) {
	nm, err := t.MeanColumn(numer)
	if err != nil {
		return nil, err
	}
	dm, err := t.MeanColumn(denom)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(nm))
	for i := range nm {
		out[i] = binner.Missing
		if binner.IsMissing(nm[i]) || binner.IsMissing(dm[i]) {
			continue
		}
		if nm[i] <= 0 || dm[i] <= 0 {
			continue
		}
		out[i] = math.Log2(nm[i] / dm[i])
	}
	return out, nil
}

// SmoothColumn applies a centered moving average of the given window to a
// per-bin column.  Windows are truncated at sequence boundaries, never
// straddling them, and missing bins are excluded from each window's mean; a
// window with no data yields a missing bin.  col must be row-aligned with the
// lattice.
func SmoothColumn(lat *binner.Lattice, col []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: smoothing window %d must be positive", binner.ErrInvalidConfig, window)
	}
	if len(col) != lat.NumBins() {
		return nil, fmt.Errorf("%w: column has %d rows, lattice has %d bins",
			binner.ErrInvalidConfig, len(col), lat.NumBins())
	}
	out := make([]float64, len(col))
	scratch := make([]float64, 0, window)
	for _, name := range lat.SeqNames() {
		first, n, _ := lat.SeqBins(name)
		seg := col[first : first+n]
		for i := range seg {
			lo := i - (window-1)/2
			if lo < 0 {
				lo = 0
			}
			hi := i + window/2 + 1
			if hi > n {
				hi = n
			}
			scratch = scratch[:0]
			for _, v := range seg[lo:hi] {
				if !binner.IsMissing(v) {
					scratch = append(scratch, v)
				}
			}
			if len(scratch) == 0 {
				out[first+i] = binner.Missing
				continue
			}
			out[first+i] = stat.Mean(scratch, nil)
		}
	}
	return out, nil
}
