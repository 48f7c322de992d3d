package binner

import (
	"fmt"
)

// SourceInterval is one row of an input signal track: a scored range on a
// reference sequence.  Value may be Missing for sparse tracks.
type SourceInterval struct {
	Seq   string
	Start int64
	End   int64
	Value float64
}

// Dataset is a named, ordered collection of source intervals (one signal
// track).  Datasets are independent of each other and never alter the
// lattice.
type Dataset struct {
	Name      string
	Intervals []SourceInterval
}

// AggregateCell is the per-bin result of aggregating one dataset: the
// arithmetic mean of the values of all contributing intervals, and how many
// there were.  Count == 0 implies Mean is the missing sentinel.
type AggregateCell struct {
	Bin   int
	Mean  float64
	Count int
}

// Stats tallies what happened to a dataset's intervals during aggregation.
type Stats struct {
	// Intervals is the number of source intervals examined.
	Intervals int
	// MissingValues is the number of intervals excluded for carrying the
	// missing sentinel.
	MissingValues int
	// OffLattice is the number of intervals overlapping no bin at all.
	OffLattice int
	// Contributions is the total number of (interval, bin) pairs scored; an
	// interval spanning k bins contributes k.
	Contributions int
}

// Merge adds the field values of the two Stats objects and creates new Stats.
func (s Stats) Merge(o Stats) Stats {
	s.Intervals += o.Intervals
	s.MissingValues += o.MissingValues
	s.OffLattice += o.OffLattice
	s.Contributions += o.Contributions
	return s
}

// binRange computes the half-open range of per-sequence bin offsets the
// interval [start, end) overlaps, under the predicate
//   start < bin.Start+width && end > bin.Start.
// The lattice is uniform within a sequence, so the range follows from integer
// arithmetic rather than a search.  ok is false when no bin qualifies.
func (lay seqLayout) binRange(start, end, width int64, numBins int) (lo, hi int, ok bool) {
	if end <= lay.origin {
		return 0, 0, false
	}
	hi64 := (end - 1 - lay.origin) / width
	lo64 := (start - lay.origin) / width
	if lo64 < 0 {
		lo64 = 0
	}
	if hi64 >= int64(numBins) {
		hi64 = int64(numBins) - 1
	}
	if lo64 > hi64 {
		return 0, 0, false
	}
	return int(lo64), int(hi64), true
}

// Aggregate joins one dataset's intervals against the lattice and returns a
// cell per bin, in global index order.  Each overlapped bin receives the
// interval's full value at full weight; there is no clipping or
// length-weighting.  Intervals carrying the missing sentinel are structurally
// absent.  The result does not depend on the order of intervals.
//
// An interval naming a sequence outside the lattice is an error, not a skip:
// silently dropping it would corrupt the aggregate statistics.
func Aggregate(lat *Lattice, intervals []SourceInterval) ([]AggregateCell, Stats, error) {
	var stats Stats
	sums := make([]float64, len(lat.bins))
	counts := make([]int, len(lat.bins))
	for _, iv := range intervals {
		lay, ok := lat.layout[iv.Seq]
		if !ok {
			return nil, Stats{}, fmt.Errorf("%w: interval %s:%d-%d not in lattice",
				ErrUnknownSequence, iv.Seq, iv.Start, iv.End)
		}
		stats.Intervals++
		if IsMissing(iv.Value) {
			stats.MissingValues++
			continue
		}
		lo, hi, ok := lay.binRange(iv.Start, iv.End, lat.width, lay.numBins)
		if !ok {
			stats.OffLattice++
			continue
		}
		for k := lo; k <= hi; k++ {
			sums[lay.firstBin+k] += iv.Value
			counts[lay.firstBin+k]++
		}
		stats.Contributions += hi - lo + 1
	}
	cells := make([]AggregateCell, len(lat.bins))
	for i := range cells {
		cells[i] = AggregateCell{Bin: i, Mean: Missing, Count: counts[i]}
		if counts[i] > 0 {
			cells[i].Mean = sums[i] / float64(counts[i])
		}
	}
	return cells, stats, nil
}
