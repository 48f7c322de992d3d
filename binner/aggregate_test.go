package binner

import (
	"math/rand"
	"testing"

	"github.com/JELAshford/replibin/genome"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chr1Lattice(t *testing.T) *Lattice {
	t.Helper()
	ref, err := genome.New([]genome.Sequence{{Name: "chr1", Length: 1500}})
	require.NoError(t, err)
	lat, err := GenerateBins(ref, nil, 500)
	require.NoError(t, err)
	return lat
}

// assertCells compares cells field by field; Mean is NaN-valued when missing,
// so plain equality on the structs would always fail there.
func assertCells(t *testing.T, got, want []AggregateCell) {
	t.Helper()
	require.Equal(t, len(want), len(got))
	for i := range want {
		assert.Equal(t, want[i].Bin, got[i].Bin, "bin %d", i)
		assert.Equal(t, want[i].Count, got[i].Count, "bin %d count", i)
		if want[i].Count == 0 {
			assert.True(t, IsMissing(got[i].Mean), "bin %d should be missing", i)
		} else {
			assert.Equal(t, want[i].Mean, got[i].Mean, "bin %d mean", i)
		}
	}
}

func TestAggregateBasic(t *testing.T) {
	lat := chr1Lattice(t)
	cells, stats, err := Aggregate(lat, []SourceInterval{
		{Seq: "chr1", Start: 100, End: 300, Value: 2.0},
		{Seq: "chr1", Start: 600, End: 700, Value: 4.0},
	})
	require.NoError(t, err)
	assertCells(t, cells, []AggregateCell{
		{Bin: 0, Mean: 2.0, Count: 1},
		{Bin: 1, Mean: 4.0, Count: 1},
		{Bin: 2, Count: 0},
	})
	assert.Equal(t, Stats{Intervals: 2, Contributions: 2}, stats)
}

func TestAggregateSpanningInterval(t *testing.T) {
	// The first interval crosses the bin1/bin2 boundary and contributes its
	// full value to both; no clipping, no length weighting.
	lat := chr1Lattice(t)
	cells, stats, err := Aggregate(lat, []SourceInterval{
		{Seq: "chr1", Start: 400, End: 650, Value: 2.0},
		{Seq: "chr1", Start: 640, End: 900, Value: 6.0},
	})
	require.NoError(t, err)
	assertCells(t, cells, []AggregateCell{
		{Bin: 0, Mean: 2.0, Count: 1},
		{Bin: 1, Mean: 4.0, Count: 2},
		{Bin: 2, Count: 0},
	})
	assert.Equal(t, Stats{Intervals: 2, Contributions: 3}, stats)
}

func TestAggregateFullSpan(t *testing.T) {
	// An interval spanning k bins increments the count in all k bins, so the
	// summed count may exceed the number of intervals.
	lat := chr1Lattice(t)
	cells, stats, err := Aggregate(lat, []SourceInterval{
		{Seq: "chr1", Start: 1, End: 1501, Value: 3.0},
	})
	require.NoError(t, err)
	assertCells(t, cells, []AggregateCell{
		{Bin: 0, Mean: 3.0, Count: 1},
		{Bin: 1, Mean: 3.0, Count: 1},
		{Bin: 2, Mean: 3.0, Count: 1},
	})
	assert.Equal(t, 3, stats.Contributions)
}

func TestAggregateMissingValues(t *testing.T) {
	// Missing-valued intervals are structurally absent: excluded from the sum
	// and the count of every bin they touch.
	lat := chr1Lattice(t)
	cells, stats, err := Aggregate(lat, []SourceInterval{
		{Seq: "chr1", Start: 100, End: 300, Value: 2.0},
		{Seq: "chr1", Start: 100, End: 300, Value: Missing},
	})
	require.NoError(t, err)
	assertCells(t, cells, []AggregateCell{
		{Bin: 0, Mean: 2.0, Count: 1},
		{Bin: 1, Count: 0},
		{Bin: 2, Count: 0},
	})
	assert.Equal(t, Stats{Intervals: 2, MissingValues: 1, Contributions: 1}, stats)
}

func TestAggregateEmpty(t *testing.T) {
	lat := chr1Lattice(t)
	cells, stats, err := Aggregate(lat, nil)
	require.NoError(t, err)
	for _, c := range cells {
		assert.Equal(t, 0, c.Count)
		assert.True(t, IsMissing(c.Mean))
	}
	assert.Equal(t, Stats{}, stats)
}

func TestAggregateOffLattice(t *testing.T) {
	// Intervals on a binned sequence but beyond its bins contribute nothing.
	lat := chr1Lattice(t)
	cells, stats, err := Aggregate(lat, []SourceInterval{
		{Seq: "chr1", Start: 5000, End: 6000, Value: 1.0},
	})
	require.NoError(t, err)
	for _, c := range cells {
		assert.Equal(t, 0, c.Count)
	}
	assert.Equal(t, Stats{Intervals: 1, OffLattice: 1}, stats)
}

func TestAggregateUnknownSequence(t *testing.T) {
	lat := chr1Lattice(t)
	_, _, err := Aggregate(lat, []SourceInterval{
		{Seq: "chr9", Start: 100, End: 300, Value: 2.0},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSequence)
}

func TestAggregateOrderInvariance(t *testing.T) {
	lat := chr1Lattice(t)
	intervals := []SourceInterval{
		{Seq: "chr1", Start: 400, End: 650, Value: 2.0},
		{Seq: "chr1", Start: 640, End: 900, Value: 6.0},
		{Seq: "chr1", Start: 100, End: 300, Value: 1.5},
		{Seq: "chr1", Start: 1, End: 1501, Value: -3.0},
		{Seq: "chr1", Start: 1200, End: 1300, Value: Missing},
	}
	want, _, err := Aggregate(lat, intervals)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1701))
	for trial := 0; trial < 10; trial++ {
		shuffled := append([]SourceInterval(nil), intervals...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		got, _, err := Aggregate(lat, shuffled)
		require.NoError(t, err)
		assertCells(t, got, want)
	}
}

func TestAggregateCountMeanInvariant(t *testing.T) {
	// count == 0 iff mean is the missing sentinel.
	lat := chr1Lattice(t)
	cells, _, err := Aggregate(lat, []SourceInterval{
		{Seq: "chr1", Start: 10, End: 20, Value: 0.0}, // zero is data, not missing
	})
	require.NoError(t, err)
	for _, c := range cells {
		assert.Equal(t, c.Count == 0, IsMissing(c.Mean), "bin %d", c.Bin)
	}
	assert.Equal(t, 1, cells[0].Count)
	assert.Equal(t, 0.0, cells[0].Mean)
}
