package binner

import (
	"fmt"
	"runtime"

	"github.com/grailbio/base/traverse"
)

// BinnedTable is the merged engine output: per-bin, per-dataset mean and
// count, row-aligned across all datasets.  Rows follow the lattice's global
// bin order; columns follow the input dataset order.
type BinnedTable struct {
	// Bins is the shared lattice bin slice, one entry per row.
	Bins []Bin
	// Datasets holds the column names in input order.
	Datasets []string
	// Mean[bin][dataset] is the aggregated mean, or Missing when
	// Count[bin][dataset] is zero.
	Mean [][]float64
	// Count[bin][dataset] is the number of contributing intervals.
	Count [][]int
	// Stats is the merge of every dataset's aggregation stats.
	Stats Stats

	cols map[string]int
}

// Assemble aggregates every dataset against the lattice and merges the
// results into one table.  Datasets are mutually independent and write
// disjoint columns, so they are processed in parallel; the lattice is shared
// read-only.  Output is deterministic regardless of scheduling.
func Assemble(lat *Lattice, datasets []Dataset, opts Opts) (*BinnedTable, error) {
	cols := make(map[string]int, len(datasets))
	names := make([]string, len(datasets))
	for i, d := range datasets {
		if _, found := cols[d.Name]; found {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDataset, d.Name)
		}
		cols[d.Name] = i
		names[i] = d.Name
	}
	t := &BinnedTable{
		Bins:     lat.Bins(),
		Datasets: names,
		Mean:     make([][]float64, lat.NumBins()),
		Count:    make([][]int, lat.NumBins()),
		cols:     cols,
	}
	for b := range t.Mean {
		t.Mean[b] = make([]float64, len(datasets))
		t.Count[b] = make([]int, len(datasets))
	}
	if len(datasets) == 0 {
		return t, nil
	}

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism > len(datasets) {
		parallelism = len(datasets)
	}
	allStats := make([]Stats, len(datasets))
	err := traverse.Each(parallelism, func(jobIdx int) error {
		startIdx := (jobIdx * len(datasets)) / parallelism
		endIdx := ((jobIdx + 1) * len(datasets)) / parallelism
		for d := startIdx; d < endIdx; d++ {
			cells, stats, err := Aggregate(lat, datasets[d].Intervals)
			if err != nil {
				return fmt.Errorf("dataset %s: %w", datasets[d].Name, err)
			}
			allStats[d] = stats
			// Column d is this job's alone; rows are preallocated above.
			for _, c := range cells {
				t.Mean[c.Bin][d] = c.Mean
				t.Count[c.Bin][d] = c.Count
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, s := range allStats {
		t.Stats = t.Stats.Merge(s)
	}
	return t, nil
}

// MeanColumn returns the named dataset's mean column, in bin order.  The
// returned slice is freshly allocated.
func (t *BinnedTable) MeanColumn(name string) ([]float64, error) {
	d, found := t.cols[name]
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, name)
	}
	col := make([]float64, len(t.Mean))
	for b := range t.Mean {
		col[b] = t.Mean[b][d]
	}
	return col, nil
}

// CountColumn returns the named dataset's count column, in bin order.
func (t *BinnedTable) CountColumn(name string) ([]int, error) {
	d, found := t.cols[name]
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, name)
	}
	col := make([]int, len(t.Count))
	for b := range t.Count {
		col[b] = t.Count[b][d]
	}
	return col, nil
}
