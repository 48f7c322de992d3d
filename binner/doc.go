/*Package binner re-grids scored genomic intervals onto a uniform fixed-width
  bin lattice and aggregates per-bin values across named datasets.  The
  lattice is generated once from a genome.Reference and shared, immutable,
  across all aggregations; each dataset's intervals are joined against it
  producing a per-bin (mean, count) pair, and the per-dataset results are
  merged into a single row-aligned BinnedTable.

  Aggregation is deliberately unweighted: an interval spanning several bins
  contributes its full value to each of them, matching the reference tool
  this package reimplements.  Missing values (see Missing) are structurally
  absent, excluded from both the sum and the count of every bin they touch.
*/
package binner
