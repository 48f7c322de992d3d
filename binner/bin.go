package binner

import (
	"errors"
	"fmt"
	"math"

	"github.com/JELAshford/replibin/genome"
)

var (
	// ErrInvalidConfig indicates an unusable engine configuration, such as a
	// non-positive bin width.
	ErrInvalidConfig = errors.New("binner: invalid configuration")
	// ErrUnknownSequence indicates a bin or interval referencing a sequence
	// the reference has no recorded length for.
	ErrUnknownSequence = errors.New("binner: unknown sequence")
	// ErrDuplicateDataset indicates two input datasets sharing a name, which
	// would make table columns ambiguous.
	ErrDuplicateDataset = errors.New("binner: duplicate dataset name")
	// ErrUnknownDataset indicates a table column lookup by a name no input
	// dataset carried.
	ErrUnknownDataset = errors.New("binner: unknown dataset name")
)

// Missing is the sentinel for an absent value, distinct in meaning from zero.
// All handling is through explicit IsMissing checks; no stage relies on NaN
// arithmetic propagation.
var Missing = math.NaN()

// IsMissing reports whether v is the missing sentinel.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Bin is one fixed-width segment of a reference sequence.  Start is the
// 1-based coordinate of its first position; the bin covers [Start,
// Start+Width) and Index numbers bins globally across the lattice.
type Bin struct {
	Seq   string
	Start int64
	Width int64
	Index int
}

// End returns the position one past the last covered by the bin.  For the
// final bin of a sequence this may exceed the sequence length.
func (b Bin) End() int64 {
	return b.Start + b.Width
}

// seqLayout locates one sequence's run of bins within the lattice.  origin is
// the start coordinate of the sequence's first bin; with a fixed bin width,
// the bins an interval overlaps follow from arithmetic on these three values.
type seqLayout struct {
	firstBin int
	numBins  int
	origin   int64
}

// Lattice is the ordered bin set for one engine run.  It is created by
// GenerateBins, never mutated afterwards, and safe for concurrent readers.
type Lattice struct {
	bins     []Bin
	width    int64
	seqNames []string
	layout   map[string]seqLayout
}

// GenerateBins builds the bin lattice for the named sequences, in the given
// order, stepping binWidth at a time from each sequence's first coordinate.
// Every bin has width exactly binWidth, so the last bin of a sequence may
// extend past the sequence's true end; that overhang is preserved, not
// clipped.  A nil seqNames bins every reference sequence in reference order.
func GenerateBins(ref *genome.Reference, seqNames []string, binWidth int64) (*Lattice, error) {
	if binWidth <= 0 {
		return nil, fmt.Errorf("%w: bin width %d must be positive", ErrInvalidConfig, binWidth)
	}
	if seqNames == nil {
		for _, s := range ref.Sequences() {
			seqNames = append(seqNames, s.Name)
		}
	} else {
		seqNames = append([]string(nil), seqNames...)
	}
	lat := &Lattice{
		width:    binWidth,
		seqNames: seqNames,
		layout:   make(map[string]seqLayout, len(seqNames)),
	}
	for _, name := range seqNames {
		length, ok := ref.Len(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no recorded length", ErrUnknownSequence, name)
		}
		if _, found := lat.layout[name]; found {
			return nil, fmt.Errorf("%w: sequence %s listed twice", ErrInvalidConfig, name)
		}
		lay := seqLayout{firstBin: len(lat.bins), origin: 1}
		for start := lay.origin; start <= length; start += binWidth {
			lat.bins = append(lat.bins, Bin{
				Seq:   name,
				Start: start,
				Width: binWidth,
				Index: len(lat.bins),
			})
			lay.numBins++
		}
		lat.layout[name] = lay
	}
	return lat, nil
}

// Bins returns the lattice's bins in global index order.  The returned slice
// is shared; callers must not modify it.
func (l *Lattice) Bins() []Bin {
	return l.bins
}

// NumBins returns the total number of bins across all sequences.
func (l *Lattice) NumBins() int {
	return len(l.bins)
}

// BinWidth returns the configured bin width.
func (l *Lattice) BinWidth() int64 {
	return l.width
}

// SeqNames returns the binned sequence names in lattice order.
func (l *Lattice) SeqNames() []string {
	return l.seqNames
}

// SeqBins returns the global index of the named sequence's first bin and the
// number of bins it spans, or ok=false if the sequence is not in the lattice.
func (l *Lattice) SeqBins(name string) (first, n int, ok bool) {
	lay, ok := l.layout[name]
	if !ok {
		return 0, 0, false
	}
	return lay.firstBin, lay.numBins, true
}
