// Package genome models the reference a bin lattice is gridded against: an
// ordered collection of named sequences with known lengths.  The order is the
// caller's (it determines global bin numbering downstream), so a Reference
// never sorts or dedups silently.
package genome

import (
	"bufio"
	"io"
	"regexp"
	"strconv"

	"github.com/biogo/hts/sam"
	"github.com/pkg/errors"
)

// Sequence is one reference sequence (typically a chromosome).
type Sequence struct {
	Name   string
	Length int64
}

// Reference is an immutable, ordered reference dictionary.  It is safe for
// concurrent readers.
type Reference struct {
	seqs    []Sequence
	lengths map[string]int64
}

// New builds a Reference from sequences in the given order.  Every sequence
// must have a nonempty, unique name and a positive length; anything else is
// rejected here so later stages can trust the dictionary.
func New(seqs []Sequence) (*Reference, error) {
	r := &Reference{
		seqs:    make([]Sequence, len(seqs)),
		lengths: make(map[string]int64, len(seqs)),
	}
	copy(r.seqs, seqs)
	for _, s := range seqs {
		if s.Name == "" {
			return nil, errors.Errorf("genome: sequence with empty name")
		}
		if s.Length <= 0 {
			return nil, errors.Errorf("genome: sequence %s has no recorded length", s.Name)
		}
		if _, found := r.lengths[s.Name]; found {
			return nil, errors.Errorf("genome: duplicate sequence %s", s.Name)
		}
		r.lengths[s.Name] = s.Length
	}
	return r, nil
}

// Len returns the length of the named sequence, and whether it is present.
func (r *Reference) Len(name string) (int64, bool) {
	length, ok := r.lengths[name]
	return length, ok
}

// Sequences returns the sequences in reference order.
func (r *Reference) Sequences() []Sequence {
	return r.seqs
}

// Fai index files consist of one tab-separated line per sequence in the
// associated FASTA file: "<name>\t<length>\t<byte offset>\t<bases per
// line>\t<bytes per line>".  Only the first two fields matter here.
var faiRegExp = regexp.MustCompile(`(\S+)\t(\d+)\t(\d+)\t(\d+)\t(\d+)`)

// ReadFai parses a samtools .fai index into a Reference, preserving the
// file's sequence order.  The FASTA data itself is never touched.
func ReadFai(r io.Reader) (*Reference, error) {
	var seqs []Sequence
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanLines)
	for scanner.Scan() {
		matches := faiRegExp.FindStringSubmatch(scanner.Text())
		if len(matches) != 6 {
			return nil, errors.Errorf("genome: invalid .fai line: %s", scanner.Text())
		}
		length, err := strconv.ParseInt(matches[2], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "genome: bad length on .fai line: %s", scanner.Text())
		}
		seqs = append(seqs, Sequence{Name: matches[1], Length: length})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "genome: couldn't read .fai data")
	}
	if len(seqs) == 0 {
		return nil, errors.Errorf("genome: empty .fai index")
	}
	return New(seqs)
}

// FromSAMHeader builds a Reference from the reference dictionary of a SAM/BAM
// header, in header order.
func FromSAMHeader(h *sam.Header) (*Reference, error) {
	refs := h.Refs()
	seqs := make([]Sequence, 0, len(refs))
	for _, ref := range refs {
		seqs = append(seqs, Sequence{Name: ref.Name(), Length: int64(ref.Len())})
	}
	return New(seqs)
}
