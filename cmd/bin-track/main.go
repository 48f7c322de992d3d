package main

/*
bin-track re-grids one or more genomic signal tracks onto a fixed-width bin
lattice spanning a reference genome, and writes two TSV tables (per-bin mean
and per-bin contributing-interval count) with one column per track.
*/

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/JELAshford/replibin/binner"
	"github.com/JELAshford/replibin/encoding/bedgraph"
	"github.com/JELAshford/replibin/genome"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
)

var (
	faiPath     = flag.String("fai", "", "Reference FASTA .fai index path; required")
	binWidth    = flag.Int64("bin-width", 500, "Bin width in bases")
	seqs        = flag.String("seqs", "", "Comma-separated sequence names to bin, in order; default: every sequence in the reference, in reference order")
	parallelism = flag.Int("parallelism", binner.DefaultOpts.Parallelism, "Maximum number of simultaneous per-track aggregation jobs; 0 = runtime.NumCPU()")
	outPrefix   = flag.String("out", "bin-track", "Output path prefix")
)

func binTrackUsage() {
	fmt.Printf("Usage: %s [OPTIONS] trackpath [trackpath ...]\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = binTrackUsage
	shutdown := grail.Init()
	defer shutdown()

	trackPaths := flag.Args()
	if *faiPath == "" {
		log.Fatalf("-fai is required")
	}
	if len(trackPaths) == 0 {
		log.Fatalf("Missing positional arguments (at least one track path required); please check flag syntax")
	}

	ctx := vcontext.Background()
	refFile, err := file.Open(ctx, *faiPath)
	if err != nil {
		log.Fatalf("open %s: %v", *faiPath, err)
	}
	ref, err := genome.ReadFai(refFile.Reader(ctx))
	if cerr := refFile.Close(ctx); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatalf("read %s: %v", *faiPath, err)
	}

	var seqNames []string
	if *seqs != "" {
		seqNames = strings.Split(*seqs, ",")
	}
	lat, err := binner.GenerateBins(ref, seqNames, *binWidth)
	if err != nil {
		log.Fatalf("%v", err)
	}

	datasets := make([]binner.Dataset, 0, len(trackPaths))
	for _, path := range trackPaths {
		ds, err := bedgraph.ReadTrackFromPath(path)
		if err != nil {
			log.Fatalf("read track %s: %v", path, err)
		}
		datasets = append(datasets, ds)
	}

	table, err := binner.Assemble(lat, datasets, binner.Opts{Parallelism: *parallelism})
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("aggregated %d interval(s) into %d bin(s) across %d track(s); %d missing, %d off lattice",
		table.Stats.Intervals, lat.NumBins(), len(datasets),
		table.Stats.MissingValues, table.Stats.OffLattice)

	if err := writeMeans(*outPrefix+".mean.tsv", table); err != nil {
		log.Fatalf("%v", err)
	}
	if err := writeCounts(*outPrefix+".count.tsv", table); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("exiting")
}

func writeHeader(w *bufio.Writer, datasets []string) error {
	if _, err := w.WriteString("chrom\tstart\tend"); err != nil {
		return err
	}
	for _, name := range datasets {
		if _, err := w.WriteString("\t" + name); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

func writeMeans(path string, t *binner.BinnedTable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close() // nolint: errcheck
	w := bufio.NewWriter(f)
	if err := writeHeader(w, t.Datasets); err != nil {
		return err
	}
	for b, bin := range t.Bins {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d", bin.Seq, bin.Start, bin.End()); err != nil {
			return err
		}
		for d := range t.Datasets {
			v := t.Mean[b][d]
			s := "NA"
			if !binner.IsMissing(v) {
				s = strconv.FormatFloat(v, 'g', -1, 64)
			}
			if _, err := w.WriteString("\t" + s); err != nil {
				return err
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func writeCounts(path string, t *binner.BinnedTable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close() // nolint: errcheck
	w := bufio.NewWriter(f)
	if err := writeHeader(w, t.Datasets); err != nil {
		return err
	}
	for b, bin := range t.Bins {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d", bin.Seq, bin.Start, bin.End()); err != nil {
			return err
		}
		for d := range t.Datasets {
			if _, err := w.WriteString("\t" + strconv.Itoa(t.Count[b][d])); err != nil {
				return err
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}
