// Package bedgraph reads bedGraph-style signal tracks: one whitespace-
// delimited "chrom start end value" record per line, optionally gzipped.
// Each file becomes one binner.Dataset; the engine itself never touches file
// formats.
package bedgraph

import (
	"bufio"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JELAshford/replibin/binner"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
)

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// parseValue converts a value token, mapping the usual no-data spellings to
// the missing sentinel.
func parseValue(tok string) (float64, error) {
	switch tok {
	case "NA", "na", "NaN", "nan", ".":
		return binner.Missing, nil
	}
	return strconv.ParseFloat(tok, 64)
}

// ReadTrack reads one track into a Dataset with the given name.  Lines
// starting with '#', "track" or "browser" are skipped.  Record order is
// preserved; no sorting or merging is performed.
func ReadTrack(reader io.Reader, name string) (binner.Dataset, error) {
	ds := binner.Dataset{Name: name}
	scanner := bufio.NewScanner(reader)
	var tokens [4][]byte
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		if len(curLine) == 0 || curLine[0] == '#' {
			continue
		}
		nToken := getTokens(tokens[:], curLine)
		if nToken == 0 {
			continue
		}
		first := string(tokens[0])
		if first == "track" || first == "browser" {
			continue
		}
		if nToken != 4 {
			return binner.Dataset{}, errors.E("bedgraph.ReadTrack:", name, "line", lineIdx, "has fewer tokens than expected")
		}
		start, err := strconv.ParseInt(string(tokens[1]), 10, 64)
		if err != nil {
			return binner.Dataset{}, errors.E(err, "bedgraph.ReadTrack: bad start coordinate on line", lineIdx)
		}
		end, err := strconv.ParseInt(string(tokens[2]), 10, 64)
		if err != nil {
			return binner.Dataset{}, errors.E(err, "bedgraph.ReadTrack: bad end coordinate on line", lineIdx)
		}
		if start < 0 || end < start {
			return binner.Dataset{}, errors.E("bedgraph.ReadTrack: invalid coordinate pair on line", lineIdx)
		}
		value, err := parseValue(string(tokens[3]))
		if err != nil {
			return binner.Dataset{}, errors.E(err, "bedgraph.ReadTrack: bad value on line", lineIdx)
		}
		ds.Intervals = append(ds.Intervals, binner.SourceInterval{
			Seq:   first,
			Start: start,
			End:   end,
			Value: value,
		})
	}
	if err := scanner.Err(); err != nil {
		return binner.Dataset{}, err
	}
	log.Printf("track %s loaded, %d interval(s).", name, len(ds.Intervals))
	return ds, nil
}

// ReadTrackFromPath is a wrapper for ReadTrack that takes a path instead of
// an io.Reader, gunzipping transparently.  The dataset is named after the
// file (see DatasetName).
func ReadTrackFromPath(path string) (ds binner.Dataset, err error) {
	ctx := vcontext.Background()
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	return ReadTrack(reader, DatasetName(path))
}

// DatasetName derives a dataset name from a track path: the base name with
// compression and track-format extensions stripped.
func DatasetName(path string) string {
	name := filepath.Base(path)
	for {
		ext := strings.ToLower(filepath.Ext(name))
		switch ext {
		case ".gz", ".bgz", ".bedgraph", ".bg", ".bed", ".tsv", ".txt":
			name = name[:len(name)-len(ext)]
			continue
		}
		return name
	}
}
