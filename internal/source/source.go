// Package source reads delimited text files for ingestion: header parsing,
// row count estimation, and bounded-memory batch iteration.
package source

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/vvka-141/pgingest/pkg/pgingest"
)

// File is a validated handle to a delimited source file. The file itself is
// never mutated; each accessor opens and closes its own descriptor so a File
// can be reused across the staging phases.
type File struct {
	// Path is the location of the source file.
	Path string
}

// Open validates that path exists and refers to a regular file. No store
// connection or file content access happens here; a missing file fails
// before any other side effect.
func Open(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file %q: %w", path, pgingest.ErrSourceNotFound)
		}
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("file %q is a directory: %w", path, pgingest.ErrSourceNotFound)
	}
	return &File{Path: path}, nil
}

// Header reads and parses only the first line of the file, returning the raw
// column names in order. Zero data rows are read.
func (f *File) Header() ([]string, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", f.Path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file %q has no header row", f.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse header of %q: %w", f.Path, err)
	}
	return header, nil
}

// EstimateRows returns the number of data rows: line count minus the header.
// A missing trailing newline still counts the final row, and a header-only
// file reports zero.
func (f *File) EstimateRows() (int64, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return 0, fmt.Errorf("open %q: %w", f.Path, err)
	}
	defer file.Close()

	var lines int64
	var lastByte byte
	buf := make([]byte, 64*1024)
	for {
		n, err := file.Read(buf)
		if n > 0 {
			lines += int64(bytes.Count(buf[:n], []byte{'\n'}))
			lastByte = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("count rows of %q: %w", f.Path, err)
		}
	}

	// Final line without a trailing newline is still a line.
	if lastByte != 0 && lastByte != '\n' {
		lines++
	}

	rows := lines - 1 // header
	if rows < 0 {
		rows = 0
	}
	return rows, nil
}

// Batches opens the file for streaming reads, discards the header line, and
// returns a BatchReader yielding up to batchSize records per call. The
// caller must Close the reader.
func (f *File) Batches(batchSize int) (*BatchReader, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", f.Path, err)
	}

	r := csv.NewReader(file)
	// The header establishes the expected field count; every subsequent
	// record must match it (csv.ErrFieldCount otherwise).
	if _, err := r.Read(); err != nil {
		file.Close()
		if err == io.EOF {
			return nil, fmt.Errorf("file %q has no header row", f.Path)
		}
		return nil, fmt.Errorf("parse header of %q: %w", f.Path, err)
	}

	return &BatchReader{file: file, reader: r, batchSize: batchSize}, nil
}

// BatchReader iterates a source file in fixed-size row batches. Fields are
// opaque text: no trimming, no type coercion, values round-trip byte for
// byte into the staging columns.
type BatchReader struct {
	file      *os.File
	reader    *csv.Reader
	batchSize int
	done      bool
}

// Next returns the next batch of up to batchSize records. It returns io.EOF
// after the final batch has been delivered. Any parse or I/O error aborts
// iteration; there is no partial-batch retry.
func (b *BatchReader) Next() ([][]string, error) {
	if b.done {
		return nil, io.EOF
	}

	batch := make([][]string, 0, b.batchSize)
	for len(batch) < b.batchSize {
		record, err := b.reader.Read()
		if err == io.EOF {
			b.done = true
			if len(batch) == 0 {
				return nil, io.EOF
			}
			return batch, nil
		}
		if err != nil {
			b.done = true
			return nil, err
		}
		batch = append(batch, record)
	}
	return batch, nil
}

// Close releases the underlying file descriptor.
func (b *BatchReader) Close() error {
	return b.file.Close()
}
