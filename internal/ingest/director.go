package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vvka-141/pgingest/internal/sanitize"
	"github.com/vvka-141/pgingest/pkg/pgingest"
)

// FileIngestor is the single-file operation the Director drives. Satisfied
// by *Ingestor; tests substitute a recording fake.
type FileIngestor interface {
	IngestFile(ctx context.Context, cfg pgingest.FileConfig) (int64, error)
}

// Director ingests every CSV file in a directory, one at a time on one
// shared session, isolating per-file failures.
type Director struct {
	ingestor  FileIngestor
	logger    pgingest.Logger
	sanitizer *sanitize.Sanitizer
}

// NewDirector creates a Director.
//
// Panics if ingestor or logger is nil (fail-fast dependency injection, same
// contract as NewIngestor).
func NewDirector(ingestor FileIngestor, logger pgingest.Logger) *Director {
	if ingestor == nil {
		panic("ingestor cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Director{
		ingestor:  ingestor,
		logger:    logger,
		sanitizer: sanitize.New(),
	}
}

// IngestDirectory discovers CSV files in cfg.Path and ingests each one.
//
// Discovery looks at immediate entries only: nested directories and
// non-CSV files are skipped, the extension match is case-insensitive.
// A missing or non-directory path, or a directory with zero matches, fails
// immediately with no files attempted. After that, one file's failure never
// stops the batch; the report tallies successes against the total.
func (d *Director) IngestDirectory(ctx context.Context, cfg pgingest.DirectoryConfig) (*pgingest.BatchReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	info, err := os.Stat(cfg.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory %q: %w", cfg.Path, pgingest.ErrSourceNotFound)
		}
		return nil, fmt.Errorf("stat %q: %w", cfg.Path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path %q: %w", cfg.Path, pgingest.ErrNotADirectory)
	}

	files, err := discoverCSVFiles(cfg.Path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("directory %q: %w", cfg.Path, pgingest.ErrNoSourceFiles)
	}

	d.logger.Info("Found %d CSV files in %q", len(files), cfg.Path)

	report := &pgingest.BatchReport{}
	for _, name := range files {
		table := d.destinationTable(cfg.TablePrefix, name)
		result := pgingest.FileResult{
			Path:  filepath.Join(cfg.Path, name),
			Table: table,
		}

		rows, err := d.ingestor.IngestFile(ctx, pgingest.FileConfig{
			Path:      result.Path,
			Schema:    cfg.Schema,
			Table:     table,
			BatchSize: cfg.BatchSize,
		})
		if err != nil {
			// Failure is isolated: record it and continue with the next file.
			result.Err = err
		} else {
			result.Rows = rows
			report.Succeeded++
		}
		report.Results = append(report.Results, result)
	}

	d.logger.Info("%d/%d files processed successfully", report.Succeeded, report.Total())
	return report, nil
}

// destinationTable derives the table name from the naming policy: the
// optional prefix concatenated with the lowercased, extension-stripped base
// name, sanitized as a whole.
func (d *Director) destinationTable(prefix, fileName string) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return d.sanitizer.TableName(prefix + strings.ToLower(base))
}

// discoverCSVFiles lists immediate regular entries whose extension matches
// the CSV suffix case-insensitively. os.ReadDir returns names sorted, so
// processing order is deterministic.
func discoverCSVFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %q: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), pgingest.SourceExtension) {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}
