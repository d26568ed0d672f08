// Package ingest reads delimited row tables for the point-cloud engine.
// It is the engine's only suspension point: a source is read completely
// and handed over as one Table, never streamed.
package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/banshee-data/pointplay/internal/fsutil"
	"github.com/banshee-data/pointplay/internal/monitoring"
)

var logf = monitoring.Tagged("ingest")

// Table is a header row plus data rows. Rows never include the header.
type Table struct {
	Header []string
	Rows   [][]string
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Column returns the header label for column idx, or "" when out of range.
func (t Table) Column(idx int) string {
	if idx < 0 || idx >= len(t.Header) {
		return ""
	}
	return t.Header[idx]
}

// Read parses CSV from r. The first record is the header. Records may have
// differing field counts; short rows are kept and treated as missing cells.
func Read(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, nil
	}
	if err != nil {
		return Table{}, fmt.Errorf("failed to read header: %w", err)
	}

	table := Table{Header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("failed to read row %d: %w", len(table.Rows)+1, err)
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

// Result is what LoadAsync delivers: the parsed table, the raw bytes it was
// parsed from, and the error that emptied it, if any.
type Result struct {
	Path  string
	Table Table
	Raw   []byte
	Err   error
}

// ReadFile reads and parses the CSV file at path.
func ReadFile(path string) (Table, []byte, error) {
	return ReadFileFS(fsutil.OSFileSystem{}, path)
}

// ReadFileFS reads and parses the CSV file at path on fsys.
func ReadFileFS(fsys fsutil.FileSystem, path string) (Table, []byte, error) {
	cleanPath := filepath.Clean(path)
	raw, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return Table{}, nil, fmt.Errorf("failed to read %s: %w", cleanPath, err)
	}
	table, err := Read(bytes.NewReader(raw))
	if err != nil {
		return Table{}, raw, fmt.Errorf("failed to parse %s: %w", cleanPath, err)
	}
	return table, raw, nil
}

// LoadAsync reads path in the background and delivers exactly one Result.
// A failed read is logged and delivered as an empty Table with Err set, so
// the engine always receives a row set. If ctx ends first the channel
// receives an empty Table carrying ctx.Err().
func LoadAsync(ctx context.Context, path string) <-chan Result {
	return LoadAsyncFS(ctx, fsutil.OSFileSystem{}, path)
}

// LoadAsyncFS is LoadAsync reading from fsys.
func LoadAsyncFS(ctx context.Context, fsys fsutil.FileSystem, path string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)

		done := make(chan Result, 1)
		go func() {
			table, raw, err := ReadFileFS(fsys, path)
			if err != nil {
				logf("load failed, continuing with empty table: %v", err)
				table = Table{}
			} else {
				logf("loaded %s: %d rows, %d columns", path, table.Len(), len(table.Header))
			}
			done <- Result{Path: path, Table: table, Raw: raw, Err: err}
		}()

		select {
		case res := <-done:
			out <- res
		case <-ctx.Done():
			logf("load of %s cancelled: %v", path, ctx.Err())
			out <- Result{Path: path, Err: ctx.Err()}
		}
	}()
	return out
}
