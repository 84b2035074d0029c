// Package dataset loads tabular files into engine tables and normalizes them
// under a declared column policy.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cesde-ntp/tablero/engine"
	"github.com/cesde-ntp/tablero/faults"
)

// ============================================================================
// CSV LOADER — Parses delimited text into a raw engine.Table
// ============================================================================
// Every column loads as a string; empty cells are missing. The loader fails
// fast: a missing header, a ragged row or an unreadable source yields
// faults.ErrDataUnavailable and no partial table.
// ============================================================================

// Load reads the CSV file at path.
func Load(path string) (*engine.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, errors.Join(faults.ErrDataUnavailable, err))
	}
	defer f.Close()

	t, err := LoadReader(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}

// LoadReader reads CSV from r. The first record is the header.
func LoadReader(r io.Reader) (*engine.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read header: %w", faults.ErrDataUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", errors.Join(faults.ErrDataUnavailable, err))
	}

	cols := make([]engine.Column, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			return nil, fmt.Errorf("header column %d is empty: %w", i+1, faults.ErrDataUnavailable)
		}
		cols[i] = engine.Column{Name: h, Kind: engine.KindString}
	}

	var rows [][]engine.Value
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// csv.ErrFieldCount lands here for ragged rows
			return nil, fmt.Errorf("read row: %w", errors.Join(faults.ErrDataUnavailable, err))
		}
		row := make([]engine.Value, len(record))
		for i, cell := range record {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				row[i] = engine.Missing(engine.KindString)
				continue
			}
			row[i] = engine.String(cell)
		}
		rows = append(rows, row)
	}

	t, err := engine.New(cols, rows)
	if err != nil {
		return nil, fmt.Errorf("build table: %w", errors.Join(faults.ErrDataUnavailable, err))
	}
	return t, nil
}
