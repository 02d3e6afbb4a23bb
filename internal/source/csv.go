package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/imgajeed76/gridcore/internal/grid"
	"github.com/imgajeed76/gridcore/internal/util"
)

// checkEvery is how many records a file loader reads between context checks.
const checkEvery = 1024

// LoadCSV reads a delimited file with a header row. Input that is not
// valid UTF-8 is decoded as Windows-1252.
func LoadCSV(ctx context.Context, path string, comma rune, maxRows int) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ReadCSV(ctx, bytes.NewReader(util.ToValidUTF8Bytes(data)), comma, maxRows)
}

// ReadCSV reads delimited records from r. The first record names the
// columns; short records are padded with nil and extra cells dropped.
func ReadCSV(ctx context.Context, r io.Reader, comma rune, maxRows int) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, util.ErrEmptySource
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = util.StripBOM(header[0])
	}
	names := uniqueNames(header)

	ds := &Dataset{}
	var raw [][]string
	for {
		if len(raw)%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if maxRows > 0 && len(raw) == maxRows {
			if _, err := cr.Read(); err == nil {
				ds.Truncated = true
			}
			break
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		raw = append(raw, rec)
	}

	infer := make([]*inference, len(names))
	for i := range infer {
		infer[i] = newInference()
	}
	for _, rec := range raw {
		for i := range names {
			if i < len(rec) {
				infer[i].observe(rec[i])
			}
		}
	}

	ds.Columns = make([]Column, len(names))
	for i, name := range names {
		ds.Columns[i] = Column{Name: name, Type: infer[i].result()}
	}

	ds.Rows = make([]grid.Record, len(raw))
	for n, rec := range raw {
		row := make(grid.Record, len(names))
		for i, col := range ds.Columns {
			if i < len(rec) {
				row[col.Name] = convert(rec[i], col.Type)
			} else {
				row[col.Name] = nil
			}
		}
		ds.Rows[n] = row
	}
	return ds, nil
}

// uniqueNames fills blank header cells and suffixes repeated names so every
// column gets its own accessor key.
func uniqueNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		}
		seen[name]++
		names[i] = name
	}
	return names
}
