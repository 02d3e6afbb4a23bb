package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/imgajeed76/gridcore/internal/grid"
	"github.com/imgajeed76/gridcore/internal/util"
)

// ErrNotArray is returned for JSON input that is not an array of objects.
var ErrNotArray = errors.New("expected a JSON array of objects")

// LoadJSON reads a JSON array of objects.
func LoadJSON(ctx context.Context, path string, maxRows int) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSON(ctx, f, maxRows)
}

// ReadJSON reads a JSON array of objects from r. Columns appear in the
// order their keys are first seen; numbers become float64. Objects under
// the subRows key are nested rows and do not become columns.
func ReadJSON(ctx context.Context, r io.Reader, maxRows int) (*Dataset, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}

	ds := &Dataset{}
	var order []string
	types := make(map[string]*jsonType)

	for dec.More() {
		if len(ds.Rows)%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if maxRows > 0 && len(ds.Rows) == maxRows {
			ds.Truncated = true
			break
		}

		keys, rec, err := readObject(dec)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			if k == SubRowsKey {
				ds.Nested = true
				continue
			}
			t, ok := types[k]
			if !ok {
				t = &jsonType{}
				types[k] = t
				order = append(order, k)
			}
			t.observe(rec[k])
		}
		ds.Rows = append(ds.Rows, rec)
	}

	if !ds.Truncated {
		if err := expectDelim(dec, ']'); err != nil {
			return nil, err
		}
	}
	if len(order) == 0 {
		return nil, util.ErrEmptySource
	}

	ds.Columns = make([]Column, len(order))
	for i, k := range order {
		ds.Columns[i] = Column{Name: k, Type: types[k].result()}
	}
	for _, rec := range ds.Rows {
		for _, col := range ds.Columns {
			if col.Type == TypeDate {
				if s, ok := rec[col.Name].(string); ok {
					rec[col.Name] = convert(s, TypeDate)
				}
			}
		}
	}
	return ds, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotArray, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: got %v", ErrNotArray, tok)
	}
	return nil
}

// readObject decodes one object keeping its key order.
func readObject(dec *json.Decoder) ([]string, grid.Record, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, nil, err
	}
	var keys []string
	rec := make(grid.Record)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		if _, dup := rec[key]; !dup {
			keys = append(keys, key)
		}
		rec[key] = normalize(v)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, nil, err
	}
	return keys, rec, nil
}

// normalize converts json.Number to float64 throughout a decoded value.
func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	}
	return v
}

// jsonType infers a column type from decoded values. Strings that all
// parse as dates make a date column.
type jsonType struct {
	kinds map[string]bool
	dates bool
	seen  bool
}

func (t *jsonType) observe(v any) {
	if v == nil {
		return
	}
	if t.kinds == nil {
		t.kinds = make(map[string]bool)
		t.dates = true
	}
	t.seen = true
	switch x := v.(type) {
	case float64:
		t.kinds[TypeNumber] = true
	case bool:
		t.kinds[TypeBool] = true
	case string:
		t.kinds[TypeString] = true
		if _, ok := parseDate(x); !ok {
			t.dates = false
		}
	default:
		t.kinds["other"] = true
	}
}

func (t *jsonType) result() string {
	if !t.seen || len(t.kinds) != 1 {
		return TypeString
	}
	switch {
	case t.kinds[TypeNumber]:
		return TypeNumber
	case t.kinds[TypeBool]:
		return TypeBool
	case t.kinds[TypeString] && t.dates:
		return TypeDate
	}
	return TypeString
}
