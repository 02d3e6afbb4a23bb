package table

import (
	"strconv"
	"strings"

	"github.com/imgajeed76/gridcore/internal/grid"
)

// parseFilterInput turns typed filter text into a filter value for c:
// "lo..hi" is a range, "a,b" a list for multi-select columns, numbers and
// booleans are parsed for typed columns. Empty text clears the filter.
func parseFilterInput(text string, c grid.ColumnDef) any {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if lo, hi, ok := strings.Cut(text, ".."); ok {
		return []any{scalar(lo, c), scalar(hi, c)}
	}
	if c.FilterVariant == grid.VariantMultiSelect {
		parts := strings.Split(text, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			if v := scalar(p, c); v != nil {
				out = append(out, v)
			}
		}
		return out
	}
	return scalar(text, c)
}

func scalar(s string, c grid.ColumnDef) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	switch c.DataType {
	case grid.TypeNumber:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case grid.TypeBool:
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return s
}
