package rowmodel

// Faceted is the model a column's filter UI sees: every active filter
// except the column's own.
func Faceted(in *Model, columns []Column, filters []ColumnFilter, global GlobalFilter, columnID string) *Model {
	others := make([]ColumnFilter, 0, len(filters))
	for _, f := range filters {
		if f.ID != columnID {
			others = append(others, f)
		}
	}
	return Filter(in, columns, others, global)
}

// UniqueValues counts occurrences of each value of a column over the
// model's non-group rows. List values count each element.
func UniqueValues(m *Model, columnID string) map[any]int {
	counts := make(map[any]int)
	if m == nil {
		return counts
	}
	for _, r := range m.FlatRows {
		if r.IsGrouped() {
			continue
		}
		v := r.Value(columnID)
		switch v.(type) {
		case []any, []string, []int, []float64:
			for _, item := range toSlice(v) {
				counts[valueKey(item)]++
			}
		default:
			counts[valueKey(v)]++
		}
	}
	return counts
}

// MinMax returns the numeric range of a column; ok is false when no value
// is numeric.
func MinMax(m *Model, columnID string) (lo, hi float64, ok bool) {
	if m == nil {
		return 0, 0, false
	}
	for _, r := range m.FlatRows {
		if r.IsGrouped() {
			continue
		}
		f, isNum := ToFloat(r.Value(columnID))
		if !isNum {
			continue
		}
		if !ok {
			lo, hi, ok = f, f, true
			continue
		}
		if f < lo {
			lo = f
		}
		if f > hi {
			hi = f
		}
	}
	return lo, hi, ok
}
