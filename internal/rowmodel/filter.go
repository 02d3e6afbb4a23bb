package rowmodel

// ColumnFilter is an active filter value for one column.
type ColumnFilter struct {
	ID    string
	Value any
}

// GlobalFilter applies one value across every globally filterable column.
type GlobalFilter struct {
	Value any
	Fn    FilterFunc
}

func (g GlobalFilter) active() bool {
	return g.Fn != nil && !IsEmpty(g.Value)
}

type activeFilter struct {
	id    string
	fn    FilterFunc
	value any
}

// Filter keeps rows that pass every active column filter and, when a
// global filter is set, at least one globally filterable column. A row is
// also kept when any of its descendants is kept, so matches deep in a
// hierarchy stay reachable. With nothing active the input is returned.
func Filter(in *Model, columns []Column, filters []ColumnFilter, global GlobalFilter) *Model {
	byID := make(map[string]Column, len(columns))
	for _, c := range columns {
		byID[c.ID] = c
	}

	var active []activeFilter
	for _, f := range filters {
		col, ok := byID[f.ID]
		if !ok || !col.CanFilter || col.Filter == nil || IsEmpty(f.Value) {
			continue
		}
		active = append(active, activeFilter{id: f.ID, fn: col.Filter, value: f.Value})
	}

	var globalCols []string
	if global.active() {
		for _, c := range columns {
			if c.CanGlobalFilter {
				globalCols = append(globalCols, c.ID)
			}
		}
	}

	if len(active) == 0 && !global.active() {
		return in
	}

	passes := func(r *Row) bool {
		for _, f := range active {
			if !f.fn(r, f.id, f.value) {
				return false
			}
		}
		if global.active() {
			for _, id := range globalCols {
				if global.Fn(r, id, global.Value) {
					return true
				}
			}
			return false
		}
		return true
	}

	var keep func(rows []*Row) []*Row
	keep = func(rows []*Row) []*Row {
		out := make([]*Row, 0, len(rows))
		for _, r := range rows {
			children := keep(r.SubRows)
			if !passes(r) && len(children) == 0 {
				continue
			}
			if len(children) != len(r.SubRows) {
				r = r.clone()
				r.SubRows = children
			}
			out = append(out, r)
		}
		return out
	}

	return newModel(keep(in.Rows))
}
