package rowmodel

// Column is the row-model view of a leaf column: how to read its value and
// which functions the stages use for it.
type Column struct {
	ID       string
	Accessor func(Record) any

	Filter    FilterFunc
	Sort      SortFunc
	Aggregate AggregationFunc

	CanFilter       bool
	CanGlobalFilter bool
	CanSort         bool
	CanGroup        bool
}

// SubRowsFunc projects a record onto its hierarchical children.
type SubRowsFunc func(Record) []Record

// DefaultSubRows reads children from the "subRows" key.
func DefaultSubRows(rec Record) []Record {
	switch v := rec["subRows"].(type) {
	case []Record:
		return v
	case []any:
		out := make([]Record, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// Core builds the core row model: one row per record, children resolved
// through subRows, every column value read once.
func Core(data []Record, columns []Column, subRows SubRowsFunc) *Model {
	if subRows == nil {
		subRows = DefaultSubRows
	}

	var build func(recs []Record, depth int, parentID string) []*Row
	build = func(recs []Record, depth int, parentID string) []*Row {
		rows := make([]*Row, 0, len(recs))
		for i, rec := range recs {
			r := &Row{
				ID:       childID(parentID, i),
				Index:    i,
				Depth:    depth,
				ParentID: parentID,
				Original: rec,
				values:   make(map[string]any, len(columns)),
			}
			for _, col := range columns {
				if col.Accessor != nil && rec != nil {
					r.values[col.ID] = col.Accessor(rec)
				}
			}
			if rec != nil {
				if children := subRows(rec); len(children) > 0 {
					r.SubRows = build(children, depth+1, r.ID)
				}
			}
			rows = append(rows, r)
		}
		return rows
	}

	return newModel(build(data, 0, ""))
}
