// Package rowmodel computes derived row models over a dataset: the core
// model built from records, and the filter, group, sort, paginate, expand
// and facet stages that each turn one model into another.
//
// Models are immutable once built. A stage never mutates its input; rows
// that change (filtered children, re-sorted children, group rows) are
// shallow copies, so an upstream model stays valid for memoized reuse.
package rowmodel

import "strconv"

// Record is one source row, keyed by accessor key.
type Record = map[string]any

// Row is one node of a row model.
type Row struct {
	ID       string
	Index    int // position among its original siblings
	Depth    int
	ParentID string
	Original Record
	SubRows  []*Row

	// Set on rows produced by the group stage.
	GroupingColumnID string
	GroupingValue    any
	LeafRows         []*Row

	values map[string]any
}

// Value returns the row's value for a column id, or nil.
func (r *Row) Value(columnID string) any {
	if r == nil || r.values == nil {
		return nil
	}
	return r.values[columnID]
}

// IsGrouped reports whether the row was produced by the group stage.
func (r *Row) IsGrouped() bool {
	return r.GroupingColumnID != ""
}

// CanExpand reports whether the row has children to reveal.
func (r *Row) CanExpand() bool {
	return len(r.SubRows) > 0
}

// clone returns a shallow copy that can take new SubRows or Depth.
func (r *Row) clone() *Row {
	c := *r
	return &c
}

// Model is an ordered set of top-level rows plus lookups over every row
// reachable from them.
type Model struct {
	Rows     []*Row
	FlatRows []*Row
	ByID     map[string]*Row
}

// Len returns the number of top-level rows.
func (m *Model) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Rows)
}

// Row looks up a row by id anywhere in the model.
func (m *Model) Row(id string) (*Row, bool) {
	if m == nil {
		return nil, false
	}
	r, ok := m.ByID[id]
	return r, ok
}

// newModel builds FlatRows (depth-first) and ByID for a row set.
func newModel(rows []*Row) *Model {
	m := &Model{
		Rows: rows,
		ByID: make(map[string]*Row),
	}
	var walk func(rs []*Row)
	walk = func(rs []*Row) {
		for _, r := range rs {
			m.FlatRows = append(m.FlatRows, r)
			m.ByID[r.ID] = r
			walk(r.SubRows)
		}
	}
	walk(rows)
	if m.Rows == nil {
		m.Rows = []*Row{}
	}
	return m
}

func childID(parentID string, index int) string {
	if parentID == "" {
		return strconv.Itoa(index)
	}
	return parentID + "." + strconv.Itoa(index)
}
