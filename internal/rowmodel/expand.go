package rowmodel

// Expanded is the set of expanded rows; All expands everything.
type Expanded struct {
	All bool
	IDs map[string]bool
}

// IsExpanded reports whether a row id is expanded.
func (e Expanded) IsExpanded(id string) bool {
	return e.All || e.IDs[id]
}

// Toggle returns a copy with one row flipped. Collapsing a row while All is
// set materializes the other ids of m as expanded.
func (e Expanded) Toggle(id string, m *Model) Expanded {
	next := Expanded{IDs: make(map[string]bool)}
	if e.All && m != nil {
		for _, r := range m.FlatRows {
			if r.CanExpand() {
				next.IDs[r.ID] = true
			}
		}
	}
	for k, v := range e.IDs {
		if v {
			next.IDs[k] = true
		}
	}
	if next.IDs[id] {
		delete(next.IDs, id)
	} else {
		next.IDs[id] = true
	}
	return next
}

// Expand flattens the model into visible rows: each row followed by the
// visible rows of its children when it is expanded. FlatRows and ByID are
// carried over so lookups still reach collapsed rows.
func Expand(in *Model, e Expanded) *Model {
	if !e.All && len(e.IDs) == 0 {
		return in
	}
	var visible []*Row
	var walk func(rows []*Row)
	walk = func(rows []*Row) {
		for _, r := range rows {
			visible = append(visible, r)
			if r.CanExpand() && e.IsExpanded(r.ID) {
				walk(r.SubRows)
			}
		}
	}
	walk(in.Rows)
	if visible == nil {
		visible = []*Row{}
	}
	return &Model{Rows: visible, FlatRows: in.FlatRows, ByID: in.ByID}
}
