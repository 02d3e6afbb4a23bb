package rowmodel

import (
	"fmt"
	"strconv"
)

// Group nests the top-level rows under one group row per distinct value of
// each grouping column, in grouping order. Groups keep first-appearance
// order. Group rows carry the grouping values of themselves and their
// ancestors, plus aggregated values for columns with an aggregation.
// Unknown grouping ids and columns that cannot group are ignored.
func Group(in *Model, columns []Column, grouping []string) *Model {
	byID := make(map[string]Column, len(columns))
	for _, c := range columns {
		byID[c.ID] = c
	}
	ids := make([]string, 0, len(grouping))
	for _, id := range grouping {
		if col, ok := byID[id]; ok && col.CanGroup {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return in
	}

	var groupUp func(rows []*Row, depth int, parentID string, inherited map[string]any) []*Row
	groupUp = func(rows []*Row, depth int, parentID string, inherited map[string]any) []*Row {
		if depth == len(ids) {
			out := make([]*Row, len(rows))
			for i, r := range rows {
				out[i] = reDepth(r, depth, parentID)
			}
			return out
		}

		colID := ids[depth]
		type bucket struct {
			value any
			rows  []*Row
		}
		var order []string
		buckets := make(map[string]*bucket)
		for _, r := range rows {
			v := r.Value(colID)
			key := fmt.Sprintf("%T:%v", v, v)
			b, ok := buckets[key]
			if !ok {
				b = &bucket{value: v}
				buckets[key] = b
				order = append(order, key)
			}
			b.rows = append(b.rows, r)
		}

		out := make([]*Row, 0, len(order))
		for i, key := range order {
			b := buckets[key]
			id := colID + ":" + ToString(b.value)
			if b.value == nil {
				id = colID + ":" + strconv.Itoa(i) + ":null"
			}
			if parentID != "" {
				id = parentID + ">" + id
			}

			values := make(map[string]any, len(inherited)+len(columns))
			for k, v := range inherited {
				values[k] = v
			}
			values[colID] = b.value
			for _, c := range columns {
				if _, grouped := values[c.ID]; grouped || c.Aggregate == nil {
					continue
				}
				values[c.ID] = c.Aggregate(c.ID, b.rows)
			}

			childInherited := make(map[string]any, len(inherited)+1)
			for k, v := range inherited {
				childInherited[k] = v
			}
			childInherited[colID] = b.value

			g := &Row{
				ID:               id,
				Index:            i,
				Depth:            depth,
				ParentID:         parentID,
				GroupingColumnID: colID,
				GroupingValue:    b.value,
				LeafRows:         b.rows,
				values:           values,
			}
			if len(b.rows) > 0 {
				g.Original = b.rows[0].Original
			}
			g.SubRows = groupUp(b.rows, depth+1, id, childInherited)
			out = append(out, g)
		}
		return out
	}

	return newModel(groupUp(in.Rows, 0, "", map[string]any{}))
}

// reDepth copies a subtree with depths and parent shifted under a group.
func reDepth(r *Row, depth int, parentID string) *Row {
	if r.Depth == depth && r.ParentID == parentID {
		return r
	}
	c := r.clone()
	c.Depth = depth
	c.ParentID = parentID
	if len(r.SubRows) > 0 {
		c.SubRows = make([]*Row, len(r.SubRows))
		for i, sub := range r.SubRows {
			c.SubRows[i] = reDepth(sub, depth+1, sub.ParentID)
		}
	}
	return c
}
