package rowmodel

import (
	"slices"
	"sort"
	"strings"
	"unicode"
)

// SortFunc orders two rows by one column, ascending.
type SortFunc func(a, b *Row, columnID string) int

// SortSpec is one entry of a multi-column sort.
type SortSpec struct {
	ID   string
	Desc bool
}

var builtinSorts = map[string]SortFunc{
	"basic":        Basic,
	"text":         Text,
	"alphanumeric": Alphanumeric,
	"datetime":     Datetime,
}

// LookupSort resolves a built-in sorting function by name.
func LookupSort(name string) (SortFunc, bool) {
	fn, ok := builtinSorts[name]
	return fn, ok
}

// SortNames lists the built-in sorting names, sorted.
func SortNames() []string {
	names := make([]string, 0, len(builtinSorts))
	for name := range builtinSorts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Basic compares with CompareValues.
func Basic(a, b *Row, columnID string) int {
	return CompareValues(a.Value(columnID), b.Value(columnID))
}

// Text compares case-sensitively.
func Text(a, b *Row, columnID string) int {
	return strings.Compare(ToString(a.Value(columnID)), ToString(b.Value(columnID)))
}

func Datetime(a, b *Row, columnID string) int {
	ta, okA := ToTime(a.Value(columnID))
	tb, okB := ToTime(b.Value(columnID))
	if okA && okB {
		return ta.Compare(tb)
	}
	return Basic(a, b, columnID)
}

// Alphanumeric compares digit runs numerically ("row2" < "row10").
func Alphanumeric(a, b *Row, columnID string) int {
	return naturalCompare(strings.ToLower(ToString(a.Value(columnID))), strings.ToLower(ToString(b.Value(columnID))))
}

func naturalCompare(a, b string) int {
	ar, br := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ar) && j < len(br) {
		if unicode.IsDigit(ar[i]) && unicode.IsDigit(br[j]) {
			si := i
			for i < len(ar) && unicode.IsDigit(ar[i]) {
				i++
			}
			sj := j
			for j < len(br) && unicode.IsDigit(br[j]) {
				j++
			}
			na := strings.TrimLeft(string(ar[si:i]), "0")
			nb := strings.TrimLeft(string(br[sj:j]), "0")
			if len(na) != len(nb) {
				if len(na) < len(nb) {
					return -1
				}
				return 1
			}
			if c := strings.Compare(na, nb); c != 0 {
				return c
			}
			continue
		}
		if ar[i] != br[j] {
			if ar[i] < br[j] {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case len(ar)-i < len(br)-j:
		return -1
	case len(ar)-i > len(br)-j:
		return 1
	}
	return 0
}

// Sort orders rows at every level by the sort specs in priority order.
// Empty values always sort last; ties keep original order. Specs naming
// unknown or unsortable columns are skipped.
func Sort(in *Model, columns []Column, sorting []SortSpec) *Model {
	byID := make(map[string]Column, len(columns))
	for _, c := range columns {
		byID[c.ID] = c
	}

	type spec struct {
		id   string
		desc bool
		fn   SortFunc
	}
	var specs []spec
	for _, s := range sorting {
		col, ok := byID[s.ID]
		if !ok || !col.CanSort {
			continue
		}
		fn := col.Sort
		if fn == nil {
			fn = Basic
		}
		specs = append(specs, spec{id: s.ID, desc: s.Desc, fn: fn})
	}
	if len(specs) == 0 {
		return in
	}

	cmp := func(a, b *Row) int {
		for _, s := range specs {
			ea, eb := IsEmpty(a.Value(s.id)), IsEmpty(b.Value(s.id))
			switch {
			case ea && eb:
				continue
			case ea:
				return 1
			case eb:
				return -1
			}
			c := s.fn(a, b, s.id)
			if s.desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return a.Index - b.Index
	}

	var sortRows func(rows []*Row) []*Row
	sortRows = func(rows []*Row) []*Row {
		out := slices.Clone(rows)
		slices.SortStableFunc(out, cmp)
		for i, r := range out {
			if len(r.SubRows) > 0 {
				c := r.clone()
				c.SubRows = sortRows(r.SubRows)
				out[i] = c
			}
		}
		return out
	}

	return newModel(sortRows(in.Rows))
}
