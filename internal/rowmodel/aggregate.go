package rowmodel

import "sort"

// AggregationFunc summarizes a column over the leaf rows of a group.
type AggregationFunc func(columnID string, leafRows []*Row) any

var builtinAggregations = map[string]AggregationFunc{
	"count":       Count,
	"sum":         Sum,
	"min":         Min,
	"max":         Max,
	"mean":        Mean,
	"extent":      Extent,
	"uniqueCount": UniqueCount,
}

// LookupAggregation resolves a built-in aggregation by name.
func LookupAggregation(name string) (AggregationFunc, bool) {
	fn, ok := builtinAggregations[name]
	return fn, ok
}

// AggregationNames lists the built-in aggregation names, sorted.
func AggregationNames() []string {
	names := make([]string, 0, len(builtinAggregations))
	for name := range builtinAggregations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func numbers(columnID string, rows []*Row) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if f, ok := ToFloat(r.Value(columnID)); ok {
			out = append(out, f)
		}
	}
	return out
}

func Count(_ string, rows []*Row) any {
	return len(rows)
}

func Sum(columnID string, rows []*Row) any {
	var total float64
	for _, f := range numbers(columnID, rows) {
		total += f
	}
	return total
}

func Min(columnID string, rows []*Row) any {
	nums := numbers(columnID, rows)
	if len(nums) == 0 {
		return nil
	}
	m := nums[0]
	for _, f := range nums[1:] {
		if f < m {
			m = f
		}
	}
	return m
}

func Max(columnID string, rows []*Row) any {
	nums := numbers(columnID, rows)
	if len(nums) == 0 {
		return nil
	}
	m := nums[0]
	for _, f := range nums[1:] {
		if f > m {
			m = f
		}
	}
	return m
}

func Mean(columnID string, rows []*Row) any {
	nums := numbers(columnID, rows)
	if len(nums) == 0 {
		return nil
	}
	var total float64
	for _, f := range nums {
		total += f
	}
	return total / float64(len(nums))
}

// Extent returns [min, max].
func Extent(columnID string, rows []*Row) any {
	lo, hi := Min(columnID, rows), Max(columnID, rows)
	if lo == nil {
		return nil
	}
	return []any{lo, hi}
}

func UniqueCount(columnID string, rows []*Row) any {
	seen := make(map[any]struct{})
	for _, r := range rows {
		seen[valueKey(r.Value(columnID))] = struct{}{}
	}
	return len(seen)
}
