package rowmodel

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// FilterFunc decides whether a row passes a filter value for one column.
type FilterFunc func(row *Row, columnID string, filterValue any) bool

// FuzzyFilter is the name of the default global and text filter.
const FuzzyFilter = "fuzzy"

var builtinFilters = map[string]FilterFunc{
	"fuzzy":                Fuzzy,
	"contains":             Contains,
	"includesString":       Contains,
	"startsWith":           StartsWith,
	"endsWith":             EndsWith,
	"equals":               Equals,
	"weakEquals":           WeakEquals,
	"notEquals":            NotEquals,
	"greaterThan":          GreaterThan,
	"greaterThanOrEqualTo": GreaterThanOrEqualTo,
	"lessThan":             LessThan,
	"lessThanOrEqualTo":    LessThanOrEqualTo,
	"between":              Between,
	"betweenInclusive":     BetweenInclusive,
	"empty":                Empty,
	"notEmpty":             NotEmpty,
	"arrIncludes":          ArrIncludes,
	"arrIncludesAll":       ArrIncludesAll,
	"arrIncludesSome":      ArrIncludesSome,
}

// LookupFilter resolves a filter name, preferring caller-supplied functions
// over the built-ins.
func LookupFilter(name string, custom map[string]FilterFunc) (FilterFunc, bool) {
	if fn, ok := custom[name]; ok && fn != nil {
		return fn, true
	}
	fn, ok := builtinFilters[name]
	return fn, ok
}

// FilterNames lists the built-in filter names, sorted.
func FilterNames() []string {
	names := make([]string, 0, len(builtinFilters))
	for name := range builtinFilters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalized(v any) string {
	return strings.ToLower(strings.TrimSpace(ToString(v)))
}

// Fuzzy matches when the cell contains the query, or when every query term
// is within a small edit distance of some word (or word prefix) of the cell.
func Fuzzy(row *Row, columnID string, filterValue any) bool {
	query := normalized(filterValue)
	if query == "" {
		return true
	}
	cell := normalized(row.Value(columnID))
	if strings.Contains(cell, query) {
		return true
	}
	words := strings.Fields(cell)
	for _, term := range strings.Fields(query) {
		if !fuzzyTerm(term, words) {
			return false
		}
	}
	return true
}

func fuzzyTerm(term string, words []string) bool {
	termRunes := []rune(term)
	budget := len(termRunes) / 4
	if budget > 2 {
		budget = 2
	}
	for _, w := range words {
		if strings.Contains(w, term) {
			return true
		}
		if budget == 0 {
			continue
		}
		if levenshtein.ComputeDistance(term, w) <= budget {
			return true
		}
		wr := []rune(w)
		if len(wr) > len(termRunes) && levenshtein.ComputeDistance(term, string(wr[:len(termRunes)])) <= budget {
			return true
		}
	}
	return false
}

func Contains(row *Row, columnID string, filterValue any) bool {
	return strings.Contains(normalized(row.Value(columnID)), normalized(filterValue))
}

func StartsWith(row *Row, columnID string, filterValue any) bool {
	return strings.HasPrefix(normalized(row.Value(columnID)), normalized(filterValue))
}

func EndsWith(row *Row, columnID string, filterValue any) bool {
	return strings.HasSuffix(normalized(row.Value(columnID)), normalized(filterValue))
}

// Equals compares trimmed, case-folded text.
func Equals(row *Row, columnID string, filterValue any) bool {
	return normalized(row.Value(columnID)) == normalized(filterValue)
}

// WeakEquals compares numerically when both sides are numbers.
func WeakEquals(row *Row, columnID string, filterValue any) bool {
	if a, ok := ToFloat(row.Value(columnID)); ok {
		if b, ok := ToFloat(filterValue); ok {
			return a == b
		}
	}
	return Equals(row, columnID, filterValue)
}

func NotEquals(row *Row, columnID string, filterValue any) bool {
	return !Equals(row, columnID, filterValue)
}

func GreaterThan(row *Row, columnID string, filterValue any) bool {
	return CompareValues(row.Value(columnID), filterValue) > 0
}

func GreaterThanOrEqualTo(row *Row, columnID string, filterValue any) bool {
	return CompareValues(row.Value(columnID), filterValue) >= 0
}

func LessThan(row *Row, columnID string, filterValue any) bool {
	return CompareValues(row.Value(columnID), filterValue) < 0
}

func LessThanOrEqualTo(row *Row, columnID string, filterValue any) bool {
	return CompareValues(row.Value(columnID), filterValue) <= 0
}

// rangeBounds reads a [min, max] filter value; a blank bound is open.
func rangeBounds(filterValue any) (lo, hi any) {
	bounds := toSlice(filterValue)
	if len(bounds) > 0 && !IsEmpty(bounds[0]) {
		lo = bounds[0]
	}
	if len(bounds) > 1 && !IsEmpty(bounds[1]) {
		hi = bounds[1]
	}
	return lo, hi
}

// Between is exclusive on both bounds.
func Between(row *Row, columnID string, filterValue any) bool {
	lo, hi := rangeBounds(filterValue)
	v := row.Value(columnID)
	return (lo == nil || CompareValues(v, lo) > 0) && (hi == nil || CompareValues(v, hi) < 0)
}

func BetweenInclusive(row *Row, columnID string, filterValue any) bool {
	lo, hi := rangeBounds(filterValue)
	v := row.Value(columnID)
	return (lo == nil || CompareValues(v, lo) >= 0) && (hi == nil || CompareValues(v, hi) <= 0)
}

// Empty ignores the filter value; any non-blank value activates it.
func Empty(row *Row, columnID string, _ any) bool {
	return IsEmpty(row.Value(columnID))
}

func NotEmpty(row *Row, columnID string, _ any) bool {
	return !IsEmpty(row.Value(columnID))
}

func includes(values []any, want any) bool {
	for _, v := range values {
		if normalized(v) == normalized(want) {
			return true
		}
	}
	return false
}

// ArrIncludes passes when the row's list contains the filter value.
func ArrIncludes(row *Row, columnID string, filterValue any) bool {
	return includes(toSlice(row.Value(columnID)), filterValue)
}

func ArrIncludesAll(row *Row, columnID string, filterValue any) bool {
	values := toSlice(row.Value(columnID))
	for _, want := range toSlice(filterValue) {
		if !includes(values, want) {
			return false
		}
	}
	return true
}

func ArrIncludesSome(row *Row, columnID string, filterValue any) bool {
	values := toSlice(row.Value(columnID))
	for _, want := range toSlice(filterValue) {
		if includes(values, want) {
			return true
		}
	}
	return false
}
