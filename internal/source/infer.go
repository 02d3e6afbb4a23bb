package source

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when inferring date columns.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// inference narrows a column's type as values are observed. A column
// starts as every type and loses candidates on each non-empty value.
type inference struct {
	number, boolean, date bool
	seen                  bool
}

func newInference() *inference {
	return &inference{number: true, boolean: true, date: true}
}

func (in *inference) observe(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	in.seen = true
	if in.number {
		if _, ok := parseNumber(s); !ok {
			in.number = false
		}
	}
	if in.boolean {
		if _, ok := parseBool(s); !ok {
			in.boolean = false
		}
	}
	if in.date {
		if _, ok := parseDate(s); !ok {
			in.date = false
		}
	}
}

func (in *inference) result() string {
	switch {
	case !in.seen:
		return TypeString
	case in.number:
		return TypeNumber
	case in.boolean:
		return TypeBool
	case in.date:
		return TypeDate
	}
	return TypeString
}

// convert parses s as typ. Empty cells become nil.
func convert(s, typ string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	switch typ {
	case TypeNumber:
		if f, ok := parseNumber(trimmed); ok {
			return f
		}
	case TypeBool:
		if b, ok := parseBool(trimmed); ok {
			return b
		}
	case TypeDate:
		if t, ok := parseDate(trimmed); ok {
			return t
		}
	}
	return s
}

func parseNumber(s string) (float64, bool) {
	// Leading zeros usually mean an identifier (zip codes, account numbers)
	if len(s) > 1 && s[0] == '0' && s[1] != '.' {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	}
	return false, false
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
