// Package view derives table projections (filter, search, sort, group) from collection snapshots.
package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is a record addressable by column name. A false second return means the
// column has no value for this row.
type Row interface {
	Field(name string) (any, bool)
	Fields() []string
}

const dateLayout = "2006-01-02"

// Stringify renders a column value the way filters, search and grouping see it.
func Stringify(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case bool:
		return strconv.FormatBool(value)
	case time.Time:
		if value.IsZero() {
			return ""
		}
		return value.UTC().Format(dateLayout)
	case []string:
		return strings.Join(value, ", ")
	case fmt.Stringer:
		return value.String()
	default:
		return fmt.Sprint(value)
	}
}

func number(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case int:
		return float64(value), true
	}
	return 0, false
}

// Compare orders numbers numerically, times by instant and everything else
// lexicographically on the stringified value.
func Compare(a, b any) int {
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	if x, ok := a.(time.Time); ok {
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	}
	return strings.Compare(Stringify(a), Stringify(b))
}

func searchText(r Row) string {
	var b strings.Builder
	for _, field := range r.Fields() {
		if v, ok := r.Field(field); ok {
			b.WriteString(Stringify(v))
		}
	}
	return strings.ToLower(b.String())
}
