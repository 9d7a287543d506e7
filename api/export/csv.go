// Package export serialises displayed rows to CSV and XLSX downloads.
package export

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"TmhnaDash/api/model"
)

// Column maps a header to the value it exports for a row.
type Column[T any] struct {
	Header string
	Value  func(T) any
}

// CSV renders rows as comma-separated text. Lines are joined with "\n" and
// there is no trailing newline, except that an empty export is the header
// line followed by "\n".
func CSV[T any](rows []T, cols []Column[T]) string {
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Header
	}
	if len(rows) == 0 {
		return strings.Join(headers, ",") + "\n"
	}
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, joinEscaped(headers))
	for _, row := range rows {
		values := make([]string, len(cols))
		for i, c := range cols {
			values[i] = FormatValue(c.Value(row))
		}
		lines = append(lines, joinEscaped(values))
	}
	return strings.Join(lines, "\n")
}

func joinEscaped(fields []string) string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = EscapeField(f)
	}
	return strings.Join(out, ",")
}

// EscapeField quotes a field containing a comma, quote or line break and
// doubles its internal quotes.
func EscapeField(s string) string {
	if strings.ContainsAny(s, ",\"\n\r") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// FormatValue turns a column value into its CSV text. nil and empty values
// are blank and lists are joined with "; ".
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case model.Amount:
		return t.String()
	case model.Confidence:
		return t.String()
	case decimal.Decimal:
		return t.String()
	case []string:
		return strings.Join(t, "; ")
	case []any:
		parts := make([]string, len(t))
		for i, p := range t {
			parts[i] = FormatValue(p)
		}
		return strings.Join(parts, "; ")
	case bool:
		if !t {
			return ""
		}
		return "true"
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// MapColumns builds columns over generic row maps from headers and a
// header → field mapping. Headers without a field export blank.
func MapColumns(headers []string, fields map[string]string) []Column[map[string]any] {
	cols := make([]Column[map[string]any], len(headers))
	for i, h := range headers {
		field := fields[h]
		cols[i] = Column[map[string]any]{
			Header: h,
			Value: func(row map[string]any) any {
				if field == "" {
					return nil
				}
				return row[field]
			},
		}
	}
	return cols
}
