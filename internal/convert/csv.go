// Package convert serializes row-sets to CSV for the table export actions.
package convert

import (
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Row maps a column name to a scalar cell value.
type Row = map[string]any

// ErrEmptyRowSet is returned when there is nothing to export. An export with
// no rows has no header to derive, so it fails instead of producing a blank
// file.
var ErrEmptyRowSet = errors.New("convert: empty row set")

// ToCSV renders a row-set as CSV text. The header is taken from the first
// row's keys in ascending order; later rows missing a key render an empty
// cell and keys absent from the first row are ignored.
func ToCSV(rows []Row) (string, error) {
	if len(rows) == 0 {
		return "", ErrEmptyRowSet
	}
	columns := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		columns = append(columns, k)
	}
	sort.Strings(columns)
	return ToCSVColumns(columns, rows)
}

// ToCSVColumns renders a row-set with an explicit column order, used by the
// typed exports to keep the file layout matching the on-screen table.
func ToCSVColumns(columns []string, rows []Row) (string, error) {
	if len(rows) == 0 {
		return "", ErrEmptyRowSet
	}
	var buf strings.Builder
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return "", err
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = formatCell(row[col])
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
