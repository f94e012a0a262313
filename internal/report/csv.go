// Package report renders committee data into downloadable documents:
// raw CSV exports that reproduce the upstream column layout, and a PDF
// summary combining the headline numbers, the cash-on-hand ledger, and the
// top donor/recipient rankings.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/powens/iowa-disclosure-api/internal/domain"
)

// WriteCSV streams the raw rows of a transaction set as CSV, one column per
// upstream field in first-seen order. Cells missing from a row are left empty.
func WriteCSV(w io.Writer, set domain.TransactionSet) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(set.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(set.Columns))
	for _, row := range set.Raw {
		for i, col := range set.Columns {
			record[i] = cellString(row[col])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// cellString flattens a raw cell for export. JSON numbers decode as float64;
// integral values print without a fractional part.
func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
