package dataset

import (
	"fmt"
	"math"
	"strings"
)

// SanitizeCell maps non-finite numeric cells (NaN, +Inf, -Inf) to nil so the
// value is transport-safe. Finite values pass through unchanged.
func SanitizeCell(v interface{}) interface{} {
	if f, ok := v.(float64); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
	}
	return v
}

// DefaultPreviewRows caps dataset previews for transport.
const DefaultPreviewRows = 20

// Preview returns up to n rows as records with non-finite numerics mapped to
// nil, mirroring the transport discipline of the result normalizer.
func (t *Table) Preview(n int) []map[string]interface{} {
	records := t.Records(n)
	for _, record := range records {
		for key, value := range record {
			record[key] = SanitizeCell(value)
		}
	}
	return records
}

// BasicInfo summarizes the table shape and inferred column types.
type BasicInfo struct {
	Rows        int               `json:"rows"`
	Columns     int               `json:"columns"`
	ColumnNames []string          `json:"column_names"`
	DTypes      map[string]string `json:"dtypes"`
}

// Info returns the table's basic shape information.
func (t *Table) Info() BasicInfo {
	dtypes := make(map[string]string, t.NumCols())
	for _, name := range t.names {
		dtypes[name] = string(t.cols[name].InferType())
	}
	return BasicInfo{
		Rows:        t.NumRows(),
		Columns:     t.NumCols(),
		ColumnNames: t.ColumnNames(),
		DTypes:      dtypes,
	}
}

// SummaryString renders the dataset context block embedded into agent
// prompts: columns, inferred types, null counts, and a few sample rows.
func (t *Table) SummaryString(sampleRows int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- Rows: %d\n", t.NumRows())
	fmt.Fprintf(&sb, "- Columns: %v\n", t.ColumnNames())

	sb.WriteString("- Column Types: {")
	for i, name := range t.names {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %s", name, t.cols[name].InferType())
	}
	sb.WriteString("}\n")

	sb.WriteString("- Missing Values: {")
	for i, name := range t.names {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %d", name, t.cols[name].NullCount())
	}
	sb.WriteString("}\n")

	if sampleRows > 0 && t.NumRows() > 0 {
		sb.WriteString("- Sample Data:\n")
		sb.WriteString(t.headString(sampleRows))
	}
	return sb.String()
}

// headString renders the first n rows as an aligned text block.
func (t *Table) headString(n int) string {
	if n > t.NumRows() {
		n = t.NumRows()
	}
	widths := make([]int, len(t.names))
	cells := make([][]string, n+1)
	cells[0] = t.ColumnNames()
	for j, name := range cells[0] {
		widths[j] = len(name)
	}
	for i := 0; i < n; i++ {
		row := make([]string, len(t.names))
		for j, name := range t.names {
			row[j] = CellString(t.cols[name].Values[i])
			if len(row[j]) > widths[j] {
				widths[j] = len(row[j])
			}
		}
		cells[i+1] = row
	}

	var sb strings.Builder
	for _, row := range cells {
		for j, cell := range row {
			fmt.Fprintf(&sb, "  %-*s", widths[j], cell)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// DescribeString renders summary statistics for every numeric column, used
// as report prompt context.
func (t *Table) DescribeString() string {
	var sb strings.Builder
	for _, name := range t.names {
		col := t.cols[name]
		if col.InferType() != TypeNumeric {
			continue
		}
		fmt.Fprintf(&sb, "%s: mean=%.4g std=%.4g min=%.4g max=%.4g nulls=%d\n",
			name, col.Mean(), col.Std(), col.Min(), col.Max(), col.NullCount())
	}
	if sb.Len() == 0 {
		return "(no numeric columns)\n"
	}
	return sb.String()
}
