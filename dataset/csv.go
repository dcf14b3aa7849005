package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Date layouts tried when parsing cells, most common first.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"2006/01/02",
}

// ParseCell converts a raw text cell into a typed value. An empty or
// whitespace-only cell is missing (nil).
func ParseCell(raw string) interface{} {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	switch strings.ToLower(trimmed) {
	case "true":
		return true
	case "false":
		return false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts
		}
	}
	return trimmed
}

// ReadCSV parses comma- or tab-separated data with a header row into a table.
func ReadCSV(r io.Reader, delimiter rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse delimited data: %v", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("data contains no rows")
	}

	header := records[0]
	columns := make([]*Series, len(header))
	for j, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", j+1)
		}
		values := make([]interface{}, 0, len(records)-1)
		for i := 1; i < len(records); i++ {
			if j < len(records[i]) {
				values = append(values, ParseCell(records[i][j]))
			} else {
				values = append(values, nil)
			}
		}
		columns[j] = &Series{Name: name, Values: values}
	}
	return FromColumns(columns)
}

// LoadFile parses a CSV or TSV file into a table, picking the delimiter from
// the file extension.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %v", err)
	}
	defer f.Close()

	delimiter := ','
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		delimiter = '\t'
	}
	t, err := ReadCSV(f, delimiter)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v", path, err)
	}
	return t, nil
}

// ParsePasted parses pasted delimited text. When hasHeader is false,
// synthetic column names column_1..column_n are generated.
func ParsePasted(data string, delimiter rune, hasHeader bool) (*Table, error) {
	if !hasHeader {
		reader := csv.NewReader(strings.NewReader(data))
		reader.Comma = delimiter
		first, err := reader.Read()
		if err != nil {
			return nil, fmt.Errorf("failed to parse pasted data: %v", err)
		}
		names := make([]string, len(first))
		for i := range first {
			names[i] = fmt.Sprintf("column_%d", i+1)
		}
		data = strings.Join(names, string(delimiter)) + "\n" + data
	}
	return ReadCSV(strings.NewReader(data), delimiter)
}

// WriteCSV writes the table as CSV with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.ColumnNames()); err != nil {
		return err
	}
	for i := 0; i < t.NumRows(); i++ {
		record := make([]string, 0, t.NumCols())
		for _, name := range t.names {
			record = append(record, CellString(t.cols[name].Values[i]))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveFile writes the table to a CSV file.
func (t *Table) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create data file: %v", err)
	}
	defer f.Close()
	return t.WriteCSV(f)
}
