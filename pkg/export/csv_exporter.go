package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// GroupColumn heads the extra leading column of grouped CSV exports.
const GroupColumn = "group"

// CSVExporter renders datasets as CSV.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render writes a header line and one line per row. Grouped datasets get a leading group column.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("csv requires at least one column")
	}
	grouped := data.Grouped()
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	header := data.Columns
	if grouped {
		header = append([]string{GroupColumn}, data.Columns...)
	}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, section := range data.Sections {
		for _, row := range section.Rows {
			record := make([]string, 0, len(header))
			if grouped {
				record = append(record, section.Label)
			}
			for i := range data.Columns {
				cell := ""
				if i < len(row) {
					cell = row[i]
				}
				record = append(record, cell)
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
