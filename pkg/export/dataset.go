// Package export renders table projections as downloadable files.
package export

// Section is a run of rows under an optional group label.
type Section struct {
	Label string
	Rows  [][]string
}

// Dataset is tabular export content. Rows hold cells positionally by Columns.
// A dataset with a single unlabelled section is rendered ungrouped.
type Dataset struct {
	Title    string
	Columns  []string
	Sections []Section
}

// Grouped reports whether any section carries a label.
func (d Dataset) Grouped() bool {
	for _, s := range d.Sections {
		if s.Label != "" {
			return true
		}
	}
	return false
}

// RowCount returns the number of data rows across sections.
func (d Dataset) RowCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Rows)
	}
	return n
}
