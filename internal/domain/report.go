package domain

// ReportTable is the display form of a Schedule: a header row, one
// formatted body row per schedule row, and a trailing totals row. All
// numeric cells are already formatted (rounded, space-grouped); the
// renderer only draws.
type ReportTable struct {
	Title  string
	Header []string
	Body   [][]string
	Totals []string
}

// RowCount includes header, body and totals.
func (t *ReportTable) RowCount() int {
	return len(t.Body) + 2
}
