package documents

// MinRows is the number of ruled lines on every printed table.
const MinRows = 15

// Pad appends zero-value rows until rows has at least min entries.
// Rows beyond min are kept.
func Pad[Row any](rows []Row, min int) []Row {
	var blank Row
	for len(rows) < min {
		rows = append(rows, blank)
	}
	return rows
}
