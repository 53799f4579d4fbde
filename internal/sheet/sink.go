// Package sheet is the tabular output boundary: the Sink abstraction over
// a spreadsheet-like grid, the shape adapter that grows level columns as
// deeper nesting is discovered, and the grid implementations.
package sheet

import "context"

// Sink is a spreadsheet-like grid. Row 0 is the header; data rows follow.
// Column operations are structural: inserting columns shifts the cells of
// every row, header included.
type Sink interface {
	// Clear removes all content, header included.
	Clear(ctx context.Context) error
	// Header returns the header row, or an empty slice when the sink has
	// no content yet.
	Header(ctx context.Context) ([]string, error)
	// WriteHeader replaces the header row.
	WriteHeader(ctx context.Context, cells []string) error
	// InsertColumns inserts n empty columns before 0-based index at,
	// shifting every row.
	InsertColumns(ctx context.Context, at, n int) error
	// Append adds data rows after the current last row.
	Append(ctx context.Context, rows [][]string) error
	// Extent reports the current row and column counts, header included.
	Extent(ctx context.Context) (rows, cols int, err error)
}

// Sorter is the final post-processing hook: once traversal completes, the
// sink's data rows are reordered hierarchically (level columns first, file
// name last). Both grid implementations provide it.
type Sorter interface {
	SortRows(ctx context.Context) error
}
