package sheets

import "context"

// Grid is a rectangular 2-D slice of cell strings. Row 0 is the header row
// naming each column; every data row carries the record id in column 0.
type Grid [][]string

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// Backend opens remote spreadsheets. It is the only component in the
// repository that performs network I/O.
type Backend interface {
	Open(ctx context.Context, url string) (Spreadsheet, error)
}

// Spreadsheet resolves worksheets by title.
type Spreadsheet interface {
	Worksheet(ctx context.Context, title string) (Worksheet, error)
	CreateWorksheet(ctx context.Context, title string, rows, cols int) (Worksheet, error)
}

// Worksheet exposes the three primitives the backing service actually has:
// bulk read, bulk overwrite, and row append.
type Worksheet interface {
	Title() string
	ReadAll(ctx context.Context) (Grid, error)
	OverwriteAll(ctx context.Context, grid Grid) error
	Append(ctx context.Context, row []string) error
}
