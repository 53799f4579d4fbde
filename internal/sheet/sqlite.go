package sheet

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteSink stores the grid as sparse cells in a SQLite table, row 0
// being the header. Empty cells are not materialized; readers fill gaps.
// It can share a *sql.DB with the checkpoint store so one database file
// carries the whole run.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink creates the schema if needed and returns the sink.
func NewSQLiteSink(db *sql.DB) (*SQLiteSink, error) {
	schema := `
	CREATE TABLE IF NOT EXISTS cells (
		row   INTEGER NOT NULL,
		col   INTEGER NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (row, col)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create sheet schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM cells")
	if err != nil {
		return fmt.Errorf("clear cells: %w", err)
	}
	return nil
}

func (s *SQLiteSink) Header(ctx context.Context) ([]string, error) {
	return s.readRow(ctx, 0)
}

func (s *SQLiteSink) WriteHeader(ctx context.Context, cells []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM cells WHERE row = 0"); err != nil {
		return fmt.Errorf("drop header: %w", err)
	}
	if err := insertRow(ctx, tx, 0, cells); err != nil {
		return err
	}
	return tx.Commit()
}

// InsertColumns shifts cells at or past the insertion point n to the
// right. The shift goes through negative column numbers so the primary
// key never collides mid-update.
func (s *SQLiteSink) InsertColumns(ctx context.Context, at, n int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"UPDATE cells SET col = -(col + ?) WHERE col >= ?", n, at); err != nil {
		return fmt.Errorf("shift columns: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE cells SET col = -col WHERE col < 0"); err != nil {
		return fmt.Errorf("unshift columns: %w", err)
	}
	return tx.Commit()
}

// Append writes all rows in one transaction, so a failed flush leaves no
// partial tick output behind.
func (s *SQLiteSink) Append(ctx context.Context, rows [][]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	err = tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(row) + 1, 1) FROM cells").Scan(&next)
	if err != nil {
		return fmt.Errorf("next row: %w", err)
	}
	for i, cells := range rows {
		if err := insertRow(ctx, tx, next+i, cells); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteSink) Extent(ctx context.Context) (int, int, error) {
	var rows, cols int
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(row) + 1, 0), COALESCE(MAX(col) + 1, 0) FROM cells").
		Scan(&rows, &cols)
	if err != nil {
		return 0, 0, fmt.Errorf("extent: %w", err)
	}
	return rows, cols, nil
}

// SortRows is the final sort hook: data rows are reloaded, ordered by
// level columns then file name, and renumbered. Blank level cells sort
// before named ones, so a folder's own files precede its subfolders'.
func (s *SQLiteSink) SortRows(ctx context.Context) error {
	header, err := s.Header(ctx)
	if err != nil {
		return err
	}
	levels := LevelCount(header)

	grid, err := s.readData(ctx)
	if err != nil {
		return err
	}
	sortGrid(grid, levels)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM cells WHERE row >= 1"); err != nil {
		return fmt.Errorf("drop data rows: %w", err)
	}
	for i, cells := range grid {
		if err := insertRow(ctx, tx, i+1, cells); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteSink) readRow(ctx context.Context, row int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT col, value FROM cells WHERE row = ? ORDER BY col", row)
	if err != nil {
		return nil, fmt.Errorf("read row %d: %w", row, err)
	}
	defer func() { _ = rows.Close() }()

	var cells []string
	for rows.Next() {
		var col int
		var value string
		if err := rows.Scan(&col, &value); err != nil {
			return nil, err
		}
		for len(cells) < col {
			cells = append(cells, "")
		}
		cells = append(cells, value)
	}
	return cells, rows.Err()
}

// readData loads every data row as a dense grid.
func (s *SQLiteSink) readData(ctx context.Context) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT row, col, value FROM cells WHERE row >= 1 ORDER BY row, col")
	if err != nil {
		return nil, fmt.Errorf("read data rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var grid [][]string
	for rows.Next() {
		var row, col int
		var value string
		if err := rows.Scan(&row, &col, &value); err != nil {
			return nil, err
		}
		for len(grid) < row {
			grid = append(grid, nil)
		}
		cells := grid[row-1]
		for len(cells) < col {
			cells = append(cells, "")
		}
		grid[row-1] = append(cells, value)
	}
	return grid, rows.Err()
}

func insertRow(ctx context.Context, tx *sql.Tx, row int, cells []string) error {
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO cells (row, col, value) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for col, value := range cells {
		if value == "" {
			continue // sparse: readers fill gaps
		}
		if _, err := stmt.ExecContext(ctx, row, col, value); err != nil {
			return fmt.Errorf("insert cell (%d,%d): %w", row, col, err)
		}
	}
	return nil
}

var (
	_ Sink   = (*SQLiteSink)(nil)
	_ Sorter = (*SQLiteSink)(nil)
)
