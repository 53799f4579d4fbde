package sheet

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSink(t *testing.T) *SQLiteSink {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "sheet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	sink, err := NewSQLiteSink(db)
	require.NoError(t, err)
	return sink
}

func TestSQLiteSink_HeaderRoundTrip(t *testing.T) {
	ctx := context.Background()
	sink := openTestSink(t)

	header, err := sink.Header(ctx)
	require.NoError(t, err)
	assert.Empty(t, header)

	require.NoError(t, sink.WriteHeader(ctx, HeaderFor(2)))
	header, err = sink.Header(ctx)
	require.NoError(t, err)
	assert.Equal(t, HeaderFor(2), header)

	// Rewrite replaces, not appends.
	require.NoError(t, sink.WriteHeader(ctx, HeaderFor(3)))
	header, err = sink.Header(ctx)
	require.NoError(t, err)
	assert.Equal(t, HeaderFor(3), header)
}

func TestSQLiteSink_AppendAndExtent(t *testing.T) {
	ctx := context.Background()
	sink := openTestSink(t)
	require.NoError(t, sink.WriteHeader(ctx, HeaderFor(1)))

	require.NoError(t, sink.Append(ctx, [][]string{
		{"Drive", "a.txt", "2026-01-01 00:00:00", "1 B", "a.txt"},
		{"Drive", "b.txt", "2026-01-01 00:00:00", "2 B", "b.txt"},
	}))
	require.NoError(t, sink.Append(ctx, [][]string{
		{"Drive", "c.txt", "2026-01-01 00:00:00", "3 B", "c.txt"},
	}))

	rows, cols, err := sink.Extent(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, rows) // header + 3 data rows
	assert.Equal(t, 5, cols)
}

func TestSQLiteSink_InsertColumns(t *testing.T) {
	ctx := context.Background()
	sink := openTestSink(t)
	require.NoError(t, sink.WriteHeader(ctx, HeaderFor(1)))
	require.NoError(t, sink.Append(ctx, [][]string{
		{"Drive", "a.txt", "2026-01-01 00:00:00", "1 B", "a.txt"},
	}))

	// Same path EnsureColumns takes: shift, then rewrite the header.
	require.NoError(t, EnsureColumns(ctx, sink, 2))

	header, err := sink.Header(ctx)
	require.NoError(t, err)
	assert.Equal(t, HeaderFor(2), header)

	grid, err := sink.readData(ctx)
	require.NoError(t, err)
	require.Len(t, grid, 1)
	assert.Equal(t, []string{"Drive", "", "a.txt", "2026-01-01 00:00:00", "1 B", "a.txt"}, grid[0])
}

func TestSQLiteSink_Clear(t *testing.T) {
	ctx := context.Background()
	sink := openTestSink(t)
	require.NoError(t, sink.WriteHeader(ctx, HeaderFor(1)))
	require.NoError(t, sink.Append(ctx, [][]string{{"Drive", "a", "t", "1 B", "l"}}))

	require.NoError(t, sink.Clear(ctx))
	rows, cols, err := sink.Extent(ctx)
	require.NoError(t, err)
	assert.Zero(t, rows)
	assert.Zero(t, cols)
}

func TestSQLiteSink_SortRows(t *testing.T) {
	ctx := context.Background()
	sink := openTestSink(t)
	require.NoError(t, sink.WriteHeader(ctx, HeaderFor(2)))

	// BFS emits parent-level files before deep ones, but unordered across
	// siblings once interruptions interleave ticks.
	require.NoError(t, sink.Append(ctx, [][]string{
		{"Drive", "zeta", "z.txt", "t", "1 B", "z"},
		{"Drive", "", "root.txt", "t", "1 B", "r"},
		{"Drive", "alpha", "a.txt", "t", "1 B", "a"},
		{"Drive", "alpha", "0.txt", "t", "1 B", "0"},
	}))

	require.NoError(t, sink.SortRows(ctx))
	grid, err := sink.readData(ctx)
	require.NoError(t, err)
	require.Len(t, grid, 4)
	// Blank Level 2 first (the folder's own file), then subfolders in
	// name order, files ordered within each.
	assert.Equal(t, "root.txt", grid[0][2])
	assert.Equal(t, "0.txt", grid[1][2])
	assert.Equal(t, "a.txt", grid[2][2])
	assert.Equal(t, "z.txt", grid[3][2])
}

func TestMemorySink_SortRows(t *testing.T) {
	ctx := context.Background()
	sink := NewMemorySink()
	require.NoError(t, sink.WriteHeader(ctx, HeaderFor(2)))
	require.NoError(t, sink.Append(ctx, [][]string{
		{"Drive", "b", "x.txt", "t", "1 B", "x"},
		{"Drive", "", "root.txt", "t", "1 B", "r"},
		{"Drive", "a", "y.txt", "t", "1 B", "y"},
	}))

	require.NoError(t, sink.SortRows(ctx))
	rows := sink.Rows()
	assert.Equal(t, "root.txt", rows[0][2])
	assert.Equal(t, "y.txt", rows[1][2])
	assert.Equal(t, "x.txt", rows[2][2])
}
