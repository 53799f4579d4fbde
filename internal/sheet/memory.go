package sheet

import (
	"context"
	"sort"
	"sync"
)

// MemorySink is an in-memory grid with the same semantics as SQLiteSink.
// Tests and dry runs use it the way the traversal uses the real sink.
type MemorySink struct {
	mu     sync.Mutex
	header []string
	rows   [][]string
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (m *MemorySink) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.header = nil
	m.rows = nil
	return nil
}

func (m *MemorySink) Header(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.header))
	copy(out, m.header)
	return out, nil
}

func (m *MemorySink) WriteHeader(ctx context.Context, cells []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.header = append([]string(nil), cells...)
	return nil
}

func (m *MemorySink) InsertColumns(ctx context.Context, at, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.header = insertCells(m.header, at, n)
	for i := range m.rows {
		m.rows[i] = insertCells(m.rows[i], at, n)
	}
	return nil
}

func (m *MemorySink) Append(ctx context.Context, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		m.rows = append(m.rows, append([]string(nil), r...))
	}
	return nil
}

func (m *MemorySink) Extent(ctx context.Context) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := len(m.rows)
	if m.header != nil {
		rows++
	}
	cols := len(m.header)
	for _, r := range m.rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	return rows, cols, nil
}

// SortRows reorders data rows hierarchically: level columns first, file
// name as the tiebreaker. Blank level cells sort before named ones, so a
// folder's own files precede its subfolders' files.
func (m *MemorySink) SortRows(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	levels := LevelCount(m.header)
	sortGrid(m.rows, levels)
	return nil
}

// Rows returns a copy of the data rows.
func (m *MemorySink) Rows() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.rows))
	for i, r := range m.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

func insertCells(row []string, at, n int) []string {
	if row == nil {
		return nil
	}
	if at > len(row) {
		at = len(row)
	}
	out := make([]string, 0, len(row)+n)
	out = append(out, row[:at]...)
	out = append(out, make([]string, n)...)
	return append(out, row[at:]...)
}

// sortGrid orders rows by their first levels+1 cells (levels, then file
// name), comparing cell by cell.
func sortGrid(rows [][]string, levels int) {
	cell := func(r []string, i int) string {
		if i < len(r) {
			return r[i]
		}
		return ""
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for c := 0; c <= levels; c++ {
			a, b := cell(rows[i], c), cell(rows[j], c)
			if a != b {
				return a < b
			}
		}
		return false
	})
}

var (
	_ Sink   = (*MemorySink)(nil)
	_ Sorter = (*MemorySink)(nil)
)
