package sheet

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentic-research/treedex/internal/traverse"
)

// TimeLayout renders the Last Updated cell.
const TimeLayout = "2006-01-02 15:04:05"

// FixedColumns are the four trailing columns after the level columns.
var FixedColumns = []string{"File Name", "Last Updated", "Size", "Link"}

const levelPrefix = "Level "

func levelTitle(k int) string { return fmt.Sprintf("%s%d", levelPrefix, k) }

// HeaderFor builds the full header row for the given nesting depth.
func HeaderFor(depth int) []string {
	cells := make([]string, 0, depth+len(FixedColumns))
	for k := 1; k <= depth; k++ {
		cells = append(cells, levelTitle(k))
	}
	return append(cells, FixedColumns...)
}

// LevelCount counts the leading level columns of a header row.
func LevelCount(header []string) int {
	n := 0
	for _, c := range header {
		if !strings.HasPrefix(c, levelPrefix) {
			break
		}
		n++
	}
	return n
}

// InitHeader prepares a sink for a fresh run: all content cleared, header
// written for the given depth.
func InitHeader(ctx context.Context, s Sink, depth int) error {
	if err := s.Clear(ctx); err != nil {
		return fmt.Errorf("clear sink: %w", err)
	}
	if err := s.WriteHeader(ctx, HeaderFor(depth)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// EnsureColumns grows the sink's level columns to requiredDepth. Missing
// columns are inserted immediately after the last existing level column,
// leaving the trailing fixed columns undisturbed in position. Columns are
// never removed: calls with a smaller depth are no-ops.
func EnsureColumns(ctx context.Context, s Sink, requiredDepth int) error {
	header, err := s.Header(ctx)
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 {
		return InitHeader(ctx, s, requiredDepth)
	}
	have := LevelCount(header)
	if requiredDepth <= have {
		return nil
	}
	if err := s.InsertColumns(ctx, have, requiredDepth-have); err != nil {
		return fmt.Errorf("insert level columns: %w", err)
	}
	grown := make([]string, 0, len(header)+requiredDepth-have)
	grown = append(grown, header[:have]...)
	for k := have + 1; k <= requiredDepth; k++ {
		grown = append(grown, levelTitle(k))
	}
	grown = append(grown, header[have:]...)
	if err := s.WriteHeader(ctx, grown); err != nil {
		return fmt.Errorf("rewrite header: %w", err)
	}
	return nil
}

// PadLevels right-pads levels with empty cells to depth. It never
// truncates, and padding an already padded slice is a no-op.
func PadLevels(levels []string, depth int) []string {
	if len(levels) >= depth {
		return levels
	}
	padded := make([]string, depth)
	copy(padded, levels)
	return padded
}

// Flatten serializes a row to sink cells: levels padded to maxDepth, then
// the four fixed trailing cells.
func Flatten(r traverse.Row, maxDepth int) []string {
	levels := PadLevels(r.Levels, maxDepth)
	cells := make([]string, 0, len(levels)+len(FixedColumns))
	cells = append(cells, levels...)
	return append(cells, r.FileName, r.LastUpdated.Format(TimeLayout), r.SizeLabel, r.Link)
}
