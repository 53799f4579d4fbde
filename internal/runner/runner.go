// Package runner wires the traversal engine, checkpoint manager and sheet
// sink into the zero-argument resumable entry point: safe to invoke while
// a checkpoint exists (resumes) or absent (starts fresh).
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/flock"

	"github.com/agentic-research/treedex/internal/checkpoint"
	"github.com/agentic-research/treedex/internal/sheet"
	"github.com/agentic-research/treedex/internal/traverse"
)

// ErrTickInProgress means another process holds the tick lock. The caller
// should simply try again later; ticks are non-reentrant.
var ErrTickInProgress = errors.New("a tick is already running")

// Runner executes one tick per Run call.
type Runner struct {
	Engine      *traverse.Engine
	Checkpoints *checkpoint.Manager
	Sink        sheet.Sink
	// RootID seeds a fresh run.
	RootID string
	// Lock, when set, enforces one tick at a time across processes.
	Lock *flock.Flock
}

// Run performs one tick: load-or-seed state, traverse until the budget or
// the queue runs out, flush rows, then persist-and-reschedule or finalize.
// Any engine or sink failure rolls the checkpoint back to its pre-tick
// bytes before surfacing, so no partial progress is ever persisted.
func (r *Runner) Run(ctx context.Context) (checkpoint.Action, error) {
	if r.Lock != nil {
		held, err := r.Lock.TryLock()
		if err != nil {
			return 0, fmt.Errorf("acquire tick lock: %w", err)
		}
		if !held {
			return 0, ErrTickInProgress
		}
		defer func() { _ = r.Lock.Unlock() }()
	}

	st, raw, found, err := r.Checkpoints.Load(ctx)
	if err != nil {
		return 0, err
	}
	if !found {
		st = traverse.NewState(r.RootID)
		if raw, err = st.Encode(); err != nil {
			return 0, err
		}
		if err := sheet.InitHeader(ctx, r.Sink, st.MaxDepthFound); err != nil {
			return 0, err
		}
	}

	res, err := r.Engine.RunTick(ctx, st)
	if err != nil {
		return 0, r.fail(ctx, raw, err)
	}

	if len(res.Rows) > 0 {
		if err := r.flush(ctx, st.MaxDepthFound, res.Rows); err != nil {
			return 0, r.fail(ctx, raw, err)
		}
	}

	return r.Checkpoints.FinalizeTick(ctx, st)
}

// flush pads every row of the batch to the post-tick watermark and appends
// it behind a header grown to match.
func (r *Runner) flush(ctx context.Context, maxDepth int, rows []traverse.Row) error {
	if err := sheet.EnsureColumns(ctx, r.Sink, maxDepth); err != nil {
		return err
	}
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = sheet.Flatten(row, maxDepth)
	}
	if err := r.Sink.Append(ctx, cells); err != nil {
		return fmt.Errorf("append rows: %w", err)
	}
	return nil
}

// fail restores the pre-tick checkpoint and surfaces the original error.
func (r *Runner) fail(ctx context.Context, raw []byte, tickErr error) error {
	if err := r.Checkpoints.Restore(ctx, raw); err != nil {
		return fmt.Errorf("restore checkpoint after %v: %w", tickErr, err)
	}
	return tickErr
}
