package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agentic-research/treedex/internal/schedule"
	"github.com/agentic-research/treedex/internal/traverse"
)

const (
	// StateKey holds the serialized TraversalState.
	StateKey = "traversal/state"
	// TimeKey holds the last-processed timestamp, RFC3339.
	TimeKey = "traversal/lastProcessed"
)

// DefaultResumeDelay is the pause before the next tick. The engine already
// self-limits to its budget, so this is a yield, not a backoff.
const DefaultResumeDelay = time.Second

// ErrCorrupt wraps checkpoint blobs that exist but cannot be decoded.
// There is no automatic recovery; the reset command clears the keys.
var ErrCorrupt = errors.New("corrupt checkpoint")

// Action is the outcome of finalizing a tick.
type Action int

const (
	// ActionRescheduled means the queue is non-empty: state persisted and
	// a continuation scheduled.
	ActionRescheduled Action = iota
	// ActionCompleted means the queue drained: checkpoint deleted, final
	// sort applied. The sole terminal state.
	ActionCompleted
)

func (a Action) String() string {
	switch a {
	case ActionRescheduled:
		return "rescheduled"
	case ActionCompleted:
		return "completed"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Manager owns the checkpoint keys and the persist-or-finalize decision.
type Manager struct {
	kv    KV
	sched schedule.Scheduler
	// finish is the final sort hook, invoked exactly once on completion.
	finish func(ctx context.Context) error
	delay  time.Duration
}

// NewManager wires the durable store, the continuation scheduler and the
// completion hook. finish may be nil when no post-processing is wanted.
func NewManager(kv KV, sched schedule.Scheduler, finish func(ctx context.Context) error) *Manager {
	return &Manager{kv: kv, sched: sched, finish: finish, delay: DefaultResumeDelay}
}

// WithDelay overrides the resume delay (tests shrink it).
func (m *Manager) WithDelay(d time.Duration) *Manager {
	m.delay = d
	return m
}

// Load reads the persisted state. found is false when no run is in
// progress. raw is the exact stored blob, kept so a failing tick can be
// rolled back byte-for-byte via Restore.
func (m *Manager) Load(ctx context.Context) (st *traverse.TraversalState, raw []byte, found bool, err error) {
	blob, ok, err := m.kv.Get(ctx, StateKey)
	if err != nil {
		return nil, nil, false, err
	}
	if !ok {
		return nil, nil, false, nil
	}
	st, err = traverse.DecodeState([]byte(blob))
	if err != nil {
		return nil, nil, false, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return st, []byte(blob), true, nil
}

// Save persists the state and its last-processed timestamp.
func (m *Manager) Save(ctx context.Context, st *traverse.TraversalState) error {
	blob, err := st.Encode()
	if err != nil {
		return fmt.Errorf("encode traversal state: %w", err)
	}
	if err := m.kv.Set(ctx, StateKey, string(blob)); err != nil {
		return err
	}
	return m.kv.Set(ctx, TimeKey, st.LastProcessedTime.Format(time.RFC3339))
}

// Restore writes a previously loaded blob back unchanged. This is the
// failure path: a tick that errored discards its partial mutations and the
// run resumes from the last good state on a later trigger.
func (m *Manager) Restore(ctx context.Context, raw []byte) error {
	return m.kv.Set(ctx, StateKey, string(raw))
}

// Clear deletes every checkpoint key. Both keys absent signals "no run in
// progress".
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.kv.Delete(ctx, StateKey); err != nil {
		return err
	}
	return m.kv.Delete(ctx, TimeKey)
}

// Dump returns the raw checkpoint blob for diagnostics. found is false
// when no run is in progress.
func (m *Manager) Dump(ctx context.Context) (raw string, found bool, err error) {
	return m.kv.Get(ctx, StateKey)
}

// FinalizeTick persists-and-reschedules or finalizes-and-cleans-up.
// Any pre-existing schedule is replaced, never stacked, so at most one
// continuation is pending at a time.
func (m *Manager) FinalizeTick(ctx context.Context, st *traverse.TraversalState) (Action, error) {
	if !st.Done() {
		if err := m.Save(ctx, st); err != nil {
			return ActionRescheduled, err
		}
		m.sched.Replace(m.delay)
		return ActionRescheduled, nil
	}

	if err := m.Clear(ctx); err != nil {
		return ActionCompleted, err
	}
	if m.finish != nil {
		if err := m.finish(ctx); err != nil {
			return ActionCompleted, fmt.Errorf("final sort: %w", err)
		}
	}
	m.sched.Cancel()
	return ActionCompleted, nil
}
