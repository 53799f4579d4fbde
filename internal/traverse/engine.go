package traverse

import (
	"context"
	"fmt"
	"time"

	"github.com/agentic-research/treedex/internal/treestore"
)

// DefaultBudget is the wall-clock allowance for one tick. It leaves a
// safety margin under the host's hard execution ceiling and is never
// adjusted per call.
const DefaultBudget = 5*time.Minute + 30*time.Second

// Engine runs bounded slices of a breadth-first traversal.
type Engine struct {
	store  treestore.Store
	budget time.Duration
	clock  func() time.Time
}

// New creates an engine over store. A non-positive budget falls back to
// DefaultBudget.
func New(store treestore.Store, budget time.Duration) *Engine {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Engine{store: store, budget: budget, clock: time.Now}
}

// WithClock substitutes the time source. Tests use this to exercise
// interruption without real waiting.
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	return e
}

// TickResult reports one tick's output.
type TickResult struct {
	// Rows are the file records built this tick, in discovery order.
	Rows []Row
	// TimeExhausted is true when the loop stopped on the budget rather
	// than on an empty queue.
	TimeExhausted bool
}

// RunTick drains the frontier until the queue empties or the budget runs
// out, mutating st in place. The budget is polled between individual files
// and subfolders, not just between folders, so a folder with many children
// is still interruptible; its listing cursors keep the interrupted folder
// at the queue front and resumption continues from the exact position.
//
// The first tree-store error aborts the tick. st may then hold partial
// mutations: the caller is expected to discard it and re-persist the
// pre-tick checkpoint.
func (e *Engine) RunTick(ctx context.Context, st *TraversalState) (*TickResult, error) {
	start := e.clock()
	over := func() bool { return e.clock().Sub(start) >= e.budget }

	res := &TickResult{}
	for len(st.Queue) > 0 {
		if over() {
			res.TimeExhausted = true
			return res, nil
		}

		// Index the front entry rather than holding a pointer: pushes
		// below may reallocate the queue.
		id := st.Queue[0].FolderID
		depth := st.Queue[0].Depth

		folder, err := e.store.Folder(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve folder: %w", err)
		}
		files, err := e.store.Files(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("enumerate files: %w", err)
		}

		if depth > st.MaxDepthFound {
			st.MaxDepthFound = depth
		}

		// Full ancestor chain for files directly inside this folder.
		chain := make([]string, 0, depth)
		chain = append(chain, st.Queue[0].Path...)
		chain = append(chain, folder.Name)

		for st.Queue[0].FileCursor < len(files) {
			if over() {
				res.TimeExhausted = true
				return res, nil
			}
			f := files[st.Queue[0].FileCursor]
			res.Rows = append(res.Rows, Row{
				Levels:      chain,
				FileName:    f.Name,
				LastUpdated: f.Modified,
				SizeLabel:   FormatSize(f.Size),
				Link:        f.Link,
			})
			st.Queue[0].FileCursor++
		}

		subs, err := e.store.Subfolders(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("enumerate subfolders: %w", err)
		}
		for st.Queue[0].SubfolderCursor < len(subs) {
			if over() {
				res.TimeExhausted = true
				return res, nil
			}
			sub := subs[st.Queue[0].SubfolderCursor]
			child := QueueEntry{
				FolderID: sub.ID,
				Path:     chain,
				Depth:    depth + 1,
			}
			if child.Depth > st.MaxDepthFound {
				st.MaxDepthFound = child.Depth
			}
			st.Queue = append(st.Queue, child)
			st.Queue[0].SubfolderCursor++
		}

		// Both listings exhausted: only now does the folder leave the
		// frontier and count as processed.
		st.ProcessedFolders = append(st.ProcessedFolders, id)
		st.LastProcessedTime = e.clock()
		st.Queue = st.Queue[1:]
	}
	return res, nil
}
