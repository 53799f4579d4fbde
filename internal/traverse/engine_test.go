package traverse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/treedex/internal/treestore"
)

// fakeClock advances by a fixed step on every reading, so budget exhaustion
// happens at deterministic points without real waiting.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

// stubStore is a canned tree with optional fault injection.
type stubStore struct {
	folders  map[string]treestore.Folder
	files    map[string][]treestore.File
	subs     map[string][]treestore.Folder
	filesErr error
}

func (s *stubStore) Folder(ctx context.Context, id string) (treestore.Folder, error) {
	f, ok := s.folders[id]
	if !ok {
		return treestore.Folder{}, errors.New("unknown folder " + id)
	}
	return f, nil
}

func (s *stubStore) Files(ctx context.Context, id string) ([]treestore.File, error) {
	if s.filesErr != nil {
		return nil, s.filesErr
	}
	return s.files[id], nil
}

func (s *stubStore) Subfolders(ctx context.Context, id string) ([]treestore.Folder, error) {
	return s.subs[id], nil
}

func TestRunTick_FullTraversal(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "report.pdf", make([]byte, 2048), 0o644))
	require.NoError(t, util.WriteFile(fs, "notes.txt", []byte("n"), 0o644))
	require.NoError(t, util.WriteFile(fs, "projects/plan.md", []byte("plan"), 0o644))

	store := treestore.NewBillyStore(fs, "Drive", "")
	engine := New(store, DefaultBudget)
	st := NewState(treestore.RootID)

	res, err := engine.RunTick(context.Background(), st)
	require.NoError(t, err)
	assert.False(t, res.TimeExhausted)
	assert.True(t, st.Done())
	assert.Equal(t, 2, st.MaxDepthFound)
	assert.Equal(t, []string{".", "projects"}, st.ProcessedFolders)
	assert.False(t, st.LastProcessedTime.IsZero())

	require.Len(t, res.Rows, 3)
	// BFS order: root files first, then the subfolder's.
	assert.Equal(t, "notes.txt", res.Rows[0].FileName)
	assert.Equal(t, []string{"Drive"}, res.Rows[0].Levels)
	assert.Equal(t, "report.pdf", res.Rows[1].FileName)
	assert.Equal(t, "2.00 KB", res.Rows[1].SizeLabel)
	assert.Equal(t, "plan.md", res.Rows[2].FileName)
	assert.Equal(t, []string{"Drive", "projects"}, res.Rows[2].Levels)
}

func TestRunTick_SiblingEntriesSharePath(t *testing.T) {
	store := &stubStore{
		folders: map[string]treestore.Folder{
			"root": {ID: "root", Name: "Drive"},
			"a":    {ID: "a", Name: "a"},
			"b":    {ID: "b", Name: "b"},
		},
		subs: map[string][]treestore.Folder{
			"root": {{ID: "a", Name: "a"}, {ID: "b", Name: "b"}},
		},
	}
	engine := New(store, DefaultBudget)
	st := NewState("root")

	_, err := engine.RunTick(context.Background(), st)
	require.NoError(t, err)
	assert.True(t, st.Done())
	assert.Equal(t, 2, st.MaxDepthFound)
	assert.Equal(t, []string{"root", "a", "b"}, st.ProcessedFolders)
}

func TestRunTick_BudgetExhaustedImmediately(t *testing.T) {
	store := &stubStore{
		folders: map[string]treestore.Folder{"root": {ID: "root", Name: "Drive"}},
		files: map[string][]treestore.File{
			"root": {{Name: "a.txt"}},
		},
	}
	clk := &fakeClock{t: time.Unix(0, 0), step: time.Minute}
	engine := New(store, time.Second).WithClock(clk.Now)
	st := NewState("root")

	res, err := engine.RunTick(context.Background(), st)
	require.NoError(t, err)
	assert.True(t, res.TimeExhausted)
	assert.Empty(t, res.Rows)
	// Nothing was consumed: the frontier is exactly the seed.
	require.Len(t, st.Queue, 1)
	assert.Equal(t, 0, st.Queue[0].FileCursor)
	assert.Empty(t, st.ProcessedFolders)
}

// An interrupted folder keeps its listing cursor, so the files not yet
// visited are picked up by the next tick instead of being silently lost.
func TestRunTick_InterruptMidFolderThenResume(t *testing.T) {
	store := &stubStore{
		folders: map[string]treestore.Folder{
			"root": {ID: "root", Name: "Drive"},
			"sub":  {ID: "sub", Name: "sub"},
		},
		files: map[string][]treestore.File{
			"root": {{Name: "a.txt", Size: 1}, {Name: "b.txt", Size: 2}},
			"sub":  {{Name: "c.txt", Size: 3}},
		},
		subs: map[string][]treestore.Folder{
			"root": {{ID: "sub", Name: "sub"}},
		},
	}

	// Clock readings: tick start, queue check, one per-file check passes,
	// the next exceeds the 2.5s budget -> exactly one row survives.
	clk := &fakeClock{t: time.Unix(0, 0), step: time.Second}
	engine := New(store, 2500*time.Millisecond).WithClock(clk.Now)
	st := NewState("root")

	res, err := engine.RunTick(context.Background(), st)
	require.NoError(t, err)
	assert.True(t, res.TimeExhausted)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "a.txt", res.Rows[0].FileName)

	// The interrupted folder is still at the front, not marked processed.
	require.Len(t, st.Queue, 1)
	assert.Equal(t, "root", st.Queue[0].FolderID)
	assert.Equal(t, 1, st.Queue[0].FileCursor)
	assert.Empty(t, st.ProcessedFolders)

	// Persist-resume boundary: the state survives a serialization round trip.
	blob, err := st.Encode()
	require.NoError(t, err)
	st, err = DecodeState(blob)
	require.NoError(t, err)

	res2, err := New(store, DefaultBudget).RunTick(context.Background(), st)
	require.NoError(t, err)
	assert.False(t, res2.TimeExhausted)
	assert.True(t, st.Done())

	var names []string
	for _, r := range append(res.Rows, res2.Rows...) {
		names = append(names, r.FileName)
	}
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, names)
	assert.Equal(t, []string{"root", "sub"}, st.ProcessedFolders)
	assert.Equal(t, 2, st.MaxDepthFound)
}

func TestRunTick_StoreErrorAbortsTick(t *testing.T) {
	store := &stubStore{
		folders:  map[string]treestore.Folder{"root": {ID: "root", Name: "Drive"}},
		filesErr: errors.New("backend unavailable"),
	}
	engine := New(store, DefaultBudget)
	st := NewState("root")

	res, err := engine.RunTick(context.Background(), st)
	assert.Error(t, err)
	assert.Nil(t, res)
}
