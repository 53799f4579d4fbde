// Package traverse implements the resumable breadth-first traversal engine.
// One call to Engine.RunTick performs a bounded slice of work over the tree
// store; TraversalState is the checkpoint that carries the BFS frontier
// between ticks.
package traverse

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion tags serialized checkpoints. Decode rejects blobs written
// by a different schema so stale checkpoints fail loudly instead of being
// misinterpreted.
const SchemaVersion = 1

// ErrStateVersion is returned when a checkpoint blob carries an unknown
// schema version.
var ErrStateVersion = errors.New("unsupported traversal state version")

// QueueEntry is one folder waiting on the BFS frontier.
type QueueEntry struct {
	// FolderID is an opaque stable reference into the tree store.
	FolderID string `json:"folderId"`
	// Path holds the ancestor folder names from the root, exclusive of
	// this entry's own folder name. The root entry has an empty path.
	Path []string `json:"path,omitempty"`
	// Depth is 1-based and always equals len(Path)+1.
	Depth int `json:"depth"`
	// FileCursor and SubfolderCursor are in-progress listing positions.
	// A folder interrupted mid-enumeration stays at the queue front and
	// resumes from these offsets, so no child is lost or listed twice.
	FileCursor      int `json:"fileCursor,omitempty"`
	SubfolderCursor int `json:"subfolderCursor,omitempty"`
}

// TraversalState is the checkpoint, the only persisted entity of a run.
type TraversalState struct {
	Version int    `json:"version"`
	RunID   string `json:"runId"`
	// Queue is the FIFO BFS frontier; insertion order is processing order.
	Queue []QueueEntry `json:"queue"`
	// ProcessedFolders lists fully enumerated folder ids, each exactly once.
	ProcessedFolders []string `json:"processedFolders"`
	// MaxDepthFound is the nesting high-water mark, never decreased.
	MaxDepthFound int `json:"maxDepthFound"`
	// LastProcessedTime records when the most recent folder finished.
	// Informational only; budget decisions never read it.
	LastProcessedTime time.Time `json:"lastProcessedTime"`
}

// NewState seeds a fresh run with the root folder at depth 1.
func NewState(rootID string) *TraversalState {
	return &TraversalState{
		Version:       SchemaVersion,
		RunID:         uuid.NewString(),
		Queue:         []QueueEntry{{FolderID: rootID, Depth: 1}},
		MaxDepthFound: 1,
	}
}

// Done reports whether the frontier has drained.
func (s *TraversalState) Done() bool {
	return len(s.Queue) == 0
}

// Encode serializes the state for checkpoint storage.
func (s *TraversalState) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// DecodeState parses a checkpoint blob, rejecting unknown schema versions.
func DecodeState(data []byte) (*TraversalState, error) {
	var st TraversalState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse traversal state: %w", err)
	}
	if st.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrStateVersion, st.Version, SchemaVersion)
	}
	return &st, nil
}

// Row is one file record destined for the sink. It stays structured until
// the sheet boundary, where it is flattened to level cells plus the four
// fixed trailing columns.
type Row struct {
	Levels      []string
	FileName    string
	LastUpdated time.Time
	SizeLabel   string
	Link        string
}
