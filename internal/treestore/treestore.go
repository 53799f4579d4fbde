// Package treestore abstracts the hierarchical source being indexed.
// The traversal engine only ever sees folder identifiers and listings;
// backends decide what an identifier means.
package treestore

import (
	"context"
	"time"
)

// Folder is one directory in the tree.
type Folder struct {
	// ID is an opaque stable reference usable with Folder/Files/Subfolders.
	ID string
	// Name is the folder's own display name (not its full path).
	Name string
}

// File is one regular file directly inside a folder.
type File struct {
	Name     string
	Modified time.Time
	Size     int64
	// Link is a stable reference to the file, e.g. a URL or path.
	Link string
}

// Store is the hierarchical file/folder source.
//
// Enumeration order of Files and Subfolders must be stable across calls
// for the same folder: resumption after an interrupted tick skips entries
// by position, so a backend that reorders listings would drop or duplicate
// files.
type Store interface {
	// Folder resolves an identifier to its folder.
	Folder(ctx context.Context, id string) (Folder, error)
	// Files lists the regular files directly inside the folder.
	Files(ctx context.Context, id string) ([]File, error)
	// Subfolders lists the direct child folders.
	Subfolders(ctx context.Context, id string) ([]Folder, error)
}
