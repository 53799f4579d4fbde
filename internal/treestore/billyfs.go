package treestore

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
)

// RootID is the identifier of the tree root in a BillyStore.
const RootID = "."

// BillyStore adapts a billy.Filesystem to the Store interface.
// Folder identifiers are slash paths relative to the filesystem root,
// with "." naming the root itself. Listings are sorted by name so the
// enumeration order is stable regardless of backend.
type BillyStore struct {
	fs       billy.Filesystem
	rootName string
	linkBase string
}

// NewBillyStore wraps fs. rootName is the display name reported for the
// root folder; linkBase, if non-empty, prefixes every file link.
func NewBillyStore(fs billy.Filesystem, rootName, linkBase string) *BillyStore {
	return &BillyStore{fs: fs, rootName: rootName, linkBase: linkBase}
}

func (s *BillyStore) Folder(ctx context.Context, id string) (Folder, error) {
	if id == RootID || id == "" {
		return Folder{ID: RootID, Name: s.rootName}, nil
	}
	info, err := s.fs.Stat(id)
	if err != nil {
		return Folder{}, fmt.Errorf("stat folder %s: %w", id, err)
	}
	if !info.IsDir() {
		return Folder{}, fmt.Errorf("not a folder: %s", id)
	}
	return Folder{ID: id, Name: info.Name()}, nil
}

func (s *BillyStore) Files(ctx context.Context, id string) ([]File, error) {
	entries, err := s.fs.ReadDir(id)
	if err != nil {
		return nil, fmt.Errorf("list files %s: %w", id, err)
	}
	var files []File
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, File{
			Name:     e.Name(),
			Modified: e.ModTime(),
			Size:     e.Size(),
			Link:     s.link(path.Join(id, e.Name())),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (s *BillyStore) Subfolders(ctx context.Context, id string) ([]Folder, error) {
	entries, err := s.fs.ReadDir(id)
	if err != nil {
		return nil, fmt.Errorf("list subfolders %s: %w", id, err)
	}
	var folders []Folder
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		folders = append(folders, Folder{
			ID:   path.Join(id, e.Name()),
			Name: e.Name(),
		})
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].Name < folders[j].Name })
	return folders, nil
}

func (s *BillyStore) link(p string) string {
	if s.linkBase == "" {
		return p
	}
	return strings.TrimSuffix(s.linkBase, "/") + "/" + p
}

var _ Store = (*BillyStore)(nil)
