package scanner

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/go-git/go-billy/v5"
)

// FS lists one directory. Entries are expected to defer their metadata read
// to Info() so a failing entry is reported separately from the listing.
type FS interface {
	ReadDir(name string) ([]fs.DirEntry, error)
}

// OSFS reads the host filesystem.
type OSFS struct{}

func (OSFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

// BillyFS scans a go-billy filesystem (osfs, memfs, chroot views).
type BillyFS struct {
	fs billy.Filesystem
}

func NewBillyFS(bfs billy.Filesystem) *BillyFS {
	return &BillyFS{fs: bfs}
}

func (b *BillyFS) ReadDir(name string) ([]fs.DirEntry, error) {
	infos, err := b.fs.ReadDir(name)
	if err != nil {
		return nil, fmt.Errorf("billy: readdir %q: %w", name, err)
	}

	entries := make([]fs.DirEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, fs.FileInfoToDirEntry(info))
	}
	return entries, nil
}
