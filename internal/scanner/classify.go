package scanner

import "io/fs"

type entryKind int

const (
	kindFile entryKind = iota
	kindDir
)

type classified struct {
	name string
	kind entryKind
	size int64
}

// classify reads an entry's metadata before anything routes on it. Symlinks
// are lstat'ed, never followed, and count as files of the link's own size.
func classify(e fs.DirEntry) (classified, error) {
	info, err := e.Info()
	if err != nil {
		return classified{}, err
	}

	if info.IsDir() {
		return classified{name: e.Name(), kind: kindDir}, nil
	}

	size := info.Size()
	if size < 0 {
		size = 0
	}
	return classified{name: e.Name(), kind: kindFile, size: size}, nil
}
