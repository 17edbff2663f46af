// Package tree holds the immutable snapshot produced by a scan.
//
// Nodes are assembled bottom-up through a Builder and never change once
// built. A Directory owns its children; the parent link is a non-owning
// back-reference set when the parent itself is built.
package tree

import (
	"cmp"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// File is a leaf entry.
type File struct {
	name string
	size int64
	mime string
}

func NewFile(name string, size int64, mime string) File {
	if size < 0 {
		size = 0
	}
	return File{name: name, size: size, mime: mime}
}

func (f File) Name() string { return f.name }
func (f File) Size() int64  { return f.size }
func (f File) Mime() string { return f.mime }

// Directory is a composite entry whose Size is the sum of everything below it.
type Directory struct {
	name   string
	path   string
	size   int64
	files  []File
	dirs   []*Directory
	parent *Directory
	err    *ReadError
}

func (d *Directory) Name() string { return d.name }
func (d *Directory) Path() string { return d.path }
func (d *Directory) Size() int64  { return d.size }

// Files returns a copy of the directory's files in scan order.
func (d *Directory) Files() []File { return slices.Clone(d.files) }

// Directories returns a copy of the child list in scan order.
func (d *Directory) Directories() []*Directory { return slices.Clone(d.dirs) }

// Parent is nil for the root of a scan.
func (d *Directory) Parent() *Directory { return d.parent }

func (d *Directory) Err() *ReadError { return d.err }
func (d *Directory) HasError() bool  { return d.err != nil }

func (d *Directory) Cancelled() bool {
	return d.err != nil && d.err.Kind == KindCancelled
}

// Builder accumulates one directory level. It is not safe for concurrent use.
type Builder struct {
	dir  *Directory
	seen map[string]struct{}
}

func NewBuilder(name, path string) *Builder {
	return &Builder{
		dir:  &Directory{name: name, path: path},
		seen: make(map[string]struct{}),
	}
}

// AddFile appends f unless an entry with the same name exists.
func (b *Builder) AddFile(f File) bool {
	if !b.claim(f.name) {
		return false
	}
	b.dir.files = append(b.dir.files, f)
	return true
}

// AddDirectory appends a built child unless an entry with the same name exists.
func (b *Builder) AddDirectory(child *Directory) bool {
	if child == nil || !b.claim(child.name) {
		return false
	}
	b.dir.dirs = append(b.dir.dirs, child)
	return true
}

func (b *Builder) claim(name string) bool {
	if _, dup := b.seen[name]; dup {
		return false
	}
	b.seen[name] = struct{}{}
	return true
}

func (b *Builder) SetError(err *ReadError) { b.dir.err = err }
func (b *Builder) Err() *ReadError         { return b.dir.err }

// Build finalizes the size, links the children back to the new node and
// returns it. The builder must not be used afterwards.
func (b *Builder) Build() *Directory {
	d := b.dir
	b.dir = nil

	var size int64
	for _, f := range d.files {
		size += f.size
	}
	for _, child := range d.dirs {
		size += child.size
		child.parent = d
	}
	d.size = size
	return d
}

// Compare orders directories by name, then size.
func Compare(a, b *Directory) int {
	if c := strings.Compare(a.name, b.name); c != 0 {
		return c
	}
	return cmp.Compare(a.size, b.size)
}

func compareFiles(a, b File) int {
	if c := strings.Compare(a.name, b.name); c != 0 {
		return c
	}
	return cmp.Compare(a.size, b.size)
}

// Equal reports whether two trees have the same names, sizes and children.
// Collection order, paths, parents and errors are not compared.
func Equal(a, b *Directory) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.name != b.name || a.size != b.size {
		return false
	}
	if len(a.files) != len(b.files) || len(a.dirs) != len(b.dirs) {
		return false
	}

	af, bf := slices.Clone(a.files), slices.Clone(b.files)
	slices.SortFunc(af, compareFiles)
	slices.SortFunc(bf, compareFiles)
	if !slices.Equal(af, bf) {
		return false
	}

	ad, bd := slices.Clone(a.dirs), slices.Clone(b.dirs)
	slices.SortFunc(ad, Compare)
	slices.SortFunc(bd, Compare)
	for i := range ad {
		if !Equal(ad[i], bd[i]) {
			return false
		}
	}
	return true
}

// SkipDir can be returned from a WalkFunc to skip a directory's children.
var SkipDir = fs.SkipDir

// WalkFunc is called for every directory in pre-order.
type WalkFunc func(d *Directory, depth int) error

// Walk visits root and its descendants depth-first.
func Walk(root *Directory, fn WalkFunc) error {
	if root == nil {
		return nil
	}
	err := walk(root, 0, fn)
	if err == SkipDir {
		return nil
	}
	return err
}

func walk(d *Directory, depth int, fn WalkFunc) error {
	if err := fn(d, depth); err != nil {
		return err
	}
	for _, child := range d.dirs {
		if err := walk(child, depth+1, fn); err != nil && err != SkipDir {
			return err
		}
	}
	return nil
}

// Find resolves rel (slash or OS separated, relative to root) to a node.
func Find(root *Directory, rel string) *Directory {
	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == "." || rel == "" {
		return root
	}

	cur := root
	for _, part := range strings.Split(strings.Trim(rel, "/"), "/") {
		var next *Directory
		for _, child := range cur.dirs {
			if child.name == part {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// Stats summarizes a tree.
type Stats struct {
	Directories int
	Files       int
	Errors      int
	Bytes       int64
}

func Collect(root *Directory) Stats {
	var s Stats
	if root == nil {
		return s
	}
	s.Bytes = root.size
	_ = Walk(root, func(d *Directory, _ int) error {
		s.Directories++
		s.Files += len(d.files)
		if d.err != nil {
			s.Errors++
		}
		return nil
	})
	return s
}
