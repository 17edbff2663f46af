package scanner

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/burace17/disk-analyzer/internal/tree"
)

// DefaultMaxDepth bounds recursion; deeper directories are reported as errors.
const DefaultMaxDepth = 512

// Scanner walks a directory depth-first on the calling goroutine.
type Scanner struct {
	fs       FS
	log      *zap.Logger
	maxDepth int
	exclude  []string
	progress *Progress
}

type Option func(*Scanner)

func WithFS(fsys FS) Option {
	return func(s *Scanner) { s.fs = fsys }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Scanner) {
		if log != nil {
			s.log = log
		}
	}
}

func WithMaxDepth(depth int) Option {
	return func(s *Scanner) {
		if depth > 0 {
			s.maxDepth = depth
		}
	}
}

// WithExclude skips entries whose slash path relative to the scan root
// matches one of the doublestar patterns.
func WithExclude(patterns []string) Option {
	return func(s *Scanner) { s.exclude = patterns }
}

func WithProgress(p *Progress) Option {
	return func(s *Scanner) { s.progress = p }
}

func New(opts ...Option) *Scanner {
	s := &Scanner{
		fs:       OSFS{},
		log:      zap.NewNop(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan builds the tree rooted at path. It blocks until the walk completes or
// observes sig; the outcome is carried by the returned root's Err.
func (s *Scanner) Scan(path string, sig *Signal) *tree.Directory {
	start := time.Now()
	s.log.Info("scan started", zap.String("path", path))

	root := s.scanDir(path, path, nameOf(path), 0, sig)

	fields := []zap.Field{
		zap.String("path", path),
		zap.Int64("size", root.Size()),
		zap.Duration("duration", time.Since(start)),
	}
	switch {
	case root.Cancelled():
		s.log.Info("scan cancelled", fields...)
	case root.HasError():
		s.log.Warn("scan failed", append(fields, zap.Error(root.Err()))...)
	default:
		s.log.Info("scan finished", fields...)
	}
	return root
}

// ScanContext runs Scan with a Signal tied to ctx and also returns the
// root's error through the error result. The tree is returned either way.
func (s *Scanner) ScanContext(ctx context.Context, path string) (*tree.Directory, error) {
	sig, stop := SignalFromContext(ctx)
	defer stop()

	root := s.Scan(path, sig)
	if err := root.Err(); err != nil {
		return root, err
	}
	return root, nil
}

func (s *Scanner) scanDir(root, path, name string, depth int, sig *Signal) *tree.Directory {
	b := tree.NewBuilder(name, path)

	if sig.Cancelled() {
		b.SetError(tree.NewCancelled(path))
		return b.Build()
	}
	if depth > s.maxDepth {
		return s.fail(b, path, fmt.Errorf("%s: %w", path, tree.ErrDepthExceeded))
	}

	s.progress.enter(path)
	entries, err := s.fs.ReadDir(path)
	if err != nil {
		return s.fail(b, path, err)
	}

	var files []classified
	var subdirs []classified
	for _, e := range entries {
		full := filepath.Join(path, e.Name())
		if s.excluded(root, full) {
			continue
		}

		c, err := classify(e)
		if err != nil {
			return s.fail(b, path, fmt.Errorf("stat %s: %w", full, err))
		}
		if c.kind == kindDir {
			subdirs = append(subdirs, c)
		} else {
			files = append(files, c)
		}
	}

	complete := true
	for _, sub := range subdirs {
		if sig.Cancelled() {
			complete = false
			break
		}
		child := s.scanDir(root, filepath.Join(path, sub.name), sub.name, depth+1, sig)
		b.AddDirectory(child)
		if child.Cancelled() {
			complete = false
			break
		}
	}

	// Files are only counted once every subdirectory finished, so a node cut
	// short by cancellation reports exactly what its completed subtrees measured.
	if complete {
		for _, f := range files {
			b.AddFile(tree.NewFile(f.name, f.size, MimeType(f.name)))
			s.progress.file(f.size)
		}
	}
	if !complete || sig.Cancelled() {
		b.SetError(tree.NewCancelled(path))
	}
	return b.Build()
}

func (s *Scanner) fail(b *tree.Builder, path string, err error) *tree.Directory {
	rerr := tree.NewIOError(path, err)
	s.progress.fail()
	s.log.Debug("directory unreadable",
		zap.String("path", path),
		zap.String("kind", string(rerr.IO)),
		zap.Error(err))
	b.SetError(rerr)
	return b.Build()
}

func (s *Scanner) excluded(root, full string) bool {
	if len(s.exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, full)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, p := range s.exclude {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// nameOf returns the last path component, or "" for a volume or filesystem root.
func nameOf(path string) string {
	clean := filepath.Clean(path)
	vol := filepath.VolumeName(clean)
	if clean == vol || clean == vol+string(filepath.Separator) {
		return ""
	}
	base := filepath.Base(clean)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return base
}
