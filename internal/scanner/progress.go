package scanner

import "sync/atomic"

// Progress is updated by a running scan and may be polled from other
// goroutines. The zero value is ready to use.
type Progress struct {
	dirs    atomic.Int64
	files   atomic.Int64
	bytes   atomic.Int64
	errors  atomic.Int64
	current atomic.Pointer[string]
}

// ProgressSnapshot is a point-in-time copy of Progress.
type ProgressSnapshot struct {
	Directories int64
	Files       int64
	Bytes       int64
	Errors      int64
	Current     string
}

func (p *Progress) Snapshot() ProgressSnapshot {
	if p == nil {
		return ProgressSnapshot{}
	}
	s := ProgressSnapshot{
		Directories: p.dirs.Load(),
		Files:       p.files.Load(),
		Bytes:       p.bytes.Load(),
		Errors:      p.errors.Load(),
	}
	if cur := p.current.Load(); cur != nil {
		s.Current = *cur
	}
	return s
}

func (p *Progress) enter(path string) {
	if p == nil {
		return
	}
	p.dirs.Add(1)
	p.current.Store(&path)
}

func (p *Progress) file(size int64) {
	if p == nil {
		return
	}
	p.files.Add(1)
	p.bytes.Add(size)
}

func (p *Progress) fail() {
	if p == nil {
		return
	}
	p.errors.Add(1)
}
