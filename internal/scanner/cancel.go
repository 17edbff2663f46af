package scanner

import (
	"context"
	"sync"
	"sync/atomic"
)

// Signal is a one-shot cancellation flag shared by every frame of one scan.
// Cancel may be called from any goroutine, any number of times.
type Signal struct {
	fired atomic.Bool
	once  sync.Once
	done  chan struct{}
}

func NewSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

func (s *Signal) Cancel() {
	s.once.Do(func() {
		s.fired.Store(true)
		close(s.done)
	})
}

// Cancelled polls the flag. A nil Signal never fires.
func (s *Signal) Cancelled() bool {
	return s != nil && s.fired.Load()
}

// Done is closed once Cancel has been called.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

// SignalFromContext returns a Signal that fires when ctx is done. The stop
// func detaches it from ctx.
func SignalFromContext(ctx context.Context) (*Signal, func() bool) {
	sig := NewSignal()
	if ctx.Err() != nil {
		sig.Cancel()
	}
	return sig, context.AfterFunc(ctx, sig.Cancel)
}
