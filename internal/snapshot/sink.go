package snapshot

import (
	"os"
	"sync"
)

// Sink consumes snapshots at output events. Implementations must not
// retain the Snap beyond Write unless they own a copy (Capture already
// deep-copies, so the engine's snaps are safe to hold).
type Sink interface {
	Write(s *Snap) error
	Close() error
}

// DirSink writes one file per event into a directory.
type DirSink struct {
	dir string
}

// NewDirSink ensures dir exists and returns a sink writing into it.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &IOError{Path: dir, Op: "mkdir", Err: err}
	}
	return &DirSink{dir: dir}, nil
}

func (d *DirSink) Write(s *Snap) error { return s.Write(d.dir) }
func (d *DirSink) Close() error        { return nil }

// AsyncSink decouples output latency from the stepping loop: writes
// are queued on a buffered channel and performed by one goroutine.
// Each failed write surfaces exactly once, on a later Write, Flush or
// Close call; an event that reached the inner sink is never reported
// as lost.
type AsyncSink struct {
	inner   Sink
	ch      chan *Snap
	done    chan struct{}
	pending sync.WaitGroup

	mu   sync.Mutex
	errs []error
}

// NewAsyncSink wraps inner with a queue of the given depth.
func NewAsyncSink(inner Sink, depth int) *AsyncSink {
	if depth < 1 {
		depth = 1
	}
	a := &AsyncSink{
		inner: inner,
		ch:    make(chan *Snap, depth),
		done:  make(chan struct{}),
	}
	go a.loop()
	return a
}

func (a *AsyncSink) loop() {
	defer close(a.done)
	for s := range a.ch {
		if err := a.inner.Write(s); err != nil {
			a.mu.Lock()
			a.errs = append(a.errs, err)
			a.mu.Unlock()
		}
		a.pending.Done()
	}
}

// takeErr pops the oldest unreported write error.
func (a *AsyncSink) takeErr() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.errs) == 0 {
		return nil
	}
	err := a.errs[0]
	a.errs = a.errs[1:]
	return err
}

// Write queues a snapshot, blocking only when the queue is full. It
// reports the oldest unreported error from earlier queued writes, if
// any.
func (a *AsyncSink) Write(s *Snap) error {
	a.pending.Add(1)
	a.ch <- s
	return a.takeErr()
}

// Flush blocks until every queued snapshot has reached the inner sink
// and reports the oldest unreported write error. The sink stays usable
// afterwards, unlike Close.
func (a *AsyncSink) Flush() error {
	a.pending.Wait()
	return a.takeErr()
}

// Close drains the queue, closes the inner sink and returns the oldest
// unreported write error.
func (a *AsyncSink) Close() error {
	close(a.ch)
	<-a.done
	if err := a.inner.Close(); err != nil {
		return err
	}
	return a.takeErr()
}
