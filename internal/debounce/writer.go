// Package debounce coalesces bursts of writes to the same key into a single
// deferred write.
package debounce

import (
	"sync"
	"time"

	"github.com/metcalfc/moonriver/internal/clock"
	"go.uber.org/zap"
)

// DefaultDelay is the quiet period used when Schedule is given a non-positive delay.
const DefaultDelay = 500 * time.Millisecond

type pending struct {
	gen    uint64
	write  func()
	cancel clock.CancelFunc
}

// Writer holds at most one pending write per key.
type Writer struct {
	sched clock.Scheduler
	log   *zap.Logger

	mu      sync.Mutex
	gen     uint64
	pending map[string]*pending
}

// NewWriter returns a Writer using sched for its timers.
func NewWriter(sched clock.Scheduler, log *zap.Logger) *Writer {
	if sched == nil {
		sched = clock.Real()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{
		sched:   sched,
		log:     log,
		pending: make(map[string]*pending),
	}
}

// Schedule registers write to run after delay. A pending write for the same
// key is canceled and its timer restarted, so only the last write of a burst
// commits.
func (w *Writer) Schedule(key string, delay time.Duration, write func()) {
	if delay <= 0 {
		delay = DefaultDelay
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.pending[key]; ok {
		p.cancel()
	}

	w.gen++
	p := &pending{gen: w.gen, write: write}
	gen := p.gen
	p.cancel = w.sched.After(delay, func() { w.fire(key, gen) })
	w.pending[key] = p
}

// fire commits the write for key if gen is still the newest scheduled
// generation. A timer that already started when it was superseded finds a
// different generation and drops out.
func (w *Writer) fire(key string, gen uint64) {
	w.mu.Lock()
	p, ok := w.pending[key]
	if !ok || p.gen != gen {
		w.mu.Unlock()
		return
	}
	delete(w.pending, key)
	w.mu.Unlock()

	w.log.Debug("debounced write", zap.String("key", key))
	p.write()
}

// Cancel drops the pending write for key, if any.
func (w *Writer) Cancel(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.pending[key]; ok {
		p.cancel()
		delete(w.pending, key)
	}
}

// Flush commits every pending write now.
func (w *Writer) Flush() {
	w.mu.Lock()
	writes := make([]func(), 0, len(w.pending))
	for key, p := range w.pending {
		p.cancel()
		delete(w.pending, key)
		writes = append(writes, p.write)
	}
	w.mu.Unlock()

	for _, write := range writes {
		write()
	}
}

// FlushKey commits the pending write for key now, if any.
func (w *Writer) FlushKey(key string) {
	w.mu.Lock()
	p, ok := w.pending[key]
	if ok {
		p.cancel()
		delete(w.pending, key)
	}
	w.mu.Unlock()

	if ok {
		p.write()
	}
}

// Stop drops every pending write.
func (w *Writer) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for key, p := range w.pending {
		p.cancel()
		delete(w.pending, key)
	}
}

// Pending returns the number of keys with a write waiting.
func (w *Writer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}
