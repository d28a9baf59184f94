// Package workers provides a small lifecycle manager for the handful of
// long-running goroutines the capture pipeline needs: a goroutine reading
// raw frames off an interface and a goroutine writing decoded packets to
// a sink should shut down together, once, no matter which of them notices
// the failure first.
package workers

import "sync"

// Manager coordinates a fixed, known set of worker goroutines: it lets any
// of them request a shutdown of the whole group, and lets the owner wait
// until every worker it started has actually returned.
type Manager struct {
	mu            sync.Mutex
	shutdownOnce  sync.Once
	shutdownCh    chan struct{}
	wg            sync.WaitGroup
	doneCallbacks map[string]bool
}

// NewManager constructs a Manager with no workers started yet.
func NewManager() *Manager {
	return &Manager{
		shutdownCh:    make(chan struct{}),
		doneCallbacks: make(map[string]bool),
	}
}

// StartWorker runs fn in its own goroutine and tracks it so WaitWorkersShutdown
// can block until fn returns.
func (m *Manager) StartWorker(fn func()) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		fn()
	}()
}

// ShouldShutdown returns a channel that is closed once shutdown has been
// requested. A worker's main loop selects on this channel to notice a
// shutdown request without blocking forever on its I/O.
func (m *Manager) ShouldShutdown() <-chan struct{} {
	return m.shutdownCh
}

// StartShutdown requests that every worker stop. Safe to call more than
// once, from more than one worker, concurrently.
func (m *Manager) StartShutdown() {
	m.shutdownOnce.Do(func() {
		close(m.shutdownCh)
	})
}

// OnWorkerDone records that the named worker has returned. Names are
// informational (used only for WorkersDoneCount bookkeeping below); they
// need not be unique.
func (m *Manager) OnWorkerDone(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doneCallbacks[name] = true
}

// WorkersDoneCount reports how many distinct worker names have called
// OnWorkerDone so far.
func (m *Manager) WorkersDoneCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.doneCallbacks)
}

// WaitWorkersShutdown blocks until every goroutine started with
// StartWorker has returned.
func (m *Manager) WaitWorkersShutdown() {
	m.wg.Wait()
}
