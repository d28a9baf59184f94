package workers

import (
	"testing"
	"time"
)

func TestManagerShutdownStopsAllWorkers(t *testing.T) {
	m := NewManager()

	started := make(chan struct{}, 2)
	stopped := make(chan struct{}, 2)

	worker := func(name string) func() {
		return func() {
			defer m.OnWorkerDone(name)
			started <- struct{}{}
			<-m.ShouldShutdown()
			stopped <- struct{}{}
		}
	}

	m.StartWorker(worker("a"))
	m.StartWorker(worker("b"))

	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatalf("worker %d never started", i)
		}
	}

	m.StartShutdown()
	m.StartShutdown() // must be safe to call twice

	done := make(chan struct{})
	go func() {
		m.WaitWorkersShutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("workers never returned after shutdown")
	}

	if got := m.WorkersDoneCount(); got != 2 {
		t.Fatalf("WorkersDoneCount() = %d, want 2", got)
	}
}
