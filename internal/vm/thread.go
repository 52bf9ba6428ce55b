package vm

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// ThreadState owns one thread's frame stack (spec.md §4.9 "Frame":
// "pointer to thread state"; §5 "per-thread frame stacks"). Its ID is a
// correlation id surfaced in crash diagnostics, not an OS thread id —
// this core never migrates a frame between goroutines once started.
type ThreadState struct {
	ID      uuid.UUID
	manager *Manager
	stack   []*Frame
}

func (t *ThreadState) Top() *Frame {
	if len(t.stack) == 0 {
		return nil
	}
	return t.stack[len(t.stack)-1]
}

func (t *ThreadState) push(f *Frame) {
	f.Back = t.Top()
	t.stack = append(t.stack, f)
}

func (t *ThreadState) pop() {
	t.stack = t.stack[:len(t.stack)-1]
}

func (t *ThreadState) Depth() int { return len(t.stack) }

// Manager is the process-wide scheduling state (spec.md §5 "Scheduling
// model"): a coarse global lock held for the duration of a dispatch
// loop run (option (a) of §5, chosen over per-container locking for
// this core's single-writer-at-a-time simplicity), plus a semaphore
// bounding how many threads may be live at once.
type Manager struct {
	gil       sync.Mutex
	liveCount *semaphore.Weighted
}

// NewManager builds a Manager that allows at most maxThreads ThreadStates
// to exist concurrently.
func NewManager(maxThreads int64) *Manager {
	return &Manager{liveCount: semaphore.NewWeighted(maxThreads)}
}

// Spawn acquires a thread slot, builds a fresh ThreadState, and runs fn
// under it; the slot and the ThreadState are both released when fn
// returns (spec.md §5 "Acquisition": "a slot on the thread's stack...
// released on frame pop regardless of exit path").
func (m *Manager) Spawn(ctx context.Context, fn func(*ThreadState) (interface{}, error)) (interface{}, error) {
	if err := m.liveCount.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer m.liveCount.Release(1)
	ts := &ThreadState{ID: uuid.New(), manager: m}
	return fn(ts)
}

// Lock/Unlock expose the coarse global lock directly to the dispatch
// loop (package-internal use only): held for the duration of one
// RunFrame call, modelling "a single frame is always executed by
// exactly one thread end-to-end" together with the no-suspension-points
// guarantee of spec.md §5.
func (m *Manager) Lock()   { m.gil.Lock() }
func (m *Manager) Unlock() { m.gil.Unlock() }
