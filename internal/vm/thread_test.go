package vm

import (
	"context"
	"testing"

	"pyrt/internal/bytecode"
	"pyrt/internal/object"
)

func TestThreadStateFrameStack(t *testing.T) {
	ts := &ThreadState{}
	if ts.Top() != nil {
		t.Fatal("expected empty stack to have no top frame")
	}
	code := &bytecode.CodeObject{StackSize: 1}
	f1 := NewFrame(ts, code, object.NewDict(), object.NewDict())
	ts.push(f1)
	if ts.Depth() != 1 || ts.Top() != f1 {
		t.Fatalf("expected depth 1 with top=f1, got depth=%d top=%v", ts.Depth(), ts.Top())
	}

	f2 := NewFrame(ts, code, object.NewDict(), object.NewDict())
	ts.push(f2)
	if f2.Back != f1 {
		t.Fatal("expected f2.Back to be f1")
	}
	ts.pop()
	if ts.Top() != f1 {
		t.Fatal("expected top to be f1 after popping f2")
	}
}

func TestManagerSpawnRunsFnWithThreadID(t *testing.T) {
	m := NewManager(2)
	result, err := m.Spawn(context.Background(), func(ts *ThreadState) (interface{}, error) {
		return ts.ID.String(), nil
	})
	if err != nil {
		t.Fatalf("Spawn error: %v", err)
	}
	if result.(string) == "" {
		t.Fatal("expected a non-empty thread id")
	}
}

func TestManagerGIL(t *testing.T) {
	m := NewManager(1)
	m.Lock()
	done := make(chan struct{})
	go func() {
		m.Lock()
		close(done)
		m.Unlock()
	}()
	select {
	case <-done:
		t.Fatal("second Lock should have blocked while GIL held")
	default:
	}
	m.Unlock()
	<-done
}
