package server

import (
	"errors"
	"sync"
	"testing"
)

// fakeSink 记录收到的消息；block 非空时 Send 会阻塞到 block 被关闭
type fakeSink struct {
	mu     sync.Mutex
	sent   [][]byte
	err    error
	block  chan struct{}
	closed bool
}

func (f *fakeSink) Send(payload []byte) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, payload)
	return nil
}

func (f *fakeSink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSink) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, b := range f.sent {
		out[i] = string(b)
	}
	return out
}

func (f *fakeSink) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestRegistryCheckOutAndReturn(t *testing.T) {
	r := NewRegistry()
	sink := &fakeSink{}
	r.Register(1, sink)

	got, err := r.CheckOut(1)
	if err != nil {
		t.Fatalf("check out: %v", err)
	}
	if got != Sink(sink) {
		t.Fatalf("checked out unexpected sink")
	}
	if !r.InFlight(1) {
		t.Fatalf("expected slot to be in flight")
	}
	if _, err := r.CheckOut(1); !errors.Is(err, ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("checked out slot must stay registered, len=%d", r.Len())
	}

	if !r.Return(1, got) {
		t.Fatalf("expected return to succeed")
	}
	if r.InFlight(1) {
		t.Fatalf("expected slot to be idle after return")
	}
	if _, err := r.CheckOut(1); err != nil {
		t.Fatalf("check out after return: %v", err)
	}
}

func TestRegistryCheckOutUnknown(t *testing.T) {
	r := NewRegistry()
	if _, err := r.CheckOut(9); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
}

func TestRegistryReturnAfterRemoveDiscards(t *testing.T) {
	r := NewRegistry()
	sink := &fakeSink{}
	r.Register(1, sink)
	got, _ := r.CheckOut(1)

	if removed, ok := r.Remove(1); !ok || removed != Sink(sink) {
		t.Fatalf("expected remove to hand back the sink")
	}
	if r.Return(1, got) {
		t.Fatalf("return after remove must be discarded")
	}
	if r.Len() != 0 {
		t.Fatalf("return must not re-register, len=%d", r.Len())
	}
}

func TestRegistryReturnStaleSink(t *testing.T) {
	r := NewRegistry()
	old := &fakeSink{}
	r.Register(1, old)
	got, _ := r.CheckOut(1)

	r.Register(1, &fakeSink{})
	if r.Return(1, got) {
		t.Fatalf("stale sink must not be returned into a replaced slot")
	}
}

func TestRegistryIDsSorted(t *testing.T) {
	r := NewRegistry()
	for _, id := range []ConnID{4, 2, 9} {
		r.Register(id, &fakeSink{})
	}
	ids := r.IDs()
	want := []ConnID{2, 4, 9}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
}
