package server

import (
	"sync"
	"testing"
)

func TestEntityStoreInsertStartsAtOrigin(t *testing.T) {
	s := NewEntityStore()
	if !s.Insert(1) {
		t.Fatalf("expected insert to succeed")
	}
	if s.Insert(1) {
		t.Fatalf("expected duplicate insert to be rejected")
	}
	e, ok := s.Get(1)
	if !ok {
		t.Fatalf("expected entity 1 to exist")
	}
	if e.Position != (Position{}) {
		t.Fatalf("expected origin, got %+v", e.Position)
	}
}

func TestEntityStoreMoveMissingEntity(t *testing.T) {
	s := NewEntityStore()
	if _, ok := s.Move(42, DirRight); ok {
		t.Fatalf("expected move on missing entity to be ignored")
	}
	if s.Len() != 0 {
		t.Fatalf("move must not create entities, have %d", s.Len())
	}
}

func TestEntityStoreRemove(t *testing.T) {
	s := NewEntityStore()
	s.Insert(5)
	if !s.Remove(5) {
		t.Fatalf("expected remove to report existing entity")
	}
	if s.Remove(5) {
		t.Fatalf("expected second remove to report missing entity")
	}
	if _, ok := s.Get(5); ok {
		t.Fatalf("entity 5 still present")
	}
}

func TestEntityStoreSnapshotCompleteness(t *testing.T) {
	s := NewEntityStore()
	for _, id := range []ConnID{3, 1, 2} {
		s.Insert(id)
	}
	snap := s.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 entities, got %d", len(snap))
	}
	for i, want := range []ConnID{1, 2, 3} {
		if snap[i].ID != want {
			t.Fatalf("snapshot[%d] id = %d, want %d", i, snap[i].ID, want)
		}
	}

	// 快照是副本，之后的修改不影响它
	s.Move(1, DirDown)
	if snap[0].Position != (Position{}) {
		t.Fatalf("snapshot mutated by later move: %+v", snap[0].Position)
	}
}

func TestEntityStoreConcurrentIsolation(t *testing.T) {
	const n = 500
	s := NewEntityStore()
	s.Insert(1)
	s.Insert(2)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			s.Move(1, DirRight)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			s.Move(2, DirUp)
			s.Snapshot()
		}
	}()
	wg.Wait()

	a, _ := s.Get(1)
	b, _ := s.Get(2)
	if a.Position != (Position{X: n * moveStep}) {
		t.Fatalf("entity 1 at %+v", a.Position)
	}
	if b.Position != (Position{Y: -n * moveStep}) {
		t.Fatalf("entity 2 at %+v", b.Position)
	}
}
