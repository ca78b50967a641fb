package server

import "testing"

func TestEncodeSnapshotEmpty(t *testing.T) {
	for _, in := range [][]Entity{nil, {}} {
		b, err := EncodeSnapshot(in)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if string(b) != "[]" {
			t.Fatalf("expected [], got %s", b)
		}
	}
}

func TestEncodeSnapshotWireFormat(t *testing.T) {
	b, err := EncodeSnapshot([]Entity{
		{ID: 7, Position: Position{X: 10, Y: -20}},
		{ID: 8},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `[{"position":{"x":10,"y":-20},"id":7},{"position":{"x":0,"y":0},"id":8}]`
	if string(b) != want {
		t.Fatalf("got %s\nwant %s", b, want)
	}
}
