package memory

import (
	"context"
	"testing"
)

func TestSeedAndRead(t *testing.T) {
	s := New()
	s.Seed("book", "Tab|H", [][]any{{"Date", "BTC Held"}, {"2025-01-01", 100.0}})

	rv, err := s.ReadRange(context.Background(), "book", "Tab|H")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rv.Values) != 2 {
		t.Fatalf("rows: got %d, want 2", len(rv.Values))
	}
	if rv.MajorDimension != "ROWS" {
		t.Fatalf("major dimension: got %q", rv.MajorDimension)
	}

	// Unseeded ranges come back empty, never as an error.
	rv, err = s.ReadRange(context.Background(), "book", "Missing")
	if err != nil || rv.Values != nil {
		t.Fatalf("unseeded range: got %v, %v", rv.Values, err)
	}
}

func TestBatchRead_PreservesOrder(t *testing.T) {
	s := New()
	s.Seed("book", "A", [][]any{{"a"}})
	s.Seed("book", "B", [][]any{{"b"}})

	out, err := s.BatchRead(context.Background(), "book", []string{"B", "A"})
	if err != nil {
		t.Fatalf("batch read: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("range count: got %d", len(out))
	}
	if out[0].Values[0][0] != "b" || out[1].Values[0][0] != "a" {
		t.Fatalf("order wrong: %v", out)
	}
}
