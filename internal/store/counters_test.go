package store

import (
	"context"
	"testing"
)

func TestCounterStoreLoadMissing(t *testing.T) {
	db := openStoreDB(t)
	s := NewCounterStore(db.DB)

	got, err := s.Load(context.Background(), CounterCuePointer)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != 0 {
		t.Errorf("Load() of unwritten counter = %d, want 0", got)
	}
}

func TestCounterStoreReplaceAndLoad(t *testing.T) {
	db := openStoreDB(t)
	s := NewCounterStore(db.DB)
	ctx := context.Background()

	if err := s.Replace(ctx, CounterCuePointer, 7); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if err := s.Replace(ctx, CounterCuePointer, 3); err != nil {
		t.Fatalf("second Replace() error = %v", err)
	}

	got, err := s.Load(ctx, CounterCuePointer)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != 3 {
		t.Errorf("Load() = %d, want 3", got)
	}
}

func TestCounterHandle(t *testing.T) {
	db := openStoreDB(t)
	s := NewCounterStore(db.DB)
	ctx := context.Background()

	pointer := s.Counter(CounterCuePointer)
	other := s.Counter("other")

	if err := pointer.Replace(ctx, 5); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	got, err := pointer.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != 5 {
		t.Errorf("Load() = %d, want 5", got)
	}

	// Counters are independent.
	otherVal, err := other.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if otherVal != 0 {
		t.Errorf("other counter = %d, want 0", otherVal)
	}
}
