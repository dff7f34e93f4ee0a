package memory

import (
	"context"
	"testing"

	"relocationos/internal/core"
	"relocationos/internal/mirror"
)

func TestStoreRecordsLatestSnapshot(t *testing.T) {
	s := New()
	ctx := context.Background()

	first := mirror.Snapshot{Profile: core.Profile{ID: 1, RelocationName: "Lisbon"}}
	second := mirror.Snapshot{Profile: core.Profile{ID: 1, RelocationName: "Lisbon move"}}

	if err := s.WriteSnapshot(ctx, first); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}
	if err := s.WriteSnapshot(ctx, second); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}

	snap, ok := s.Snapshot(1)
	if !ok {
		t.Fatal("Snapshot(1) not found")
	}
	if snap.Profile.RelocationName != "Lisbon move" {
		t.Errorf("Snapshot(1) name = %q, want latest write", snap.Profile.RelocationName)
	}
	if s.Writes() != 2 {
		t.Errorf("Writes() = %d, want 2", s.Writes())
	}
}

func TestStoreRemoveProfile(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.WriteSnapshot(ctx, mirror.Snapshot{Profile: core.Profile{ID: 3}})
	if err := s.RemoveProfile(ctx, 3); err != nil {
		t.Fatalf("RemoveProfile() error = %v", err)
	}

	if _, ok := s.Snapshot(3); ok {
		t.Error("Snapshot(3) should be gone after removal")
	}
	removed := s.Removed()
	if len(removed) != 1 || removed[0] != 3 {
		t.Errorf("Removed() = %v, want [3]", removed)
	}
}
