// Package memory is an in-process mirror target used by tests.
package memory

import (
	"context"
	"sync"

	"relocationos/internal/mirror"
)

type Store struct {
	mu        sync.Mutex
	snapshots map[int64]mirror.Snapshot
	removed   []int64
	writes    int
}

func New() *Store {
	return &Store{snapshots: make(map[int64]mirror.Snapshot)}
}

func (s *Store) Name() string { return "memory" }

// WriteSnapshot keeps the latest snapshot per profile.
func (s *Store) WriteSnapshot(_ context.Context, snap mirror.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.Profile.ID] = snap
	s.writes++
	return nil
}

func (s *Store) RemoveProfile(_ context.Context, profileID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, profileID)
	s.removed = append(s.removed, profileID)
	return nil
}

// Snapshot returns the latest snapshot recorded for a profile.
func (s *Store) Snapshot(profileID int64) (mirror.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[profileID]
	return snap, ok
}

// Writes reports how many snapshots were written in total.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Removed returns the profile ids removed, in order.
func (s *Store) Removed() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.removed...)
}
