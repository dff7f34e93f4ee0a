package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"relocationos/internal/core"
	"relocationos/internal/storage"
)

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedProfile(t *testing.T, repo *storage.SQLiteRepository) *core.Profile {
	t.Helper()
	p, err := repo.CreateProfile(context.Background(), core.Profile{
		RelocationName:     "Lisbon move",
		OriginCountry:      "Brazil",
		DestinationCountry: "Portugal",
		FamilySize:         2,
		PrimaryCurrency:    "EUR",
	})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return p
}

func seedPhase(t *testing.T, repo *storage.SQLiteRepository, profileID int64) *core.Phase {
	t.Helper()
	ph, err := repo.CreatePhase(context.Background(), core.Phase{
		ProfileID:          profileID,
		Name:               "Preparation",
		RelativeStartMonth: -6,
		RelativeEndMonth:   -1,
		OrderIndex:         1,
	})
	if err != nil {
		t.Fatalf("create phase: %v", err)
	}
	return ph
}

// recordingPublisher captures export requests in memory.
type recordingPublisher struct {
	mu       sync.Mutex
	requests []publishedRequest
	err      error
}

type publishedRequest struct {
	profileID int64
	reason    string
}

func (p *recordingPublisher) PublishExportRequest(_ context.Context, profileID int64, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.requests = append(p.requests, publishedRequest{profileID: profileID, reason: reason})
	return nil
}

func (p *recordingPublisher) published() []publishedRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedRequest(nil), p.requests...)
}
