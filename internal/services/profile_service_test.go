package services

import (
	"context"
	"errors"
	"testing"

	"relocationos/internal/amqp"
	"relocationos/internal/core"
)

func TestProfileService_CreateProfileValidates(t *testing.T) {
	svc := NewProfileService(newTestRepo(t), nil)

	_, err := svc.CreateProfile(context.Background(), core.Profile{
		RelocationName:     "",
		OriginCountry:      "IT",
		DestinationCountry: "NL",
		FamilySize:         1,
		PrimaryCurrency:    "EUR",
	})
	if !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("CreateProfile() error = %v, want ErrEmptyName", err)
	}
}

func TestProfileService_DeleteProfilePublishesRemoval(t *testing.T) {
	repo := newTestRepo(t)
	pub := &recordingPublisher{}
	svc := NewProfileService(repo, pub)
	ctx := context.Background()

	profile := seedProfile(t, repo)
	if err := svc.DeleteProfile(ctx, profile.ID); err != nil {
		t.Fatalf("DeleteProfile() error = %v", err)
	}

	reqs := pub.published()
	if len(reqs) != 1 {
		t.Fatalf("published %d requests, want 1", len(reqs))
	}
	if reqs[0].profileID != profile.ID || reqs[0].reason != amqp.ReasonProfileDeleted {
		t.Errorf("published = %+v, want profile %d reason %s", reqs[0], profile.ID, amqp.ReasonProfileDeleted)
	}

	if err := svc.DeleteProfile(ctx, profile.ID); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("second DeleteProfile() error = %v, want ErrProfileNotFound", err)
	}
}

func TestProfileService_DeleteProfileSurvivesPublisherFailure(t *testing.T) {
	repo := newTestRepo(t)
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewProfileService(repo, pub)
	ctx := context.Background()

	profile := seedProfile(t, repo)
	if err := svc.DeleteProfile(ctx, profile.ID); err != nil {
		t.Errorf("DeleteProfile() should not fail on publish error, got %v", err)
	}
}

func TestProfileService_CreatePhaseSuggestsOrderIndex(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewProfileService(repo, nil)
	ctx := context.Background()

	profile := seedProfile(t, repo)
	seedPhase(t, repo, profile.ID) // order 1

	created, err := svc.CreatePhase(ctx, core.Phase{
		ProfileID:          profile.ID,
		Name:               "Arrival",
		RelativeStartMonth: 0,
		RelativeEndMonth:   3,
		// OrderIndex left zero: auto-suggest.
	})
	if err != nil {
		t.Fatalf("CreatePhase() error = %v", err)
	}
	if created.OrderIndex != 2 {
		t.Errorf("CreatePhase() order index = %d, want 2", created.OrderIndex)
	}
}

func TestProfileService_CreatePhaseRejectsMissingProfile(t *testing.T) {
	svc := NewProfileService(newTestRepo(t), nil)

	_, err := svc.CreatePhase(context.Background(), core.Phase{
		ProfileID:          999,
		Name:               "Orphan",
		RelativeStartMonth: 0,
		RelativeEndMonth:   1,
	})
	if !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("CreatePhase() error = %v, want ErrProfileNotFound", err)
	}
}

func TestProfileService_CreatePhaseRejectsBadWindow(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewProfileService(repo, nil)
	profile := seedProfile(t, repo)

	_, err := svc.CreatePhase(context.Background(), core.Phase{
		ProfileID:          profile.ID,
		Name:               "Backwards",
		RelativeStartMonth: 3,
		RelativeEndMonth:   1,
	})
	if !errors.Is(err, core.ErrPhaseWindow) {
		t.Errorf("CreatePhase() error = %v, want ErrPhaseWindow", err)
	}
}

func TestProfileService_CategoryLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewProfileService(repo, nil)
	ctx := context.Background()

	profile := seedProfile(t, repo)

	created, err := svc.CreateCategory(ctx, core.Category{
		ProfileID: profile.ID,
		Name:      "housing",
	})
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}

	newName := "housing & utilities"
	updated, err := svc.UpdateCategory(ctx, created.ID, core.CategoryUpdate{Name: &newName})
	if err != nil {
		t.Fatalf("UpdateCategory() error = %v", err)
	}
	if updated.Name != newName {
		t.Errorf("UpdateCategory() name = %q, want %q", updated.Name, newName)
	}

	if err := svc.DeleteCategory(ctx, created.ID); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}
	if err := svc.DeleteCategory(ctx, created.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("second DeleteCategory() error = %v, want ErrCategoryNotFound", err)
	}
}
