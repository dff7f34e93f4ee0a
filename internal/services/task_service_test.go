package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"relocationos/internal/core"
)

func TestTaskService_CreateTaskChecksOwnership(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewTaskService(repo)
	ctx := context.Background()

	owner := seedProfile(t, repo)
	phase := seedPhase(t, repo, owner.ID)

	other, err := repo.CreateProfile(ctx, core.Profile{
		RelocationName:     "Oslo move",
		OriginCountry:      "DK",
		DestinationCountry: "NO",
		FamilySize:         1,
		PrimaryCurrency:    "EUR",
	})
	if err != nil {
		t.Fatalf("create second profile: %v", err)
	}

	_, err = svc.CreateTask(ctx, core.Task{
		ProfileID: other.ID,
		PhaseID:   phase.ID,
		Title:     "Wrong profile",
	})
	if !errors.Is(err, ErrPhaseOwnership) {
		t.Errorf("CreateTask() error = %v, want ErrPhaseOwnership", err)
	}

	_, err = svc.CreateTask(ctx, core.Task{
		ProfileID: owner.ID,
		PhaseID:   999,
		Title:     "Missing phase",
	})
	if !errors.Is(err, ErrPhaseNotFound) {
		t.Errorf("CreateTask() error = %v, want ErrPhaseNotFound", err)
	}
}

func TestTaskService_CreateTaskDefaultsStatus(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewTaskService(repo)

	profile := seedProfile(t, repo)
	phase := seedPhase(t, repo, profile.ID)

	created, err := svc.CreateTask(context.Background(), core.Task{
		ProfileID: profile.ID,
		PhaseID:   phase.ID,
		Title:     "Get visa photos",
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if created.Status != core.TaskNotStarted {
		t.Errorf("CreateTask() status = %v, want %v", created.Status, core.TaskNotStarted)
	}
}

func TestTaskService_MarkCompleted(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewTaskService(repo)
	svc.now = func() time.Time { return time.Date(2026, 4, 20, 15, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	profile := seedProfile(t, repo)
	phase := seedPhase(t, repo, profile.ID)
	task, err := svc.CreateTask(ctx, core.Task{
		ProfileID: profile.ID,
		PhaseID:   phase.ID,
		Title:     "Sign lease",
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	t.Run("explicit date", func(t *testing.T) {
		when := core.NewDate(2026, 4, 18)
		completed, err := svc.MarkCompleted(ctx, task.ID, when)
		if err != nil {
			t.Fatalf("MarkCompleted() error = %v", err)
		}
		if completed.Status != core.TaskCompleted {
			t.Errorf("status = %v, want completed", completed.Status)
		}
		if completed.CompletedDate == nil || completed.CompletedDate.String() != "2026-04-18" {
			t.Errorf("completed date = %v, want 2026-04-18", completed.CompletedDate)
		}
	})

	t.Run("zero date defaults to today", func(t *testing.T) {
		completed, err := svc.MarkCompleted(ctx, task.ID, core.Date{})
		if err != nil {
			t.Fatalf("MarkCompleted() error = %v", err)
		}
		if completed.CompletedDate == nil || completed.CompletedDate.String() != "2026-04-20" {
			t.Errorf("completed date = %v, want 2026-04-20", completed.CompletedDate)
		}
	})

	t.Run("missing task", func(t *testing.T) {
		_, err := svc.MarkCompleted(ctx, 999, core.Date{})
		if !errors.Is(err, ErrTaskNotFound) {
			t.Errorf("MarkCompleted() error = %v, want ErrTaskNotFound", err)
		}
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewTaskService(repo)
	ctx := context.Background()

	profile := seedProfile(t, repo)
	phase := seedPhase(t, repo, profile.ID)
	task, err := svc.CreateTask(ctx, core.Task{
		ProfileID: profile.ID,
		PhaseID:   phase.ID,
		Title:     "Cancel utilities",
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	if err := svc.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if err := svc.DeleteTask(ctx, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("second DeleteTask() error = %v, want ErrTaskNotFound", err)
	}
}
