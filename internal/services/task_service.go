package services

import (
	"context"
	"fmt"
	"time"

	"relocationos/internal/core"
	"relocationos/internal/storage"
)

// TaskService orchestrates task operations, enforcing that tasks always
// hang off a phase of their own profile.
type TaskService struct {
	storage *storage.SQLiteRepository
	now     func() time.Time
}

func NewTaskService(storage *storage.SQLiteRepository) *TaskService {
	return &TaskService{storage: storage, now: time.Now}
}

func (s *TaskService) CreateTask(ctx context.Context, t core.Task) (*core.Task, error) {
	if err := s.checkPhaseOwnership(ctx, t.PhaseID, t.ProfileID); err != nil {
		return nil, err
	}
	if t.Status == "" {
		t.Status = core.TaskNotStarted
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	created, err := s.storage.CreateTask(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

func (s *TaskService) GetTask(ctx context.Context, id int64) (*core.Task, error) {
	return s.storage.GetTask(ctx, id)
}

func (s *TaskService) ListTasks(ctx context.Context, profileID int64, f storage.TaskFilter) ([]core.Task, error) {
	return s.storage.ListTasks(ctx, profileID, f)
}

// ListIncompleteTasks returns the dashboard's cross-profile task list.
func (s *TaskService) ListIncompleteTasks(ctx context.Context, limit int) ([]core.Task, error) {
	return s.storage.ListIncompleteTasks(ctx, limit)
}

func (s *TaskService) UpdateTask(ctx context.Context, id int64, u core.TaskUpdate) (*core.Task, error) {
	updated, err := s.storage.UpdateTask(ctx, id, u)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if updated == nil {
		return nil, ErrTaskNotFound
	}
	return updated, nil
}

// MarkCompleted sets the task to completed with the given completion
// date. The zero date means "today".
func (s *TaskService) MarkCompleted(ctx context.Context, id int64, when core.Date) (*core.Task, error) {
	if when.IsEmpty() {
		when = core.DateOf(s.now())
	}
	status := core.TaskCompleted
	return s.UpdateTask(ctx, id, core.TaskUpdate{
		Status:        &status,
		CompletedDate: &when,
	})
}

func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	found, err := s.storage.DeleteTask(ctx, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if !found {
		return ErrTaskNotFound
	}
	return nil
}

func (s *TaskService) checkPhaseOwnership(ctx context.Context, phaseID, profileID int64) error {
	phase, err := s.storage.GetPhase(ctx, phaseID)
	if err != nil {
		return fmt.Errorf("load phase: %w", err)
	}
	if phase == nil {
		return ErrPhaseNotFound
	}
	if phase.ProfileID != profileID {
		return ErrPhaseOwnership
	}
	return nil
}
