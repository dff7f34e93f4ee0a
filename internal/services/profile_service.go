package services

import (
	"context"
	"fmt"
	"log/slog"

	"relocationos/internal/amqp"
	"relocationos/internal/core"
	"relocationos/internal/storage"
)

// ExportPublisher pushes export requests onto the async pipeline. A nil
// publisher disables the pipeline; user operations never depend on it.
type ExportPublisher interface {
	PublishExportRequest(ctx context.Context, profileID int64, reason string) error
}

// ProfileService orchestrates profile, phase, and category operations.
type ProfileService struct {
	storage   *storage.SQLiteRepository
	publisher ExportPublisher
}

func NewProfileService(storage *storage.SQLiteRepository, publisher ExportPublisher) *ProfileService {
	return &ProfileService{storage: storage, publisher: publisher}
}

func (s *ProfileService) CreateProfile(ctx context.Context, p core.Profile) (*core.Profile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	created, err := s.storage.CreateProfile(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return created, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, id int64) (*core.Profile, error) {
	return s.storage.GetProfile(ctx, id)
}

func (s *ProfileService) ListProfiles(ctx context.Context) ([]core.Profile, error) {
	return s.storage.ListProfiles(ctx)
}

func (s *ProfileService) UpdateProfile(ctx context.Context, id int64, u core.ProfileUpdate) (*core.Profile, error) {
	updated, err := s.storage.UpdateProfile(ctx, id, u)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if updated == nil {
		return nil, ErrProfileNotFound
	}
	return updated, nil
}

// DeleteProfile removes the profile and everything under it (cascades),
// then tells the export pipeline to drop the profile's mirrors.
func (s *ProfileService) DeleteProfile(ctx context.Context, id int64) error {
	found, err := s.storage.DeleteProfile(ctx, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if !found {
		return ErrProfileNotFound
	}
	s.publish(ctx, id, amqp.ReasonProfileDeleted)
	return nil
}

// CreatePhase adds a phase to a profile. A non-positive order index asks
// storage for the next free position.
func (s *ProfileService) CreatePhase(ctx context.Context, p core.Phase) (*core.Phase, error) {
	profile, err := s.storage.GetProfile(ctx, p.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	if p.OrderIndex <= 0 {
		next, err := s.storage.NextOrderIndex(ctx, p.ProfileID)
		if err != nil {
			return nil, fmt.Errorf("suggest order index: %w", err)
		}
		p.OrderIndex = next
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	created, err := s.storage.CreatePhase(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create phase: %w", err)
	}
	return created, nil
}

func (s *ProfileService) GetPhase(ctx context.Context, id int64) (*core.Phase, error) {
	return s.storage.GetPhase(ctx, id)
}

func (s *ProfileService) ListPhases(ctx context.Context, profileID int64) ([]core.Phase, error) {
	return s.storage.ListPhases(ctx, profileID)
}

// SuggestOrderIndex returns the next free phase position for a profile.
func (s *ProfileService) SuggestOrderIndex(ctx context.Context, profileID int64) (int, error) {
	return s.storage.NextOrderIndex(ctx, profileID)
}

func (s *ProfileService) UpdatePhase(ctx context.Context, id int64, u core.PhaseUpdate) (*core.Phase, error) {
	updated, err := s.storage.UpdatePhase(ctx, id, u)
	if err != nil {
		return nil, fmt.Errorf("update phase: %w", err)
	}
	if updated == nil {
		return nil, ErrPhaseNotFound
	}
	return updated, nil
}

func (s *ProfileService) DeletePhase(ctx context.Context, id int64) error {
	found, err := s.storage.DeletePhase(ctx, id)
	if err != nil {
		return fmt.Errorf("delete phase: %w", err)
	}
	if !found {
		return ErrPhaseNotFound
	}
	return nil
}

func (s *ProfileService) CreateCategory(ctx context.Context, c core.Category) (*core.Category, error) {
	profile, err := s.storage.GetProfile(ctx, c.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	created, err := s.storage.CreateCategory(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

func (s *ProfileService) ListCategories(ctx context.Context, profileID int64) ([]core.Category, error) {
	return s.storage.ListCategories(ctx, profileID)
}

func (s *ProfileService) UpdateCategory(ctx context.Context, id int64, u core.CategoryUpdate) (*core.Category, error) {
	updated, err := s.storage.UpdateCategory(ctx, id, u)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	if updated == nil {
		return nil, ErrCategoryNotFound
	}
	return updated, nil
}

func (s *ProfileService) DeleteCategory(ctx context.Context, id int64) error {
	found, err := s.storage.DeleteCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if !found {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *ProfileService) publish(ctx context.Context, profileID int64, reason string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExportRequest(ctx, profileID, reason); err != nil {
		// Best effort: the user operation already succeeded.
		slog.ErrorContext(ctx, "Failed to publish export request",
			"component", "services",
			"profile_id", profileID,
			"reason", reason,
			"error", err)
	}
}
