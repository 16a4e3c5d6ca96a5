package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/vrcface/server/internal/domain"
	"github.com/vrcface/server/internal/events"
	"github.com/vrcface/server/internal/persistence"
	"github.com/vrcface/server/internal/repository"
	apperrors "github.com/vrcface/server/pkg/util/errorutil"
)

// TagService manages the tag vocabulary.
type TagService struct {
	tags       repository.TagRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewTagService creates the service.
func NewTagService(tags repository.TagRepository, dispatcher events.Dispatcher, logger *zap.Logger) *TagService {
	return &TagService{tags: tags, dispatcher: dispatcher, logger: logger}
}

// List returns every tag with its usage count.
func (s *TagService) List(ctx context.Context) ([]domain.Tag, error) {
	return s.tags.List(ctx)
}

// Create adds a tag.
func (s *TagService) Create(ctx context.Context, actor Actor, name string) (*domain.Tag, error) {
	normalized := domain.NormalizeTag(name)
	if normalized == "" {
		return nil, apperrors.NewValidationError("invalid tag name", map[string]any{"name": "must be 1-32 characters"})
	}
	tag := &domain.Tag{ID: uuid.NewString(), Name: normalized}
	if err := s.tags.Create(ctx, tag); err != nil {
		if persistence.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("tag already exists", map[string]any{"name": normalized})
		}
		return nil, err
	}
	s.publish(ctx, events.New(events.EventTagCreated, actor.ID, tag.ID, events.TagPayload{Name: tag.Name}))
	return tag, nil
}

// Rename changes a tag's name.
func (s *TagService) Rename(ctx context.Context, actor Actor, id, name string) (*domain.Tag, error) {
	normalized := domain.NormalizeTag(name)
	if normalized == "" {
		return nil, apperrors.NewValidationError("invalid tag name", map[string]any{"name": "must be 1-32 characters"})
	}
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	tag, err := s.tags.Rename(ctx, id, normalized)
	if err != nil {
		if persistence.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("tag already exists", map[string]any{"name": normalized})
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("tag", map[string]any{"id": id})
		}
		return nil, err
	}
	tag.UsageCount = existing.UsageCount
	s.publish(ctx, events.New(events.EventTagRenamed, actor.ID, tag.ID,
		events.TagPayload{Name: tag.Name, OldName: existing.Name}))
	return tag, nil
}

// Delete removes a tag and its model links.
func (s *TagService) Delete(ctx context.Context, actor Actor, id string) error {
	existing, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tags.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("tag", map[string]any{"id": id})
		}
		return err
	}
	s.publish(ctx, events.New(events.EventTagDeleted, actor.ID, id, events.TagPayload{Name: existing.Name}))
	return nil
}

func (s *TagService) load(ctx context.Context, id string) (*domain.Tag, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("tag", map[string]any{"id": id})
	}
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("tag", map[string]any{"id": id})
		}
		return nil, err
	}
	return tag, nil
}

func (s *TagService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("audit publish failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
