package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/vrcface/server/internal/content"
	"github.com/vrcface/server/internal/domain"
	"github.com/vrcface/server/internal/events"
	"github.com/vrcface/server/internal/repository"
	apperrors "github.com/vrcface/server/pkg/util/errorutil"
)

// ModelService manages shared models.
type ModelService struct {
	models     repository.ModelRepository
	sanitizer  *content.Sanitizer
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewModelService creates the service.
func NewModelService(models repository.ModelRepository, sanitizer *content.Sanitizer, dispatcher events.Dispatcher, logger *zap.Logger) *ModelService {
	return &ModelService{models: models, sanitizer: sanitizer, dispatcher: dispatcher, logger: logger}
}

// ModelInput carries model fields. Nil fields are left unchanged on update.
type ModelInput struct {
	Title        *string
	Description  *string
	FileURL      *string
	ThumbnailURL *string
	IsPublic     *bool
	Tags         []string
	SetTags      bool
}

// ModelQuery captures public list parameters.
type ModelQuery struct {
	OwnerID string
	Tag     string
	Query   string
	Sort    domain.ModelSort
	Page    domain.Page
}

// Create stores a new model owned by actor.
func (s *ModelService) Create(ctx context.Context, actor Actor, in ModelInput) (*domain.Model, error) {
	if in.Title == nil || in.FileURL == nil {
		return nil, apperrors.NewValidationError("title and file_url are required", nil)
	}
	model := &domain.Model{ID: uuid.NewString(), OwnerID: actor.ID, IsPublic: true}
	in.SetTags = true
	if err := s.apply(model, in); err != nil {
		return nil, err
	}
	if err := s.models.Create(ctx, model); err != nil {
		return nil, err
	}
	return model, nil
}

// Get returns a model. Private models are visible to their owner and admins only.
func (s *ModelService) Get(ctx context.Context, viewer Actor, id string) (*domain.Model, error) {
	model, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !model.IsPublic && !viewer.CanManage(model.OwnerID) {
		return nil, apperrors.NewNotFound("model", map[string]any{"id": id})
	}
	return model, nil
}

// List returns one page of public models.
func (s *ModelService) List(ctx context.Context, q ModelQuery) ([]domain.Model, domain.Pagination, error) {
	return s.list(ctx, q, false)
}

// ListAll returns one page of models including private ones.
func (s *ModelService) ListAll(ctx context.Context, q ModelQuery) ([]domain.Model, domain.Pagination, error) {
	return s.list(ctx, q, true)
}

func (s *ModelService) list(ctx context.Context, q ModelQuery, includePrivate bool) ([]domain.Model, domain.Pagination, error) {
	if q.Sort != domain.ModelSortPopular {
		q.Sort = domain.ModelSortLatest
	}
	filter := repository.ModelFilter{
		OwnerID:        q.OwnerID,
		Tag:            q.Tag,
		Query:          q.Query,
		Sort:           q.Sort,
		IncludePrivate: includePrivate,
		Page:           q.Page,
	}
	models, err := s.models.List(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	total, err := s.models.Count(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return models, q.Page.Paginate(total), nil
}

// Update changes a model. Only the owner or an admin may do so.
func (s *ModelService) Update(ctx context.Context, actor Actor, id string, in ModelInput) (*domain.Model, error) {
	model, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(model.OwnerID) {
		return nil, apperrors.NewForbidden("not allowed to modify this model")
	}
	if err := s.apply(model, in); err != nil {
		return nil, err
	}
	if err := s.models.Update(ctx, model); err != nil {
		return nil, err
	}
	return model, nil
}

// Delete removes a model. Only the owner or an admin may do so; admin removals
// of other people's models are audited.
func (s *ModelService) Delete(ctx context.Context, actor Actor, id string) error {
	model, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanManage(model.OwnerID) {
		return apperrors.NewForbidden("not allowed to delete this model")
	}
	if err := s.models.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("model", map[string]any{"id": id})
		}
		return err
	}
	if actor.ID != model.OwnerID && s.dispatcher != nil {
		event := events.New(events.EventModelRemoved, actor.ID, model.ID,
			events.ModelRemovedPayload{OwnerID: model.OwnerID, Title: model.Title})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("audit publish failed", zap.String("event_type", string(event.Type)), zap.Error(err))
		}
	}
	return nil
}

// Download counts a download of a public model and returns its file URL and
// the new count.
func (s *ModelService) Download(ctx context.Context, id string) (string, int64, error) {
	model, err := s.load(ctx, id)
	if err != nil {
		return "", 0, err
	}
	if !model.IsPublic {
		return "", 0, apperrors.NewNotFound("model", map[string]any{"id": id})
	}
	count, err := s.models.IncrementDownloads(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", 0, apperrors.NewNotFound("model", map[string]any{"id": id})
		}
		return "", 0, err
	}
	return model.FileURL, count, nil
}

func (s *ModelService) load(ctx context.Context, id string) (*domain.Model, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("model", map[string]any{"id": id})
	}
	model, err := s.models.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("model", map[string]any{"id": id})
		}
		return nil, err
	}
	return model, nil
}

func (s *ModelService) apply(model *domain.Model, in ModelInput) error {
	details := map[string]any{}

	if in.Title != nil {
		v := s.sanitizer.Plain(*in.Title)
		if v == "" || domain.TooLong(v, domain.MaxTitleLength) {
			details["title"] = "must be 1-100 characters"
		}
		model.Title = v
	}
	if in.Description != nil {
		v := s.sanitizer.Rich(*in.Description)
		if domain.TooLong(v, domain.MaxDescriptionLength) {
			details["description"] = "must be at most 2000 characters"
		}
		model.Description = v
	}
	if in.FileURL != nil {
		v := strings.TrimSpace(*in.FileURL)
		if v == "" || !content.ValidAssetURL(v) {
			details["file_url"] = "must be an absolute http(s) URL"
		}
		model.FileURL = v
	}
	if in.ThumbnailURL != nil {
		v := strings.TrimSpace(*in.ThumbnailURL)
		if !content.ValidAssetURL(v) {
			details["thumbnail_url"] = "must be an absolute http(s) URL"
		}
		model.ThumbnailURL = v
	}
	if in.IsPublic != nil {
		model.IsPublic = *in.IsPublic
	}
	if in.SetTags {
		tags, ok := normalizeTags(in.Tags)
		if !ok {
			details["tags"] = "at most 10 tags of 1-32 characters"
		}
		model.Tags = tags
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("invalid model", details)
	}
	return nil
}

func normalizeTags(raw []string) ([]string, bool) {
	seen := make(map[string]bool, len(raw))
	tags := make([]string, 0, len(raw))
	for _, r := range raw {
		name := domain.NormalizeTag(r)
		if name == "" {
			return nil, false
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		tags = append(tags, name)
	}
	if len(tags) > domain.MaxTagsPerModel {
		return nil, false
	}
	return tags, true
}
