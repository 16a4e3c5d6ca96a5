package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vrcface/server/internal/domain"
	"github.com/vrcface/server/internal/repository"
	apperrors "github.com/vrcface/server/pkg/util/errorutil"
)

// SocialService handles likes, favorites and follows.
type SocialService struct {
	social   repository.SocialRepository
	models   repository.ModelRepository
	accounts repository.AccountRepository
}

// NewSocialService creates the service.
func NewSocialService(social repository.SocialRepository, models repository.ModelRepository, accounts repository.AccountRepository) *SocialService {
	return &SocialService{social: social, models: models, accounts: accounts}
}

// LikeState is the caller's view of a model's likes.
type LikeState struct {
	Liked     bool
	LikeCount int64
}

// Like records actor's like on a visible model.
func (s *SocialService) Like(ctx context.Context, actor Actor, modelID string) (*LikeState, error) {
	if _, err := s.visibleModel(ctx, actor, modelID); err != nil {
		return nil, err
	}
	count, err := s.social.Like(ctx, actor.ID, modelID)
	if err != nil {
		return nil, err
	}
	return &LikeState{Liked: true, LikeCount: count}, nil
}

// Unlike removes actor's like.
func (s *SocialService) Unlike(ctx context.Context, actor Actor, modelID string) (*LikeState, error) {
	if _, err := s.visibleModel(ctx, actor, modelID); err != nil {
		return nil, err
	}
	count, err := s.social.Unlike(ctx, actor.ID, modelID)
	if err != nil {
		return nil, err
	}
	return &LikeState{Liked: false, LikeCount: count}, nil
}

// LikeStatus reports whether viewer likes the model. Anonymous viewers never do.
func (s *SocialService) LikeStatus(ctx context.Context, viewer Actor, modelID string) (*LikeState, error) {
	model, err := s.visibleModel(ctx, viewer, modelID)
	if err != nil {
		return nil, err
	}
	state := &LikeState{LikeCount: model.LikeCount}
	if viewer.ID == "" {
		return state, nil
	}
	state.Liked, err = s.social.IsLiked(ctx, viewer.ID, modelID)
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Favorite bookmarks a visible model.
func (s *SocialService) Favorite(ctx context.Context, actor Actor, modelID string) error {
	if _, err := s.visibleModel(ctx, actor, modelID); err != nil {
		return err
	}
	return s.social.Favorite(ctx, actor.ID, modelID)
}

// Unfavorite removes a bookmark.
func (s *SocialService) Unfavorite(ctx context.Context, actor Actor, modelID string) error {
	if _, err := s.visibleModel(ctx, actor, modelID); err != nil {
		return err
	}
	return s.social.Unfavorite(ctx, actor.ID, modelID)
}

// FavoriteStatus reports whether viewer bookmarked the model.
func (s *SocialService) FavoriteStatus(ctx context.Context, viewer Actor, modelID string) (bool, error) {
	if _, err := s.visibleModel(ctx, viewer, modelID); err != nil {
		return false, err
	}
	if viewer.ID == "" {
		return false, nil
	}
	return s.social.IsFavorited(ctx, viewer.ID, modelID)
}

// Favorites returns one page of actor's bookmarked public models.
func (s *SocialService) Favorites(ctx context.Context, actor Actor, page domain.Page) ([]domain.Model, domain.Pagination, error) {
	models, err := s.social.ListFavorites(ctx, actor.ID, page)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	total, err := s.social.CountFavorites(ctx, actor.ID)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return models, page.Paginate(total), nil
}

// Follow makes actor follow target.
func (s *SocialService) Follow(ctx context.Context, actor Actor, targetID string) error {
	if err := s.followable(ctx, actor, targetID); err != nil {
		return err
	}
	return s.social.Follow(ctx, actor.ID, targetID)
}

// Unfollow stops actor following target.
func (s *SocialService) Unfollow(ctx context.Context, actor Actor, targetID string) error {
	if err := s.followable(ctx, actor, targetID); err != nil {
		return err
	}
	return s.social.Unfollow(ctx, actor.ID, targetID)
}

// IsFollowing reports whether viewer follows target.
func (s *SocialService) IsFollowing(ctx context.Context, viewer Actor, targetID string) (bool, error) {
	if viewer.ID == "" || viewer.ID == targetID {
		return false, nil
	}
	if _, err := uuid.Parse(targetID); err != nil {
		return false, nil
	}
	return s.social.IsFollowing(ctx, viewer.ID, targetID)
}

func (s *SocialService) followable(ctx context.Context, actor Actor, targetID string) error {
	if targetID == actor.ID {
		return apperrors.NewValidationError("cannot follow yourself", nil)
	}
	if _, err := uuid.Parse(targetID); err != nil {
		return apperrors.NewNotFound("user", map[string]any{"id": targetID})
	}
	if _, err := s.accounts.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"id": targetID})
		}
		return err
	}
	return nil
}

func (s *SocialService) visibleModel(ctx context.Context, viewer Actor, modelID string) (*domain.Model, error) {
	if _, err := uuid.Parse(modelID); err != nil {
		return nil, apperrors.NewNotFound("model", map[string]any{"id": modelID})
	}
	model, err := s.models.GetByID(ctx, modelID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("model", map[string]any{"id": modelID})
		}
		return nil, err
	}
	if !model.IsPublic && !viewer.CanManage(model.OwnerID) {
		return nil, apperrors.NewNotFound("model", map[string]any{"id": modelID})
	}
	return model, nil
}
