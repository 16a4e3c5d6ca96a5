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
	"github.com/vrcface/server/internal/persistence"
	"github.com/vrcface/server/internal/repository"
	apperrors "github.com/vrcface/server/pkg/util/errorutil"
)

// AccountService manages account records for owners and admins.
type AccountService struct {
	accounts   repository.AccountRepository
	sanitizer  *content.Sanitizer
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAccountService creates the service.
func NewAccountService(accounts repository.AccountRepository, sanitizer *content.Sanitizer, dispatcher events.Dispatcher, logger *zap.Logger) *AccountService {
	return &AccountService{accounts: accounts, sanitizer: sanitizer, dispatcher: dispatcher, logger: logger}
}

// ProfileInput carries the fields an owner may change.
type ProfileInput struct {
	DisplayName *string
	AvatarURL   *string
	Bio         *string
}

// GetProfile returns the public profile for username.
func (s *AccountService) GetProfile(ctx context.Context, username string) (*domain.Profile, error) {
	profile, err := s.accounts.GetProfile(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"username": username})
		}
		return nil, err
	}
	return profile, nil
}

// UpdateProfile applies owner-editable fields to the caller's account.
func (s *AccountService) UpdateProfile(ctx context.Context, actor Actor, in ProfileInput) (*domain.Account, error) {
	update := domain.AccountUpdate{DisplayName: in.DisplayName, AvatarURL: in.AvatarURL, Bio: in.Bio}
	if details := s.cleanProfileFields(&update); len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid profile", details)
	}
	if update.Empty() {
		return nil, apperrors.NewValidationError("no updates provided", nil)
	}

	account, err := s.load(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	update.Apply(account)
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccounts returns one page of accounts matching query.
func (s *AccountService) ListAccounts(ctx context.Context, query string, role domain.Role, page domain.Page) ([]domain.Account, domain.Pagination, error) {
	filter := repository.AccountFilter{Query: query, Role: role, Page: page}
	accounts, err := s.accounts.List(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	total, err := s.accounts.Count(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return accounts, page.Paginate(total), nil
}

// AdminUpdate applies an admin's changes to target. Admins cannot change
// their own role.
func (s *AccountService) AdminUpdate(ctx context.Context, actor Actor, targetID string, update domain.AccountUpdate) (*domain.Account, error) {
	if strings.TrimSpace(targetID) == "" {
		return nil, apperrors.NewValidationError("userId is required", nil)
	}
	if update.Empty() {
		return nil, apperrors.NewValidationError("no updates provided", nil)
	}
	if update.Role != nil {
		if targetID == actor.ID {
			return nil, apperrors.NewValidationError("cannot change your own role", nil)
		}
		if !update.Role.Valid() {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": "must be user, moderator or admin"})
		}
	}
	if update.Username != nil && !domain.ValidUsername(*update.Username) {
		return nil, apperrors.NewValidationError("invalid username", map[string]any{"username": "must be 3-30 letters, digits or underscores"})
	}
	details := s.cleanProfileFields(&update)
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid profile", details)
	}

	account, err := s.load(ctx, targetID)
	if err != nil {
		return nil, err
	}
	oldRole := account.Role
	update.Apply(account)

	if err := s.accounts.Update(ctx, account); err != nil {
		if persistence.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("username already exists", nil)
		}
		return nil, err
	}

	if update.Role != nil && *update.Role != oldRole {
		s.publish(ctx, events.New(events.EventAccountRoleChanged, actor.ID, account.ID,
			events.RoleChangedPayload{OldRole: oldRole, NewRole: account.Role}))
	} else {
		s.publish(ctx, events.New(events.EventAccountUpdated, actor.ID, account.ID, nil))
	}
	return account, nil
}

// AdminDelete removes target's account record and identity. Admins cannot
// delete themselves.
func (s *AccountService) AdminDelete(ctx context.Context, actor Actor, targetID string) error {
	if strings.TrimSpace(targetID) == "" {
		return apperrors.NewValidationError("userId is required", nil)
	}
	if targetID == actor.ID {
		return apperrors.NewValidationError("cannot delete your own account", nil)
	}

	account, err := s.load(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, targetID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"userId": targetID})
		}
		return err
	}
	s.publish(ctx, events.New(events.EventAccountDeleted, actor.ID, targetID,
		events.AccountDeletedPayload{Username: account.Username}))
	return nil
}

// cleanProfileFields sanitises the set profile fields of update in place and
// reports the ones that are out of bounds.
func (s *AccountService) cleanProfileFields(update *domain.AccountUpdate) map[string]any {
	details := map[string]any{}
	if update.DisplayName != nil {
		v := s.sanitizer.Plain(*update.DisplayName)
		if v == "" || domain.TooLong(v, domain.MaxDisplayNameLength) {
			details["display_name"] = "must be 1-50 characters"
		}
		update.DisplayName = &v
	}
	if update.Bio != nil {
		v := s.sanitizer.Plain(*update.Bio)
		if domain.TooLong(v, domain.MaxBioLength) {
			details["bio"] = "must be at most 500 characters"
		}
		update.Bio = &v
	}
	if update.AvatarURL != nil {
		v := strings.TrimSpace(*update.AvatarURL)
		if !content.ValidAssetURL(v) {
			details["avatar_url"] = "must be an absolute http(s) URL"
		}
		update.AvatarURL = &v
	}
	return details
}

// load fetches an account by id. Ids that are not UUIDs cannot exist.
func (s *AccountService) load(ctx context.Context, id string) (*domain.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("user", map[string]any{"userId": id})
	}
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"userId": id})
		}
		return nil, err
	}
	return account, nil
}

func (s *AccountService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("audit publish failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
