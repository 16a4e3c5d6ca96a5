package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/vrcface/server/internal/domain"
)

// RoleResolver looks up the stored role of an identity.
type RoleResolver interface {
	Resolve(ctx context.Context, identityID string) domain.Role
}

// AccountReader is the subset of the account repository the resolver needs.
type AccountReader interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
}

// AccountRoleResolver reads the role column of the account record.
type AccountRoleResolver struct {
	accounts AccountReader
	logger   *zap.Logger
}

// NewAccountRoleResolver constructs the resolver.
func NewAccountRoleResolver(accounts AccountReader, logger *zap.Logger) *AccountRoleResolver {
	return &AccountRoleResolver{accounts: accounts, logger: logger}
}

// Resolve never fails: a missing or unreadable account resolves to
// domain.RoleUnknown, which carries user privileges only.
func (r *AccountRoleResolver) Resolve(ctx context.Context, identityID string) domain.Role {
	if identityID == "" {
		return domain.RoleUnknown
	}
	account, err := r.accounts.GetByID(ctx, identityID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("role lookup failed", zap.String("identity_id", identityID), zap.Error(err))
		}
		return domain.RoleUnknown
	}
	if account == nil {
		return domain.RoleUnknown
	}
	return account.Role
}
