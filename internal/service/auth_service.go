package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/vrcface/server/internal/auth"
	"github.com/vrcface/server/internal/config"
	"github.com/vrcface/server/internal/domain"
	"github.com/vrcface/server/internal/persistence"
	"github.com/vrcface/server/internal/repository"
	"github.com/vrcface/server/internal/saga"
	apperrors "github.com/vrcface/server/pkg/util/errorutil"
)

const (
	stepCreateIdentity = "create_identity"
	stepCreateAccount  = "create_account"
)

// AuthService coordinates registration, sign-in and token checks.
type AuthService struct {
	identities  repository.IdentityRepository
	accounts    repository.AccountRepository
	tokenMgr    *auth.TokenManager
	revocations auth.RevocationStore
	verifier    auth.CredentialVerifier
	resolver    auth.RoleResolver
	sagas       *saga.Runner
	bcryptCost  int
	logger      *zap.Logger
	now         func() time.Time
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	Identities  repository.IdentityRepository
	Accounts    repository.AccountRepository
	Tokens      *auth.TokenManager
	Revocations auth.RevocationStore
	Verifier    auth.CredentialVerifier
	Resolver    auth.RoleResolver
	Sagas       *saga.Runner
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies, logger *zap.Logger) *AuthService {
	return &AuthService{
		identities:  deps.Identities,
		accounts:    deps.Accounts,
		tokenMgr:    deps.Tokens,
		revocations: deps.Revocations,
		verifier:    deps.Verifier,
		resolver:    deps.Resolver,
		sagas:       deps.Sagas,
		bcryptCost:  cfg.Auth.BcryptCost,
		logger:      logger,
		now:         time.Now,
	}
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Email    string
	Password string
	Username string
}

// AuthResult is a signed-in identity with its account and fresh session.
type AuthResult struct {
	Identity *domain.Identity
	Account  *domain.Account
	Session  *domain.Session
}

// Register creates the identity and its account record. The two writes form a
// saga: if the account insert fails the identity is deleted again.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	details := map[string]any{}
	if !domain.ValidEmail(email) {
		details["email"] = "must be a valid email address"
	}
	if len(in.Password) < auth.MinPasswordLength {
		details["password"] = "must be at least 6 characters"
	}
	if !domain.ValidUsername(username) {
		details["username"] = "must be 3-30 letters, digits or underscores"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid registration", details)
	}

	taken, err := s.accounts.UsernameExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflict("username already exists", nil)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	identity := &domain.Identity{ID: uuid.NewString(), Email: email, PasswordHash: hash}
	account := &domain.Account{
		ID:          identity.ID,
		Username:    username,
		DisplayName: username,
		Role:        domain.RoleUser,
	}

	err = s.sagas.Run(ctx, "register",
		saga.Step{
			Name: stepCreateIdentity,
			Do: func(ctx context.Context) error {
				if err := s.identities.Create(ctx, identity); err != nil {
					if persistence.IsUniqueViolation(err) {
						return apperrors.NewConflict("email already registered", nil)
					}
					return err
				}
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return s.identities.Delete(ctx, identity.ID)
			},
		},
		saga.Step{
			Name: stepCreateAccount,
			Do: func(ctx context.Context) error {
				if err := s.accounts.Create(ctx, account); err != nil {
					if persistence.IsUniqueViolation(err) {
						return apperrors.NewConflict("username already exists", nil)
					}
					return err
				}
				return nil
			},
		},
	)
	if err != nil {
		var sagaErr *saga.Error
		if errors.As(err, &sagaErr) && len(sagaErr.Unrecovered) > 0 {
			s.logger.Error("registration left an orphaned identity",
				zap.String("identity_id", identity.ID), zap.Strings("unrecovered", sagaErr.Unrecovered))
		}
		return nil, err
	}

	session, err := s.tokenMgr.GenerateToken(identity)
	if err != nil {
		return nil, err
	}
	s.logger.Info("account registered", zap.String("identity_id", identity.ID), zap.String("username", username))
	return &AuthResult{Identity: identity, Account: account, Session: session}, nil
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	identity, err := s.identities.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := auth.ComparePassword(identity.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	account, err := s.accounts.GetByID(ctx, identity.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	session, err := s.tokenMgr.GenerateToken(identity)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Identity: identity, Account: account, Session: session}, nil
}

// Logout revokes token until it would have expired on its own.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		// already unusable
		return nil
	}
	return s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time.Sub(s.now()))
}

// Verification is the outcome of a token check.
type Verification struct {
	Identity *domain.Identity
	Role     domain.Role
}

// Verify checks token and resolves the holder's role. Every rejection is
// auth.ErrInvalidCredential or auth.ErrMissingCredential.
func (s *AuthService) Verify(ctx context.Context, token string) (*Verification, error) {
	if strings.TrimSpace(token) == "" {
		return nil, auth.ErrMissingCredential
	}
	identity, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	return &Verification{Identity: identity, Role: s.resolver.Resolve(ctx, identity.ID)}, nil
}

// Me returns the caller's identity and account. The account is nil when the
// record is missing.
func (s *AuthService) Me(ctx context.Context, identityID string) (*domain.Identity, *domain.Account, error) {
	identity, err := s.identities.GetByID(ctx, identityID)
	if err != nil {
		return nil, nil, err
	}
	account, err := s.accounts.GetByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return identity, nil, nil
		}
		return nil, nil, err
	}
	return identity, account, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, identityID, currentPassword, newPassword string) error {
	if len(newPassword) < auth.MinPasswordLength {
		return apperrors.NewValidationError("invalid password", map[string]any{"new_password": "must be at least 6 characters"})
	}
	identity, err := s.identities.GetByID(ctx, identityID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(identity.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.identities.UpdatePassword(ctx, identityID, hash)
}
