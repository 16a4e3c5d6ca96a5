package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vrcface/server/internal/auth"
	"github.com/vrcface/server/internal/config"
	"github.com/vrcface/server/internal/domain"
	"github.com/vrcface/server/internal/saga"
	apperrors "github.com/vrcface/server/pkg/util/errorutil"
)

type memRevocations struct {
	ttls map[string]time.Duration
}

func (m *memRevocations) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	m.ttls[tokenID] = ttl
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := m.ttls[tokenID]
	return ok, nil
}

type stubVerifier struct {
	identity *domain.Identity
	err      error
}

func (s stubVerifier) Verify(context.Context, string) (*domain.Identity, error) {
	return s.identity, s.err
}

type stubResolver domain.Role

func (s stubResolver) Resolve(context.Context, string) domain.Role { return domain.Role(s) }

func newAuthService(identities *fakeIdentityRepo, accounts *fakeAccountRepo) (*AuthService, *memRevocations) {
	revocations := &memRevocations{ttls: map[string]time.Duration{}}
	svc := NewAuthService(config.Config{Auth: config.AuthConfig{BcryptCost: 4}}, AuthDependencies{
		Identities:  identities,
		Accounts:    accounts,
		Tokens:      auth.NewTokenManager("secret", 60),
		Revocations: revocations,
		Verifier:    stubVerifier{err: auth.ErrInvalidCredential},
		Resolver:    stubResolver(domain.RoleUnknown),
		Sagas:       saga.NewRunner(3, 0, zap.NewNop(), nil),
	}, zap.NewNop())
	return svc, revocations
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	return apperrors.ToDomainError(err).HTTPStatus
}

var validRegistration = RegisterInput{Email: "Face@Example.com", Password: "secret1", Username: "face_maker"}

func TestRegisterCreatesIdentityAndAccount(t *testing.T) {
	var createdIdentity *domain.Identity
	var createdAccount *domain.Account
	svc, _ := newAuthService(
		&fakeIdentityRepo{create: func(_ context.Context, i *domain.Identity) error { createdIdentity = i; return nil }},
		&fakeAccountRepo{create: func(_ context.Context, a *domain.Account) error { createdAccount = a; return nil }},
	)

	result, err := svc.Register(context.Background(), validRegistration)
	require.NoError(t, err)
	require.NotNil(t, createdIdentity)
	require.NotNil(t, createdAccount)
	assert.Equal(t, "face@example.com", createdIdentity.Email)
	assert.NotEqual(t, "secret1", createdIdentity.PasswordHash)
	assert.Equal(t, createdIdentity.ID, createdAccount.ID)
	assert.Equal(t, domain.RoleUser, createdAccount.Role)
	assert.Equal(t, createdIdentity.ID, result.Session.IdentityID)
	assert.NotEmpty(t, result.Session.Token)
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	svc, _ := newAuthService(&fakeIdentityRepo{}, &fakeAccountRepo{})

	_, err := svc.Register(context.Background(), RegisterInput{Email: "nope", Password: "123", Username: "x"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	de := apperrors.ToDomainError(err)
	assert.Contains(t, de.Details, "email")
	assert.Contains(t, de.Details, "password")
	assert.Contains(t, de.Details, "username")
}

func TestRegisterExistingUsernameCreatesNoIdentity(t *testing.T) {
	identityCreated := false
	svc, _ := newAuthService(
		&fakeIdentityRepo{create: func(context.Context, *domain.Identity) error { identityCreated = true; return nil }},
		&fakeAccountRepo{usernameExists: func(context.Context, string) (bool, error) { return true, nil }},
	)

	_, err := svc.Register(context.Background(), validRegistration)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
	assert.Contains(t, err.Error(), "already exists")
	assert.False(t, identityCreated)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(
		&fakeIdentityRepo{create: func(context.Context, *domain.Identity) error {
			return &pgconn.PgError{Code: "23505"}
		}},
		&fakeAccountRepo{},
	)

	_, err := svc.Register(context.Background(), validRegistration)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
	assert.Contains(t, err.Error(), "email already registered")
}

func TestRegisterRaceCompensatesIdentity(t *testing.T) {
	var createdID string
	var deleted []string
	svc, _ := newAuthService(
		&fakeIdentityRepo{
			create: func(_ context.Context, i *domain.Identity) error { createdID = i.ID; return nil },
			delete: func(_ context.Context, id string) error { deleted = append(deleted, id); return nil },
		},
		&fakeAccountRepo{create: func(context.Context, *domain.Account) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
		}},
	)

	_, err := svc.Register(context.Background(), validRegistration)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
	assert.Contains(t, err.Error(), "username already exists")
	assert.Equal(t, []string{createdID}, deleted)
}

func TestRegisterRetriesCompensation(t *testing.T) {
	attempts := 0
	svc, _ := newAuthService(
		&fakeIdentityRepo{delete: func(context.Context, string) error {
			attempts++
			if attempts < 3 {
				return errors.New("connection reset")
			}
			return nil
		}},
		&fakeAccountRepo{create: func(context.Context, *domain.Account) error { return errors.New("disk full") }},
	)

	_, err := svc.Register(context.Background(), validRegistration)
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
	assert.Equal(t, 3, attempts)
	var sagaErr *saga.Error
	require.ErrorAs(t, err, &sagaErr)
	assert.Empty(t, sagaErr.Unrecovered)
}

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("secret1", 4)
	require.NoError(t, err)
	identity := &domain.Identity{ID: "id-1", Email: "face@example.com", PasswordHash: hash}
	svc, _ := newAuthService(
		&fakeIdentityRepo{getByEmail: func(_ context.Context, email string) (*domain.Identity, error) {
			if email != identity.Email {
				return nil, pgx.ErrNoRows
			}
			return identity, nil
		}},
		&fakeAccountRepo{getByID: accountsByID(domain.Account{ID: "id-1", Username: "face_maker", Role: domain.RoleUser})},
	)
	ctx := context.Background()

	result, err := svc.Login(ctx, "FACE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "face_maker", result.Account.Username)

	_, err = svc.Login(ctx, "face@example.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = svc.Login(ctx, "ghost@example.com", "secret1")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = svc.Login(ctx, "", "")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestLogoutRevokesUntilExpiry(t *testing.T) {
	svc, revocations := newAuthService(&fakeIdentityRepo{}, &fakeAccountRepo{})
	session, err := svc.tokenMgr.GenerateToken(&domain.Identity{ID: "id-1"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), session.Token))
	ttl, ok := revocations.ttls[session.TokenID]
	require.True(t, ok)
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)

	require.NoError(t, svc.Logout(context.Background(), "garbage"))
	assert.Len(t, revocations.ttls, 1)
}

func TestVerify(t *testing.T) {
	svc, _ := newAuthService(&fakeIdentityRepo{}, &fakeAccountRepo{})

	_, err := svc.Verify(context.Background(), "")
	assert.ErrorIs(t, err, auth.ErrMissingCredential)

	_, err = svc.Verify(context.Background(), "bad")
	assert.ErrorIs(t, err, auth.ErrInvalidCredential)

	svc.verifier = stubVerifier{identity: &domain.Identity{ID: "id-1", Email: "a@example.com"}}
	svc.resolver = stubResolver(domain.RoleAdmin)
	v, err := svc.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, v.Role)
	assert.Equal(t, "id-1", v.Identity.ID)
}

func TestMeWithoutAccountRecord(t *testing.T) {
	svc, _ := newAuthService(
		&fakeIdentityRepo{getByID: func(_ context.Context, id string) (*domain.Identity, error) {
			return &domain.Identity{ID: id}, nil
		}},
		&fakeAccountRepo{},
	)
	identity, account, err := svc.Me(context.Background(), "id-1")
	require.NoError(t, err)
	assert.Equal(t, "id-1", identity.ID)
	assert.Nil(t, account)
}

func TestChangePassword(t *testing.T) {
	hash, err := auth.HashPassword("secret1", 4)
	require.NoError(t, err)
	var stored string
	svc, _ := newAuthService(
		&fakeIdentityRepo{
			getByID: func(_ context.Context, id string) (*domain.Identity, error) {
				return &domain.Identity{ID: id, PasswordHash: hash}, nil
			},
			updatePassword: func(_ context.Context, _ string, h string) error { stored = h; return nil },
		},
		&fakeAccountRepo{},
	)
	ctx := context.Background()

	err = svc.ChangePassword(ctx, "id-1", "wrong", "newsecret")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	err = svc.ChangePassword(ctx, "id-1", "secret1", "123")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	require.NoError(t, svc.ChangePassword(ctx, "id-1", "secret1", "newsecret"))
	assert.NoError(t, auth.ComparePassword(stored, "newsecret"))
}
