package auth

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vrcface/server/internal/domain"
)

// CredentialVerifier exchanges a bearer token for an identity.
type CredentialVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Identity, error)
}

// IdentityReader is the subset of the identity repository the verifier needs.
type IdentityReader interface {
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
}

// ExtractBearer returns the token of an "Authorization: Bearer <token>" header.
func ExtractBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingCredential
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingCredential
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingCredential
	}
	return token, nil
}

// TokenVerifier validates session tokens issued by TokenManager.
type TokenVerifier struct {
	tokens      *TokenManager
	revocations RevocationStore
	identities  IdentityReader
	timeout     time.Duration
	logger      *zap.Logger
}

// NewTokenVerifier constructs the verifier. timeout bounds the revocation and
// identity lookups together.
func NewTokenVerifier(tokens *TokenManager, revocations RevocationStore, identities IdentityReader, timeout time.Duration, logger *zap.Logger) *TokenVerifier {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &TokenVerifier{
		tokens:      tokens,
		revocations: revocations,
		identities:  identities,
		timeout:     timeout,
		logger:      logger,
	}
}

// Verify returns the identity behind token or ErrInvalidCredential. Transport
// and storage failures are indistinguishable from a bad token to callers.
func (v *TokenVerifier) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingCredential
	}

	claims, err := v.tokens.ParseToken(token)
	if err != nil {
		v.logger.Debug("token rejected", zap.Error(err))
		return nil, ErrInvalidCredential
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	if v.revocations != nil {
		revoked, err := v.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			v.logger.Warn("revocation lookup failed", zap.String("token_id", claims.ID), zap.Error(err))
			return nil, ErrInvalidCredential
		}
		if revoked {
			return nil, ErrInvalidCredential
		}
	}

	identity, err := v.identities.GetByID(ctx, claims.Subject)
	if err != nil || identity == nil {
		if err != nil {
			v.logger.Debug("identity lookup failed", zap.String("identity_id", claims.Subject), zap.Error(err))
		}
		return nil, ErrInvalidCredential
	}
	return identity, nil
}
