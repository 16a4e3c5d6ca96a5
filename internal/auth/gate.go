package auth

import (
	"context"

	"github.com/vrcface/server/internal/domain"
	"github.com/vrcface/server/internal/observability"
)

// Reason explains a denial.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonNoToken          Reason = "no_token"
	ReasonInvalidToken     Reason = "invalid_token"
	ReasonInsufficientRole Reason = "insufficient_role"
)

// Decision is the per-request outcome of the gate. It is never persisted.
type Decision struct {
	Identity *domain.Identity
	Role     domain.Role
	Allowed  bool
	Reason   Reason
}

// Gate composes credential verification and role resolution.
type Gate struct {
	verifier CredentialVerifier
	resolver RoleResolver
	metrics  *observability.Metrics
}

// NewGate constructs the gate. metrics may be nil.
func NewGate(verifier CredentialVerifier, resolver RoleResolver, metrics *observability.Metrics) *Gate {
	return &Gate{verifier: verifier, resolver: resolver, metrics: metrics}
}

// Authorize allows the request only when the bearer token verifies and the
// resolved role satisfies required.
func (g *Gate) Authorize(ctx context.Context, authorization string, required domain.Role) Decision {
	decision := g.evaluate(ctx, authorization, &required)
	g.metrics.RecordAuthzDecision(required.String(), decision.Allowed, string(decision.Reason))
	return decision
}

// Authenticate allows any verified identity and reports its resolved role.
func (g *Gate) Authenticate(ctx context.Context, authorization string) Decision {
	decision := g.evaluate(ctx, authorization, nil)
	g.metrics.RecordAuthzDecision("authenticated", decision.Allowed, string(decision.Reason))
	return decision
}

func (g *Gate) evaluate(ctx context.Context, authorization string, required *domain.Role) Decision {
	token, err := ExtractBearer(authorization)
	if err != nil {
		return Decision{Reason: ReasonNoToken}
	}

	identity, err := g.verifier.Verify(ctx, token)
	if err != nil || identity == nil {
		return Decision{Reason: ReasonInvalidToken}
	}

	role := g.resolver.Resolve(ctx, identity.ID)
	if required != nil && !role.Satisfies(*required) {
		return Decision{Identity: identity, Role: role, Reason: ReasonInsufficientRole}
	}
	return Decision{Identity: identity, Role: role, Allowed: true}
}
