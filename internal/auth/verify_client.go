package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vrcface/server/internal/domain"
)

// VerifiedUser is the user block of a successful verification response.
type VerifiedUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// VerifyResult is the body of POST /api/auth/verify.
type VerifyResult struct {
	Authenticated bool          `json:"authenticated"`
	User          *VerifiedUser `json:"user,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// VerifyRequest is the body sent to the verification endpoint.
type VerifyRequest struct {
	Token string `json:"token"`
}

// VerificationClient asks the verification endpoint about a token.
type VerificationClient interface {
	Verify(ctx context.Context, token string) (*VerifyResult, error)
}

// RemoteVerifier calls the verification endpoint over HTTP.
type RemoteVerifier struct {
	url     string
	timeout time.Duration
}

// NewRemoteVerifier constructs the client.
func NewRemoteVerifier(url string, timeout time.Duration) *RemoteVerifier {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &RemoteVerifier{url: url, timeout: timeout}
}

// Verify returns the decoded result of a 200 response. Any other outcome is an
// error and the caller must treat the token as unverified.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*VerifyResult, error) {
	timeout := v.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	agent := fiber.Post(v.url).JSON(VerifyRequest{Token: token}).Timeout(timeout)
	var result VerifyResult
	code, _, errs := agent.Struct(&result)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("verification endpoint returned %d", code)
	}
	return &result, nil
}

// Admin reports whether the result names an authenticated admin.
func (r *VerifyResult) Admin() bool {
	return r != nil && r.Authenticated && r.User != nil && domain.ParseRole(r.User.Role) == domain.RoleAdmin
}
