package auth

import "errors"

var (
	// ErrMissingCredential means no bearer token was presented. Read paths that
	// tolerate anonymity treat it as "no identity".
	ErrMissingCredential = errors.New("missing credential")
	// ErrInvalidCredential covers every rejected token: bad signature, expiry,
	// revocation, unknown identity and backend failures alike.
	ErrInvalidCredential = errors.New("invalid credential")
)
