package authx

import (
	"context"
	"time"
)

// Principal represents the verified identity of an authenticated end user.
// A Principal is never constructed from unverified input: every instance is
// the product of signature verification against the identity provider's
// current signing keys (see TokenVerifier) or of resolving a previously
// authenticated session. Instances are immutable and rebuilt fresh on every
// verification.
type Principal struct {
	// Subject is the stable, provider-issued unique identifier for the user.
	Subject string `json:"subject"`
	// Email is the user's email address as asserted by the identity provider.
	Email string `json:"email"`
	// Name is the user's display name.
	Name string `json:"name,omitempty"`
	// Picture is an optional URL for the user's profile photo.
	Picture string `json:"picture,omitempty"`
	// IssuedAt indicates when the underlying identity assertion was issued.
	IssuedAt time.Time `json:"issuedAt"`
	// ExpiresAt indicates when the underlying identity assertion expires.
	ExpiresAt time.Time `json:"expiresAt"`
}

type principalContextKey struct{}

// ContextWithPrincipal returns a context.Context that has been augmented with
// the provided Principal.
func ContextWithPrincipal(
	ctx context.Context,
	principal Principal,
) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// PrincipalFromContext extracts a Principal from the provided context.Context
// and returns it along with a bool indicating whether one was found.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalContextKey{}).(Principal)
	return principal, ok
}

type sessionTokenContextKey struct{}

// ContextWithSessionToken returns a context.Context that has been augmented
// with the provided session token.
func ContextWithSessionToken(
	ctx context.Context,
	token string,
) context.Context {
	return context.WithValue(ctx, sessionTokenContextKey{}, token)
}

// SessionTokenFromContext extracts a session token from the provided
// context.Context. An empty string is returned if no token was found.
func SessionTokenFromContext(ctx context.Context) string {
	token := ctx.Value(sessionTokenContextKey{})
	if token == nil {
		return ""
	}
	return token.(string)
}
