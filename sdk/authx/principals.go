package authx

import "time"

// Principal represents the verified identity of an authenticated end user, as
// reported by the API server.
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
