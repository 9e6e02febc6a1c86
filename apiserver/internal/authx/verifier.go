package authx

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coreos/go-oidc"
	jose "gopkg.in/square/go-jose.v2"
)

// VerificationReason is a machine-readable code explaining why identity token
// verification failed. Reasons are logged internally only; clients see a
// generic authentication failure regardless of the reason.
type VerificationReason string

const (
	// ReasonExpired indicates the token's expiry is in the past.
	ReasonExpired VerificationReason = "expired"
	// ReasonBadSignature indicates the token was not signed by any of the
	// provider's current signing keys.
	ReasonBadSignature VerificationReason = "bad-signature"
	// ReasonAudienceMismatch indicates the token was not minted for this
	// service-- its issuer or audience does not match configuration.
	ReasonAudienceMismatch VerificationReason = "audience-mismatch"
	// ReasonMalformed indicates the token could not be parsed at all.
	ReasonMalformed VerificationReason = "malformed"
)

// ErrVerification represents a failure to verify an identity token. The
// Reason field disambiguates failure modes for internal logging. Verification
// is all-or-nothing: a token that fails any check is not trusted in any part.
type ErrVerification struct {
	// Reason is a machine-readable code explaining the failure.
	Reason VerificationReason
	// Details optionally carries internal diagnostic detail. It must never be
	// included in a response body.
	Details string
}

func (e *ErrVerification) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("identity token verification failed: %s", e.Reason)
	}
	return fmt.Sprintf(
		"identity token verification failed: %s: %s",
		e.Reason,
		e.Details,
	)
}

// TokenVerifier is the interface for components that can verify a raw
// identity token and derive a Principal from it. Implementations must be safe
// for concurrent use.
type TokenVerifier interface {
	// Verify checks the provided raw identity token's signature, issuer,
	// audience, and expiry, and returns the Principal it asserts. Any failure
	// yields an *ErrVerification carrying a reason code.
	Verify(ctx context.Context, rawToken string) (Principal, error)
}

type tokenVerifier struct {
	issuer   string
	clientID string
	keySet   oidc.KeySet
	now      func() time.Time
}

// NewTokenVerifier returns a TokenVerifier that validates tokens against the
// provided key material (typically an oidc.RemoteKeySet that caches and
// refreshes the provider's published JWKS) and this service's issuer and
// client ID configuration.
func NewTokenVerifier(
	issuer string,
	clientID string,
	keySet oidc.KeySet,
) TokenVerifier {
	return &tokenVerifier{
		issuer:   issuer,
		clientID: clientID,
		keySet:   keySet,
		now:      time.Now,
	}
}

type idTokenClaims struct {
	Issuer   string   `json:"iss"`
	Audience audience `json:"aud"`
	Subject  string   `json:"sub"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Picture  string   `json:"picture"`
	IssuedAt int64    `json:"iat"`
	Expiry   int64    `json:"exp"`
}

// audience tolerates the aud claim being either a single string or an array
// of strings, both of which are legal.
type audience []string

func (a *audience) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = audience{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*a = audience(many)
	return nil
}

func (a audience) contains(clientID string) bool {
	for _, aud := range a {
		if aud == clientID {
			return true
		}
	}
	return false
}

func (t *tokenVerifier) Verify(
	ctx context.Context,
	rawToken string,
) (Principal, error) {
	if _, err := jose.ParseSigned(rawToken); err != nil {
		return Principal{}, &ErrVerification{
			Reason:  ReasonMalformed,
			Details: err.Error(),
		}
	}
	payload, err := t.keySet.VerifySignature(ctx, rawToken)
	if err != nil {
		return Principal{}, &ErrVerification{
			Reason:  ReasonBadSignature,
			Details: err.Error(),
		}
	}
	claims := idTokenClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Principal{}, &ErrVerification{
			Reason:  ReasonMalformed,
			Details: err.Error(),
		}
	}
	if claims.Issuer != t.issuer {
		return Principal{}, &ErrVerification{
			Reason: ReasonAudienceMismatch,
			Details: fmt.Sprintf(
				"token issued by %q; expected %q",
				claims.Issuer,
				t.issuer,
			),
		}
	}
	if !claims.Audience.contains(t.clientID) {
		return Principal{}, &ErrVerification{
			Reason: ReasonAudienceMismatch,
			Details: fmt.Sprintf(
				"token audience %v does not include this service's client ID",
				claims.Audience,
			),
		}
	}
	expiresAt := time.Unix(claims.Expiry, 0)
	if !expiresAt.After(t.now()) {
		return Principal{}, &ErrVerification{
			Reason:  ReasonExpired,
			Details: fmt.Sprintf("token expired at %s", expiresAt),
		}
	}
	return Principal{
		Subject:   claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		Picture:   claims.Picture,
		IssuedAt:  time.Unix(claims.IssuedAt, 0),
		ExpiresAt: expiresAt,
	}, nil
}
