package authx

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// TokenSet is the result of redeeming an authorization code with the identity
// provider's token endpoint.
type TokenSet struct {
	// IDToken is the provider's signed identity assertion.
	IDToken string
	// AccessToken is the provider's OAuth2 access token.
	AccessToken string
	// RefreshToken is returned by the provider only when offline access was
	// requested.
	RefreshToken string
}

// ErrExchange represents a failure to redeem an authorization code. The
// provider's own error detail is retained for internal logging but must never
// be surfaced to a client, so Error() is deliberately generic.
type ErrExchange struct {
	// Cause is the underlying provider or transport error.
	Cause error
}

func (e *ErrExchange) Error() string {
	return "error exchanging authorization code for tokens"
}

// OAuthFlow is the interface for components that drive the three-step
// authorization code protocol: build the authorization URL, receive the
// provider's redirect, redeem the code. Implementations hold no state across
// requests; the code itself is the only correlation between the steps, and
// the provider enforces its expiry and single use.
type OAuthFlow interface {
	// AuthCodeURL deterministically constructs the provider's authorization
	// endpoint URL for the configured client, scopes, access type, and
	// callback URL. It performs no I/O.
	AuthCodeURL(state string) string
	// ExchangeCode performs exactly one round trip to the provider's token
	// endpoint to redeem the provided authorization code. It fails with an
	// *ErrExchange if the provider rejects the code (invalid, expired, or
	// already redeemed). Redemption is not idempotent, so implementations must
	// never retry a failed exchange.
	ExchangeCode(ctx context.Context, code string) (TokenSet, error)
}

type oauthFlow struct {
	oauth2Config    *oauth2.Config
	offlineAccess   bool
	exchangeTimeout time.Duration
}

// NewOAuthFlow returns an OAuthFlow backed by the provided, explicitly
// constructed OAuth2 client configuration. Passing the configuration here
// (rather than consulting any process-wide default) keeps the flow free of
// mutable global state.
func NewOAuthFlow(
	oauth2Config *oauth2.Config,
	offlineAccess bool,
	exchangeTimeout time.Duration,
) OAuthFlow {
	if exchangeTimeout == 0 {
		exchangeTimeout = 10 * time.Second
	}
	return &oauthFlow{
		oauth2Config:    oauth2Config,
		offlineAccess:   offlineAccess,
		exchangeTimeout: exchangeTimeout,
	}
}

func (o *oauthFlow) AuthCodeURL(state string) string {
	opts := []oauth2.AuthCodeOption{}
	if o.offlineAccess {
		opts = append(opts, oauth2.AccessTypeOffline)
	}
	return o.oauth2Config.AuthCodeURL(state, opts...)
}

func (o *oauthFlow) ExchangeCode(
	ctx context.Context,
	code string,
) (TokenSet, error) {
	// The exchange suspends on the network. A timeout here is mandatory so an
	// unresponsive provider cannot pin the request goroutine indefinitely.
	ctx, cancel := context.WithTimeout(ctx, o.exchangeTimeout)
	defer cancel()
	oauth2Token, err := o.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return TokenSet{}, &ErrExchange{Cause: err}
	}
	idToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return TokenSet{}, &ErrExchange{
			Cause: errors.New(
				"token response did not include an identity token",
			),
		}
	}
	return TokenSet{
		IDToken:      idToken,
		AccessToken:  oauth2Token.AccessToken,
		RefreshToken: oauth2Token.RefreshToken,
	}, nil
}
