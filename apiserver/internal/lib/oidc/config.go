package oidc

import (
	"context"

	"github.com/coreos/go-oidc"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const envconfigPrefix = "OIDC"

type config struct {
	// ProviderURL is the issuer URL used for OIDC discovery. Defaults to
	// Google, which is the only provider the frontend offers.
	ProviderURL  string `envconfig:"PROVIDER_URL" default:"https://accounts.google.com"` // nolint: lll
	ClientID     string `envconfig:"CLIENT_ID" required:"true"`
	ClientSecret string `envconfig:"CLIENT_SECRET" required:"true"`
	// RedirectURL is the full callback URL registered with the provider, e.g.
	// https://api.dextro.store/auth/google/callback
	RedirectURL string `envconfig:"REDIRECT_URL" required:"true"`
}

// GetConfigAndKeySetFromEnvironment returns OAuth2 client configuration, a
// key set that caches and refreshes the provider's published signing keys,
// and the expected token issuer-- all derived from environment variables and
// provider discovery. Missing required variables are a fatal startup
// condition for the caller, never a per-request error.
func GetConfigAndKeySetFromEnvironment(ctx context.Context) (
	*oauth2.Config,
	oidc.KeySet,
	string,
	error,
) {
	c := config{}
	if err := envconfig.Process(envconfigPrefix, &c); err != nil {
		return nil, nil, "", errors.Wrap(
			err,
			"error getting oidc configuration from environment",
		)
	}

	provider, err := oidc.NewProvider(ctx, c.ProviderURL)
	if err != nil {
		return nil, nil, "", errors.Wrapf(
			err,
			"error completing discovery for provider %q",
			c.ProviderURL,
		)
	}

	providerClaims := struct {
		JWKSURL string `json:"jwks_uri"`
	}{}
	if err := provider.Claims(&providerClaims); err != nil {
		return nil, nil, "", errors.Wrap(
			err,
			"error decoding provider discovery document",
		)
	}

	oauth2Config := &oauth2.Config{
		Endpoint:     provider.Endpoint(),
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	keySet := oidc.NewRemoteKeySet(ctx, providerClaims.JWKSURL)

	return oauth2Config, keySet, c.ProviderURL, nil
}
