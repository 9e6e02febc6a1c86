package main

// nolint: lll
import (
	"context"
	"time"

	"github.com/dextrolabs/dextro/apiserver/internal/authx"
	authxMongodb "github.com/dextrolabs/dextro/apiserver/internal/authx/mongodb"
	authxRedis "github.com/dextrolabs/dextro/apiserver/internal/authx/redis"
	authxREST "github.com/dextrolabs/dextro/apiserver/internal/authx/rest"
	"github.com/dextrolabs/dextro/apiserver/internal/core"
	coreMongodb "github.com/dextrolabs/dextro/apiserver/internal/core/mongodb"
	coreREST "github.com/dextrolabs/dextro/apiserver/internal/core/rest"
	"github.com/dextrolabs/dextro/apiserver/internal/lib/mongodb"
	"github.com/dextrolabs/dextro/apiserver/internal/lib/oidc"
	"github.com/dextrolabs/dextro/apiserver/internal/lib/redis"
	"github.com/dextrolabs/dextro/apiserver/internal/lib/restmachinery"
	"github.com/dextrolabs/dextro/apiserver/internal/lib/restmachinery/authn"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const envconfigPrefix = "API"

// Origins the hosted frontend has historically been served from. These are
// permitted in addition to whatever FRONTEND_URL and ADDITIONAL_ORIGINS name.
var defaultAllowedOrigins = []string{
	"https://dextro-store.vercel.app",
	"https://www.dextro.store",
	"https://dextro-store-8c9ivrtlf-dextros-projects-e14cac6e.vercel.app",
}

type apiServerConfig struct {
	ListenPort         int           `envconfig:"PORT" default:"5000"`
	TLS                bool          `envconfig:"TLS_ENABLED"`
	TLSCertFile        string        `envconfig:"TLS_CERT_PATH" default:"/app/certs/tls.crt"`
	TLSKeyFile         string        `envconfig:"TLS_KEY_PATH" default:"/app/certs/tls.key"`
	PublicURL          string        `envconfig:"PUBLIC_URL" default:"http://localhost:5000"`
	FrontendURL        string        `envconfig:"FRONTEND_URL" required:"true"`
	AdditionalOrigins  []string      `envconfig:"ADDITIONAL_ORIGINS"`
	Mode               string        `envconfig:"AUTH_MODE" default:"session"`
	SessionSecret      string        `envconfig:"SESSION_SECRET"`
	SessionTTL         time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	SessionsStore      string        `envconfig:"SESSIONS_STORE" default:"mongodb"`
	CrossOriginCookies bool          `envconfig:"CROSS_ORIGIN_COOKIES" default:"true"`
}

func (a apiServerConfig) Port() int {
	return a.ListenPort
}

func (a apiServerConfig) TLSEnabled() bool {
	return a.TLS
}

func (a apiServerConfig) TLSCertPath() string {
	return a.TLSCertFile
}

func (a apiServerConfig) TLSKeyPath() string {
	return a.TLSKeyFile
}

func (a apiServerConfig) AllowedOrigins() []string {
	origins := []string{a.FrontendURL}
	origins = append(origins, defaultAllowedOrigins...)
	return append(origins, a.AdditionalOrigins...)
}

func (a apiServerConfig) authMode() authx.AuthMode {
	return authx.AuthMode(a.Mode)
}

func getConfigFromEnvironment() (apiServerConfig, error) {
	c := apiServerConfig{}
	if err := envconfig.Process(envconfigPrefix, &c); err != nil {
		return c, errors.Wrap(
			err,
			"error getting api server configuration from environment",
		)
	}
	switch c.authMode() {
	case authx.AuthModeSession:
		if c.SessionSecret == "" {
			return c, errors.New(
				"SESSION_SECRET is required when AUTH_MODE is session",
			)
		}
	case authx.AuthModeToken:
	default:
		return c, errors.Errorf(
			"unrecognized AUTH_MODE %q; must be session or token",
			c.Mode,
		)
	}
	if c.SessionsStore != "mongodb" && c.SessionsStore != "redis" {
		return c, errors.Errorf(
			"unrecognized SESSIONS_STORE %q; must be mongodb or redis",
			c.SessionsStore,
		)
	}
	return c, nil
}

func getAPIServerFromEnvironment(
	ctx context.Context,
) (restmachinery.Server, error) {

	// API server config
	apiConfig, err := getConfigFromEnvironment()
	if err != nil {
		return nil, err
	}

	// Common
	database, err := mongodb.Database()
	if err != nil {
		return nil, err
	}

	// OIDC provider-- discovery, client config, and signing keys
	oauth2Config, keySet, issuer, err :=
		oidc.GetConfigAndKeySetFromEnvironment(ctx)
	if err != nil {
		return nil, err
	}
	verifier := authx.NewTokenVerifier(issuer, oauth2Config.ClientID, keySet)
	flow := authx.NewOAuthFlow(oauth2Config, true, 0)

	// Users
	usersStore, err := authxMongodb.NewUsersStore(database)
	if err != nil {
		return nil, err
	}
	usersService := authx.NewUsersService(usersStore)

	// Sessions-- depends on users. Token mode keeps no server-side session
	// state, so the store is only stood up in session mode.
	var sessionsStore authx.SessionsStore
	if apiConfig.authMode() == authx.AuthModeSession {
		if apiConfig.SessionsStore == "redis" {
			redisClient, err := redis.Client()
			if err != nil {
				return nil, err
			}
			sessionsStore = authxRedis.NewSessionsStore(redisClient)
		} else {
			if sessionsStore, err =
				authxMongodb.NewSessionsStore(database); err != nil {
				return nil, err
			}
		}
	}
	sessionsService := authx.NewSessionsService(
		apiConfig.authMode(),
		flow,
		verifier,
		sessionsStore,
		usersService,
		apiConfig.SessionSecret,
		apiConfig.SessionTTL,
	)

	// Products
	productsStore, err := coreMongodb.NewProductsStore(database)
	if err != nil {
		return nil, err
	}
	blobStore, err := coreMongodb.NewBlobStore(
		database,
		apiConfig.PublicURL+"/api/products/images",
	)
	if err != nil {
		return nil, err
	}
	productsService := core.NewProductsService(productsStore, blobStore)

	var authFilter restmachinery.Filter
	if apiConfig.authMode() == authx.AuthModeSession {
		authFilter = authn.NewSessionAuthFilter(sessionsService.Resolve)
	} else {
		authFilter = authn.NewTokenAuthFilter(verifier.Verify)
	}
	baseEndpoints := &restmachinery.BaseEndpoints{
		AuthFilter: authFilter,
	}

	return restmachinery.NewServer(
		apiConfig,
		baseEndpoints,
		[]restmachinery.Endpoints{
			&authxREST.AuthEndpoints{
				BaseEndpoints: baseEndpoints,
				Mode:          apiConfig.authMode(),
				Service:       sessionsService,
				Verifier:      verifier,
				FrontendURL:   apiConfig.FrontendURL,
				Cookie: authxREST.CookieConfig{
					CrossOrigin: apiConfig.CrossOriginCookies,
				},
			},
			&coreREST.ProductsEndpoints{
				BaseEndpoints: baseEndpoints,
				Service:       productsService,
			},
		},
	), nil
}
