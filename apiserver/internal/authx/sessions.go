package authx

import (
	"context"
	"time"

	"github.com/dextrolabs/dextro/apiserver/internal/lib/crypto"
	"github.com/dextrolabs/dextro/sdk/meta"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

// AuthMode selects how authenticated identity is carried on requests that
// follow a successful sign-in.
type AuthMode string

const (
	// AuthModeSession denotes server-side sessions correlated by an opaque
	// token delivered via cookie.
	AuthModeSession AuthMode = "session"
	// AuthModeToken denotes stateless operation: the provider's identity token
	// is handed to the client and re-presented as a bearer credential on every
	// request.
	AuthModeToken AuthMode = "token"
)

// Session is a server-side record correlating an opaque client-held token
// with a previously verified Principal. The schema is deliberately explicit--
// just the principal fields needed to reconstruct identity plus issue and
// expiry times-- rather than an opaque serialization of a provider profile.
// A Session maps 1:1 to the Principal verified at creation time and is not
// updated in place if the provider-side profile later changes.
type Session struct {
	// ID is an immutable session identifier.
	ID string `json:"id" bson:"id"`
	// HashedToken is a salted hash of the opaque token held by the client. The
	// token itself is never stored.
	HashedToken string `json:"-" bson:"hashedToken"`
	// Subject is the provider-issued unique id of the authenticated user.
	Subject string `json:"subject" bson:"subject"`
	// Email is the authenticated user's email address.
	Email string `json:"email" bson:"email"`
	// Name is the authenticated user's display name.
	Name string `json:"name,omitempty" bson:"name,omitempty"`
	// Picture is an optional URL for the user's profile photo.
	Picture string `json:"picture,omitempty" bson:"picture,omitempty"`
	// Created indicates when the session was established.
	Created time.Time `json:"created" bson:"created"`
	// Expires indicates when the session lapses.
	Expires time.Time `json:"expires" bson:"expires"`
}

// Principal deterministically reconstructs the Principal this session was
// issued for.
func (s Session) Principal() Principal {
	return Principal{
		Subject:   s.Subject,
		Email:     s.Email,
		Name:      s.Name,
		Picture:   s.Picture,
		IssuedAt:  s.Created,
		ExpiresAt: s.Expires,
	}
}

// AuthResult is the terminal outcome of a successful authorization code
// dance. Exactly one of SessionToken or IDToken is meaningful, depending on
// the mode the service was configured with.
type AuthResult struct {
	// Principal is the verified identity of the user who signed in.
	Principal Principal
	// SessionToken is the opaque token for the newly established session.
	// Populated only in session mode.
	SessionToken string
	// IDToken is the provider's identity token, to be handed to the client for
	// per-request presentation. Populated only in token mode.
	IDToken string
}

// SessionsService is the specialized interface for driving sign-in and
// managing Sessions. It's decoupled from underlying technology choices (e.g.
// data store) to keep business logic reusable and consistent while the
// underlying tech stack remains free to change.
type SessionsService interface {
	// AuthURL returns the provider authorization URL that begins a sign-in.
	AuthURL() string
	// Authenticate completes the final steps of the sign-in workflow for the
	// authorization code received on the provider's callback: it redeems the
	// code, verifies the resulting identity token, idempotently ensures a
	// profile record exists for the user, and-- in session mode only--
	// establishes a Session. The steps run in strict sequence, and no Session
	// is ever reachable if an earlier step failed.
	Authenticate(ctx context.Context, code string) (AuthResult, error)
	// Resolve looks up the active, non-expired Session held under the provided
	// token and returns its Principal. If no such session exists (or it has
	// expired) a *meta.ErrAuthentication is returned; callers treat this as
	// "unauthenticated," never as a system fault.
	Resolve(ctx context.Context, token string) (Principal, error)
	// Login establishes a new Session for an already-verified Principal and
	// returns the opaque token for cookie delivery. Concurrent logins for the
	// same principal create independent sessions.
	Login(ctx context.Context, principal Principal) (string, error)
	// Logout deletes the session held under the provided token. Logging out
	// twice, or with a token that never matched a session, is not an error.
	Logout(ctx context.Context, token string) error
}

// SessionsStore is the interface for components that persist Sessions.
type SessionsStore interface {
	// Create stores the provided Session.
	Create(context.Context, Session) error
	// GetByHashedToken retrieves the Session whose hashed token matches the
	// provided value. Implementations MUST return a *meta.ErrNotFound when no
	// such Session exists.
	GetByHashedToken(context.Context, string) (Session, error)
	// DeleteByHashedToken deletes the Session whose hashed token matches the
	// provided value. Deleting a nonexistent Session is not an error.
	DeleteByHashedToken(context.Context, string) error
}

type sessionsService struct {
	mode          AuthMode
	flow          OAuthFlow
	verifier      TokenVerifier
	sessionsStore SessionsStore
	usersService  UsersService
	tokenSalt     string
	sessionTTL    time.Duration
}

// NewSessionsService returns a specialized interface for driving sign-in and
// managing Sessions. The tokenSalt participates in hashing stored session
// tokens; sessionTTL bounds session lifetime. In token mode the sessionsStore
// may be nil, since no server-side session state exists in that mode.
func NewSessionsService(
	mode AuthMode,
	flow OAuthFlow,
	verifier TokenVerifier,
	sessionsStore SessionsStore,
	usersService UsersService,
	tokenSalt string,
	sessionTTL time.Duration,
) SessionsService {
	if sessionTTL == 0 {
		sessionTTL = time.Hour
	}
	return &sessionsService{
		mode:          mode,
		flow:          flow,
		verifier:      verifier,
		sessionsStore: sessionsStore,
		usersService:  usersService,
		tokenSalt:     tokenSalt,
		sessionTTL:    sessionTTL,
	}
}

func (s *sessionsService) AuthURL() string {
	// The state parameter is not correlated server-side: the provider enforces
	// code expiry and single use, and the code is the only credential required
	// at the callback.
	return s.flow.AuthCodeURL(crypto.NewToken(30))
}

func (s *sessionsService) Authenticate(
	ctx context.Context,
	code string,
) (AuthResult, error) {
	tokens, err := s.flow.ExchangeCode(ctx, code)
	if err != nil {
		// Never retried: the provider enforces single-use codes, so a retry
		// cannot succeed.
		return AuthResult{}, err
	}
	principal, err := s.verifier.Verify(ctx, tokens.IDToken)
	if err != nil {
		return AuthResult{}, err
	}
	if err := s.usersService.EnsureProfile(ctx, principal); err != nil {
		return AuthResult{}, errors.Wrapf(
			err,
			"error ensuring profile for user %q",
			principal.Subject,
		)
	}
	result := AuthResult{Principal: principal}
	if s.mode == AuthModeToken {
		result.IDToken = tokens.IDToken
		return result, nil
	}
	token, err := s.Login(ctx, principal)
	if err != nil {
		return AuthResult{}, err
	}
	result.SessionToken = token
	return result, nil
}

func (s *sessionsService) Login(
	ctx context.Context,
	principal Principal,
) (string, error) {
	token := crypto.NewToken(256)
	now := time.Now()
	session := Session{
		ID:          uuid.NewV4().String(),
		HashedToken: crypto.ShortSHA(s.tokenSalt, token),
		Subject:     principal.Subject,
		Email:       principal.Email,
		Name:        principal.Name,
		Picture:     principal.Picture,
		Created:     now,
		Expires:     now.Add(s.sessionTTL),
	}
	if err := s.sessionsStore.Create(ctx, session); err != nil {
		return "", errors.Wrapf(
			err,
			"error storing new session %q",
			session.ID,
		)
	}
	return token, nil
}

func (s *sessionsService) Resolve(
	ctx context.Context,
	token string,
) (Principal, error) {
	session, err := s.sessionsStore.GetByHashedToken(
		ctx,
		crypto.ShortSHA(s.tokenSalt, token),
	)
	if err != nil {
		if _, ok := errors.Cause(err).(*meta.ErrNotFound); ok {
			return Principal{}, &meta.ErrAuthentication{
				Reason: "Session not found. Please log in again.",
			}
		}
		return Principal{}, errors.Wrap(
			err,
			"error retrieving session from store by hashed token",
		)
	}
	if time.Now().After(session.Expires) {
		return Principal{}, &meta.ErrAuthentication{
			Reason: "Session has expired. Please log in again.",
		}
	}
	return session.Principal(), nil
}

func (s *sessionsService) Logout(ctx context.Context, token string) error {
	if err := s.sessionsStore.DeleteByHashedToken(
		ctx,
		crypto.ShortSHA(s.tokenSalt, token),
	); err != nil {
		return errors.Wrap(err, "error removing session from store")
	}
	return nil
}
