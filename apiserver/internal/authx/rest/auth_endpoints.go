package rest

import (
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/dextrolabs/dextro/apiserver/internal/authx"
	"github.com/dextrolabs/dextro/apiserver/internal/lib/restmachinery"
	"github.com/dextrolabs/dextro/apiserver/internal/lib/restmachinery/authn"
	"github.com/dextrolabs/dextro/sdk/meta"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// CookieConfig captures how session cookies must be issued for the
// deployment's cross-origin posture. When the frontend lives on a different
// origin than this API, the cookie requires the broadest same-site exemption
// (SameSite=None), and browsers will refuse to send such a cookie unless it
// is also marked Secure.
type CookieConfig struct {
	// CrossOrigin indicates the frontend and this API are on different
	// origins.
	CrossOrigin bool
}

func (c CookieConfig) sameSite() http.SameSite {
	if c.CrossOrigin {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// AuthEndpoints implements restmachinery.Endpoints to provide the sign-in,
// identity probe, and sign-out HTTP surface.
type AuthEndpoints struct {
	*restmachinery.BaseEndpoints
	Mode        authx.AuthMode
	Service     authx.SessionsService
	Verifier    authx.TokenVerifier
	FrontendURL string
	Cookie      CookieConfig
}

// Register is used to register these endpoints with an HTTP router.
func (a *AuthEndpoints) Register(router *mux.Router) {
	// Begin the OAuth dance
	router.HandleFunc(
		"/auth/google",
		a.begin, // No filters applied to this request
	).Methods(http.MethodGet)

	// Provider callback
	router.HandleFunc(
		"/auth/google/callback",
		a.callback, // No filters applied to this request
	).Methods(http.MethodGet)

	// Identity probes. These do their own resolution because the contract
	// calls for a {"user": null} body on failure rather than the generic
	// filter response.
	router.HandleFunc(
		"/auth/user",
		a.currentUser,
	).Methods(http.MethodGet)
	router.HandleFunc(
		"/login/success",
		a.currentUser,
	).Methods(http.MethodGet)

	// Sign out
	router.HandleFunc(
		"/auth/logout",
		a.logout,
	).Methods(http.MethodGet)
}

func (a *AuthEndpoints) begin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, a.Service.AuthURL(), http.StatusFound)
}

func (a *AuthEndpoints) callback(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close() // nolint: errcheck

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(
			w,
			"The authentication callback lacked the required code parameter.",
			http.StatusBadRequest,
		)
		return
	}

	result, err := a.Service.Authenticate(r.Context(), code)
	if err != nil {
		switch e := errors.Cause(err).(type) {
		case *authx.ErrExchange:
			// The provider's error detail stays in our logs. Clients get a
			// generic failure, and the dance is never retried: the code was
			// single-use.
			log.Println(errors.Wrap(e.Cause, "error redeeming authorization code"))
			http.Error(w, "Authentication failed", http.StatusInternalServerError)
		case *authx.ErrVerification:
			log.Println(e)
			http.Error(w, "Authentication failed", http.StatusUnauthorized)
		default:
			log.Println(err)
			http.Error(w, "Authentication failed", http.StatusInternalServerError)
		}
		return
	}

	if a.Mode == authx.AuthModeToken {
		// The identity token rides back to the frontend on the redirect. Query
		// parameters can leak through browser history; this mirrors the
		// frontend's existing contract.
		redirectURL := fmt.Sprintf(
			"%s/front2.html?token=%s",
			a.FrontendURL,
			url.QueryEscape(result.IDToken),
		)
		http.Redirect(w, r, redirectURL, http.StatusFound)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authn.SessionCookieName,
		Value:    result.SessionToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.Cookie.CrossOrigin,
		SameSite: a.Cookie.sameSite(),
	})
	http.Redirect(w, r, a.FrontendURL, http.StatusFound)
}

func (a *AuthEndpoints) currentUser(w http.ResponseWriter, r *http.Request) {
	principal, err := a.authenticateRequest(r)
	if err != nil {
		switch e := errors.Cause(err).(type) {
		case *meta.ErrAuthentication:
			// Expected: the caller simply isn't signed in.
		case *authx.ErrVerification:
			log.Println(e)
		default:
			log.Println(err)
		}
		a.WriteAPIResponse(
			w,
			http.StatusUnauthorized,
			map[string]interface{}{"user": nil},
		)
		return
	}
	a.WriteAPIResponse(
		w,
		http.StatusOK,
		map[string]interface{}{"user": principal},
	)
}

func (a *AuthEndpoints) logout(w http.ResponseWriter, r *http.Request) {
	if a.Mode == authx.AuthModeSession {
		if cookie, err := r.Cookie(authn.SessionCookieName); err == nil {
			// Idempotent; an already-deleted or never-issued session is fine.
			if err := a.Service.Logout(r.Context(), cookie.Value); err != nil {
				log.Println(err)
			}
		}
		http.SetCookie(w, &http.Cookie{
			Name:     authn.SessionCookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   a.Cookie.CrossOrigin,
			SameSite: a.Cookie.sameSite(),
			MaxAge:   -1,
		})
	}
	http.Redirect(w, r, a.FrontendURL, http.StatusFound)
}

// authenticateRequest resolves the caller's identity per the configured mode:
// cookie-correlated session state, or per-request verification of a bearer
// identity token.
func (a *AuthEndpoints) authenticateRequest(
	r *http.Request,
) (authx.Principal, error) {
	if a.Mode == authx.AuthModeSession {
		cookie, err := r.Cookie(authn.SessionCookieName)
		if err != nil {
			return authx.Principal{}, &meta.ErrAuthentication{
				Reason: "No session cookie found.",
			}
		}
		return a.Service.Resolve(r.Context(), cookie.Value)
	}
	headerValue := r.Header.Get("Authorization")
	if headerValue == "" {
		return authx.Principal{}, &meta.ErrAuthentication{
			Reason: `"Authorization" header is missing.`,
		}
	}
	const prefix = "Bearer "
	if len(headerValue) <= len(prefix) || headerValue[:len(prefix)] != prefix {
		return authx.Principal{}, &meta.ErrAuthentication{
			Reason: `"Authorization" header is malformed.`,
		}
	}
	return a.Verifier.Verify(r.Context(), headerValue[len(prefix):])
}
