package authn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dextrolabs/dextro/apiserver/internal/authx"
	"github.com/dextrolabs/dextro/sdk/meta"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestSessionAuthFilterWithCookieMissing(t *testing.T) {
	a := NewSessionAuthFilter(nil)
	req, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	handlerCalled := false
	a.Decorate(func(http.ResponseWriter, *http.Request) {
		handlerCalled = true
	})(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.False(t, handlerCalled)
}

func TestSessionAuthFilterWithUnresolvableSession(t *testing.T) {
	a := NewSessionAuthFilter(
		func(context.Context, string) (authx.Principal, error) {
			return authx.Principal{}, &meta.ErrAuthentication{
				Reason: "Session not found. Please log in again.",
			}
		},
	)
	req, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale"})
	rr := httptest.NewRecorder()
	handlerCalled := false
	a.Decorate(func(http.ResponseWriter, *http.Request) {
		handlerCalled = true
	})(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.False(t, handlerCalled)
}

func TestSessionAuthFilterWithStoreFault(t *testing.T) {
	a := NewSessionAuthFilter(
		func(context.Context, string) (authx.Principal, error) {
			return authx.Principal{}, errors.New("store unreachable")
		},
	)
	req, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "foobar"})
	rr := httptest.NewRecorder()
	handlerCalled := false
	a.Decorate(func(http.ResponseWriter, *http.Request) {
		handlerCalled = true
	})(rr, req)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.False(t, handlerCalled)
}

func TestSessionAuthFilterWithValidSession(t *testing.T) {
	const sessionToken = "opensesame"
	a := NewSessionAuthFilter(
		func(_ context.Context, token string) (authx.Principal, error) {
			require.Equal(t, sessionToken, token)
			return testPrincipal, nil
		},
	)
	req, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionToken})
	rr := httptest.NewRecorder()
	var handlerCalled bool
	a.Decorate(func(_ http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		principal, ok := authx.PrincipalFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, testPrincipal.Subject, principal.Subject)
		require.Equal(t, sessionToken, authx.SessionTokenFromContext(r.Context()))
	})(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, handlerCalled)
}
