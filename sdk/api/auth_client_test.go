package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dextrolabs/dextro/sdk/meta"
	"github.com/stretchr/testify/require"
)

const (
	testAPIToken            = "opensesame"
	testClientAllowInsecure = false
)

func TestNewAuthClient(t *testing.T) {
	client := NewAuthClient(
		"https://api.example.com",
		testAPIToken,
		testClientAllowInsecure,
	)
	require.IsType(t, &authClient{}, client)
	require.Equal(
		t,
		"https://api.example.com",
		client.(*authClient).apiAddress,
	)
	require.Equal(t, testAPIToken, client.(*authClient).apiToken)
}

func TestAuthClientCurrentUser(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodGet, r.Method)
				require.Equal(t, "/auth/user", r.URL.Path)
				require.Contains(t, r.Header.Get("Authorization"), "Bearer")
				fmt.Fprintln(
					w,
					`{"user": {"subject": "123456", "email": "jane@example.com"}}`,
				)
			},
		),
	)
	defer server.Close()
	client := NewAuthClient(server.URL, testAPIToken, testClientAllowInsecure)
	principal, err := client.CurrentUser(context.Background())
	require.NoError(t, err)
	require.Equal(t, "123456", principal.Subject)
	require.Equal(t, "jane@example.com", principal.Email)
}

func TestAuthClientCurrentUserUnauthenticated(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprintln(w, `{"user": null}`)
			},
		),
	)
	defer server.Close()
	client := NewAuthClient(server.URL, testAPIToken, testClientAllowInsecure)
	_, err := client.CurrentUser(context.Background())
	require.Error(t, err)
	require.IsType(t, &meta.ErrAuthentication{}, err)
}

func TestAuthClientLogout(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodGet, r.Method)
				require.Equal(t, "/auth/logout", r.URL.Path)
				// The server redirects browsers back to the frontend
				http.Redirect(
					w,
					r,
					"https://frontend.example.com",
					http.StatusFound,
				)
			},
		),
	)
	defer server.Close()
	client := NewAuthClient(server.URL, testAPIToken, testClientAllowInsecure)
	require.NoError(t, client.Logout(context.Background()))
}
