package authx

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testOAuth2Config(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     testClientID,
		ClientSecret: "shhhh",
		RedirectURL:  "https://api.example.com/auth/google/callback",
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://provider.example.com/auth",
			TokenURL: tokenURL,
		},
	}
}

func TestAuthCodeURL(t *testing.T) {
	flow := NewOAuthFlow(testOAuth2Config("https://provider.example.com/token"), true, 0)
	authURL := flow.AuthCodeURL("opaque-state")
	require.Contains(t, authURL, "https://provider.example.com/auth")
	require.Contains(t, authURL, "access_type=offline")
	require.Contains(t, authURL, "scope=openid+profile+email")
	require.Contains(t, authURL, "state=opaque-state")
	require.Contains(t, authURL, "client_id="+testClientID)
}

func TestAuthCodeURLWithoutOfflineAccess(t *testing.T) {
	flow := NewOAuthFlow(
		testOAuth2Config("https://provider.example.com/token"),
		false,
		0,
	)
	require.NotContains(t, flow.AuthCodeURL("opaque-state"), "access_type")
}

// The fake token endpoint enforces the provider's single-use contract: the
// first redemption of a code succeeds and every subsequent one fails.
func newSingleUseTokenEndpoint(validCode string) http.HandlerFunc {
	var mu sync.Mutex
	redeemed := map[string]bool{}
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		code := r.FormValue("code")
		mu.Lock()
		alreadyRedeemed := redeemed[code]
		redeemed[code] = true
		mu.Unlock()
		if code != validCode || alreadyRedeemed {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error": "invalid_grant"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(
			w,
			`{
				"access_token": "test-access-token",
				"token_type": "Bearer",
				"refresh_token": "test-refresh-token",
				"id_token": "test-id-token",
				"expires_in": 3600
			}`,
		)
	}
}

func TestExchangeCode(t *testing.T) {
	server := httptest.NewServer(newSingleUseTokenEndpoint("good-code"))
	defer server.Close()
	flow := NewOAuthFlow(testOAuth2Config(server.URL), true, 0)
	tokens, err := flow.ExchangeCode(context.Background(), "good-code")
	require.NoError(t, err)
	require.Equal(t, "test-id-token", tokens.IDToken)
	require.Equal(t, "test-access-token", tokens.AccessToken)
	require.Equal(t, "test-refresh-token", tokens.RefreshToken)
}

func TestExchangeCodeTwice(t *testing.T) {
	server := httptest.NewServer(newSingleUseTokenEndpoint("good-code"))
	defer server.Close()
	flow := NewOAuthFlow(testOAuth2Config(server.URL), true, 0)
	_, err := flow.ExchangeCode(context.Background(), "good-code")
	require.NoError(t, err)
	_, err = flow.ExchangeCode(context.Background(), "good-code")
	require.Error(t, err)
	require.IsType(t, &ErrExchange{}, err)
}

func TestExchangeBadCode(t *testing.T) {
	server := httptest.NewServer(newSingleUseTokenEndpoint("good-code"))
	defer server.Close()
	flow := NewOAuthFlow(testOAuth2Config(server.URL), true, 0)
	_, err := flow.ExchangeCode(context.Background(), "bad-code")
	require.Error(t, err)
	require.IsType(t, &ErrExchange{}, err)
}

func TestExchangeResponseWithoutIDToken(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(
				w,
				`{"access_token": "test-access-token", "token_type": "Bearer"}`,
			)
		}),
	)
	defer server.Close()
	flow := NewOAuthFlow(testOAuth2Config(server.URL), true, 0)
	_, err := flow.ExchangeCode(context.Background(), "good-code")
	require.Error(t, err)
	require.IsType(t, &ErrExchange{}, err)
}

func TestExchangeTimeout(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}),
	)
	defer server.Close()
	flow := NewOAuthFlow(testOAuth2Config(server.URL), true, time.Millisecond)
	_, err := flow.ExchangeCode(context.Background(), "good-code")
	require.Error(t, err)
	require.IsType(t, &ErrExchange{}, err)
}
