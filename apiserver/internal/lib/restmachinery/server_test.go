package restmachinery

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type testServerConfig struct{}

func (t testServerConfig) Port() int {
	return 8080
}

func (t testServerConfig) TLSEnabled() bool {
	return false
}

func (t testServerConfig) TLSCertPath() string {
	return ""
}

func (t testServerConfig) TLSKeyPath() string {
	return ""
}

func (t testServerConfig) AllowedOrigins() []string {
	return []string{"https://frontend.example.com"}
}

func newTestServerHandler() http.Handler {
	s := NewServer(
		testServerConfig{},
		&BaseEndpoints{},
		nil,
	).(*server)
	return s.handler
}

func TestLivenessEndpoint(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	newTestServerHandler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "Auth server is running")
}

func TestHealthEndpoint(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "/healthz", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	newTestServerHandler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	req, err := http.NewRequest(http.MethodOptions, "/", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://frontend.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	newTestServerHandler().ServeHTTP(rr, req)
	require.Equal(
		t,
		"https://frontend.example.com",
		rr.Header().Get("Access-Control-Allow-Origin"),
	)
	require.Equal(
		t,
		"true",
		rr.Header().Get("Access-Control-Allow-Credentials"),
	)
}

func TestCORSBlocksUnknownOrigin(t *testing.T) {
	req, err := http.NewRequest(http.MethodOptions, "/", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	newTestServerHandler().ServeHTTP(rr, req)
	require.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestWithoutOriginPassesThrough(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "/healthz", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	newTestServerHandler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}
