package authx

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	jose "gopkg.in/square/go-jose.v2"
)

const (
	testIssuer   = "https://accounts.example.com"
	testClientID = "client-123.apps.example.com"
)

// staticKeySet verifies signatures against a fixed public key, standing in
// for a remote key set that would otherwise be fetched from the provider.
type staticKeySet struct {
	publicKey *rsa.PublicKey
}

func (s staticKeySet) VerifySignature(
	_ context.Context,
	rawToken string,
) ([]byte, error) {
	jws, err := jose.ParseSigned(rawToken)
	if err != nil {
		return nil, err
	}
	return jws.Verify(s.publicKey)
}

func newTestSigner(t *testing.T) (*rsa.PrivateKey, jose.Signer) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer, err := jose.NewSigner(
		jose.SigningKey{
			Algorithm: jose.RS256,
			Key:       privateKey,
		},
		nil,
	)
	require.NoError(t, err)
	return privateKey, signer
}

func mintToken(t *testing.T, signer jose.Signer, claims interface{}) string {
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	jws, err := signer.Sign(payload)
	require.NoError(t, err)
	rawToken, err := jws.CompactSerialize()
	require.NoError(t, err)
	return rawToken
}

func testClaims(issuedAt, expiry time.Time) map[string]interface{} {
	return map[string]interface{}{
		"iss":     testIssuer,
		"aud":     testClientID,
		"sub":     "123456",
		"email":   "jane@example.com",
		"name":    "Jane Doe",
		"picture": "https://example.com/jane.png",
		"iat":     issuedAt.Unix(),
		"exp":     expiry.Unix(),
	}
}

func TestVerifyValidToken(t *testing.T) {
	privateKey, signer := newTestSigner(t)
	verifier := NewTokenVerifier(
		testIssuer,
		testClientID,
		staticKeySet{publicKey: &privateKey.PublicKey},
	)
	issuedAt := time.Now().Truncate(time.Second)
	expiry := issuedAt.Add(time.Hour)
	rawToken := mintToken(t, signer, testClaims(issuedAt, expiry))
	principal, err := verifier.Verify(context.Background(), rawToken)
	require.NoError(t, err)
	require.Equal(t, "123456", principal.Subject)
	require.Equal(t, "jane@example.com", principal.Email)
	require.Equal(t, "Jane Doe", principal.Name)
	require.Equal(t, "https://example.com/jane.png", principal.Picture)
	require.Equal(t, issuedAt.Unix(), principal.IssuedAt.Unix())
	require.Equal(t, expiry.Unix(), principal.ExpiresAt.Unix())
}

func TestVerifyTokenWithAudienceArray(t *testing.T) {
	privateKey, signer := newTestSigner(t)
	verifier := NewTokenVerifier(
		testIssuer,
		testClientID,
		staticKeySet{publicKey: &privateKey.PublicKey},
	)
	claims := testClaims(time.Now(), time.Now().Add(time.Hour))
	claims["aud"] = []string{"some-other-client", testClientID}
	rawToken := mintToken(t, signer, claims)
	_, err := verifier.Verify(context.Background(), rawToken)
	require.NoError(t, err)
}

func TestVerifyExpiredToken(t *testing.T) {
	privateKey, signer := newTestSigner(t)
	verifier := NewTokenVerifier(
		testIssuer,
		testClientID,
		staticKeySet{publicKey: &privateKey.PublicKey},
	)
	rawToken := mintToken(
		t,
		signer,
		testClaims(time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour)),
	)
	_, err := verifier.Verify(context.Background(), rawToken)
	require.Error(t, err)
	verificationErr, ok := err.(*ErrVerification)
	require.True(t, ok)
	require.Equal(t, ReasonExpired, verificationErr.Reason)
}

func TestVerifyTokenSignedWithWrongKey(t *testing.T) {
	privateKey, _ := newTestSigner(t)
	_, wrongSigner := newTestSigner(t)
	verifier := NewTokenVerifier(
		testIssuer,
		testClientID,
		staticKeySet{publicKey: &privateKey.PublicKey},
	)
	rawToken := mintToken(
		t,
		wrongSigner,
		testClaims(time.Now(), time.Now().Add(time.Hour)),
	)
	_, err := verifier.Verify(context.Background(), rawToken)
	require.Error(t, err)
	verificationErr, ok := err.(*ErrVerification)
	require.True(t, ok)
	require.Equal(t, ReasonBadSignature, verificationErr.Reason)
}

func TestVerifyTokenWithWrongAudience(t *testing.T) {
	privateKey, signer := newTestSigner(t)
	verifier := NewTokenVerifier(
		testIssuer,
		testClientID,
		staticKeySet{publicKey: &privateKey.PublicKey},
	)
	claims := testClaims(time.Now(), time.Now().Add(time.Hour))
	claims["aud"] = "some-other-client"
	rawToken := mintToken(t, signer, claims)
	_, err := verifier.Verify(context.Background(), rawToken)
	require.Error(t, err)
	verificationErr, ok := err.(*ErrVerification)
	require.True(t, ok)
	require.Equal(t, ReasonAudienceMismatch, verificationErr.Reason)
}

func TestVerifyTokenWithWrongIssuer(t *testing.T) {
	privateKey, signer := newTestSigner(t)
	verifier := NewTokenVerifier(
		testIssuer,
		testClientID,
		staticKeySet{publicKey: &privateKey.PublicKey},
	)
	claims := testClaims(time.Now(), time.Now().Add(time.Hour))
	claims["iss"] = "https://accounts.evil.com"
	rawToken := mintToken(t, signer, claims)
	_, err := verifier.Verify(context.Background(), rawToken)
	require.Error(t, err)
	verificationErr, ok := err.(*ErrVerification)
	require.True(t, ok)
	require.Equal(t, ReasonAudienceMismatch, verificationErr.Reason)
}

func TestVerifyMalformedToken(t *testing.T) {
	privateKey, _ := newTestSigner(t)
	verifier := NewTokenVerifier(
		testIssuer,
		testClientID,
		staticKeySet{publicKey: &privateKey.PublicKey},
	)
	_, err := verifier.Verify(context.Background(), "this is not a token")
	require.Error(t, err)
	verificationErr, ok := err.(*ErrVerification)
	require.True(t, ok)
	require.Equal(t, ReasonMalformed, verificationErr.Reason)
}
