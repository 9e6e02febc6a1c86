package api

import (
	"context"
	"crypto/tls"
	"net/http"

	"github.com/dextrolabs/dextro/sdk/authx"
	"github.com/dextrolabs/dextro/sdk/meta"
)

// AuthClient is the specialized client for the API server's identity
// endpoints.
type AuthClient interface {
	// CurrentUser returns the identity of the caller per the token the client
	// was constructed with. A *meta.ErrAuthentication is returned when the
	// server does not recognize that token.
	CurrentUser(context.Context) (authx.Principal, error)
	// Logout ends the caller's session, if any. Logging out of a session that
	// does not exist is not an error.
	Logout(context.Context) error
}

type authClient struct {
	*baseClient
}

// NewAuthClient returns a specialized client for the API server's identity
// endpoints.
func NewAuthClient(
	apiAddress string,
	apiToken string,
	allowInsecure bool,
) AuthClient {
	return &authClient{
		baseClient: &baseClient{
			apiAddress: apiAddress,
			apiToken:   apiToken,
			httpClient: &http.Client{
				// Sign-out answers with a redirect to the frontend; following
				// it would be meaningless here.
				CheckRedirect: func(*http.Request, []*http.Request) error {
					return http.ErrUseLastResponse
				},
				Transport: &http.Transport{
					TLSClientConfig: &tls.Config{
						InsecureSkipVerify: allowInsecure, // nolint: gosec
					},
				},
			},
		},
	}
}

func (a *authClient) CurrentUser(
	context.Context,
) (authx.Principal, error) {
	respBody := struct {
		User *authx.Principal `json:"user"`
	}{}
	err := a.ExecuteRequest(
		OutboundRequest{
			Method:      http.MethodGet,
			Path:        "auth/user",
			AuthHeaders: a.BearerTokenAuthHeaders(),
			SuccessCode: http.StatusOK,
			RespObj:     &respBody,
		},
	)
	if err != nil {
		return authx.Principal{}, err
	}
	if respBody.User == nil {
		return authx.Principal{}, &meta.ErrAuthentication{
			Reason: "The API server did not recognize this client's credentials.",
		}
	}
	return *respBody.User, nil
}

func (a *authClient) Logout(context.Context) error {
	resp, err := a.SubmitRequest(
		OutboundRequest{
			Method:      http.MethodGet,
			Path:        "auth/logout",
			AuthHeaders: a.BearerTokenAuthHeaders(),
			SuccessCode: http.StatusFound,
		},
	)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}
