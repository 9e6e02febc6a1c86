package authn

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/dextrolabs/dextro/apiserver/internal/authx"
	"github.com/dextrolabs/dextro/apiserver/internal/lib/restmachinery"
	"github.com/dextrolabs/dextro/sdk/meta"
	"github.com/pkg/errors"
)

// VerifyTokenFn is the function used to verify a bearer identity token.
type VerifyTokenFn func(
	ctx context.Context,
	rawToken string,
) (authx.Principal, error)

type tokenAuthFilter struct {
	verifyToken VerifyTokenFn
}

// NewTokenAuthFilter returns an implementation of the restmachinery.Filter
// interface that authenticates requests carrying the provider's identity
// token as a bearer credential. There is no server-side session state in this
// mode: the token is re-verified on every request. A missing, malformed, or
// unverifiable credential yields a 401, never a 5xx.
func NewTokenAuthFilter(verifyToken VerifyTokenFn) restmachinery.Filter {
	return &tokenAuthFilter{
		verifyToken: verifyToken,
	}
}

func (t *tokenAuthFilter) Decorate(handle http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawToken, err := bearerToken(r)
		if err != nil {
			writeResponse(
				w,
				http.StatusUnauthorized,
				&meta.ErrAuthentication{
					Reason: err.Error(),
				},
			)
			return
		}
		principal, err := t.verifyToken(r.Context(), rawToken)
		if err != nil {
			if verr, ok := errors.Cause(err).(*authx.ErrVerification); ok {
				// The reason code is for our logs only; the client learns nothing
				// beyond "could not authenticate."
				log.Println(verr)
				writeResponse(
					w,
					http.StatusUnauthorized,
					&meta.ErrAuthentication{
						Reason: "Could not authenticate the supplied token.",
					},
				)
				return
			}
			log.Println(err)
			writeResponse(
				w,
				http.StatusInternalServerError,
				&meta.ErrInternalServer{},
			)
			return
		}
		ctx := authx.ContextWithPrincipal(r.Context(), principal)
		handle(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) (string, error) {
	headerValue := r.Header.Get("Authorization")
	if headerValue == "" {
		return "", errors.New(`"Authorization" header is missing.`)
	}
	headerValueParts := strings.SplitN(headerValue, " ", 2)
	if len(headerValueParts) != 2 || headerValueParts[0] != "Bearer" {
		return "", errors.New(`"Authorization" header is malformed.`)
	}
	return headerValueParts[1], nil
}

func writeResponse(
	w http.ResponseWriter,
	statusCode int,
	response interface{},
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	responseBody, err := json.Marshal(response)
	if err != nil {
		log.Println(errors.Wrap(err, "error marshaling response body"))
	}
	if _, err := w.Write(responseBody); err != nil {
		log.Println(errors.Wrap(err, "error writing response body"))
	}
}
