package authn

import (
	"context"
	"log"
	"net/http"

	"github.com/dextrolabs/dextro/apiserver/internal/authx"
	"github.com/dextrolabs/dextro/apiserver/internal/lib/restmachinery"
	"github.com/dextrolabs/dextro/sdk/meta"
	"github.com/pkg/errors"
)

// SessionCookieName is the name of the cookie that carries the opaque session
// token.
const SessionCookieName = "dextro_session"

// ResolveSessionFn is the function used to resolve a session token to the
// Principal it was issued for.
type ResolveSessionFn func(
	ctx context.Context,
	token string,
) (authx.Principal, error)

type sessionAuthFilter struct {
	resolveSession ResolveSessionFn
}

// NewSessionAuthFilter returns an implementation of the restmachinery.Filter
// interface that authenticates requests against a server-side session
// correlated by a cookie-delivered opaque token. An absent cookie or a
// session that cannot be resolved yields a 401-- "unauthenticated," not a
// system fault.
func NewSessionAuthFilter(
	resolveSession ResolveSessionFn,
) restmachinery.Filter {
	return &sessionAuthFilter{
		resolveSession: resolveSession,
	}
}

func (s *sessionAuthFilter) Decorate(
	handle http.HandlerFunc,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			writeResponse(
				w,
				http.StatusUnauthorized,
				&meta.ErrAuthentication{
					Reason: "No session cookie found. Please log in.",
				},
			)
			return
		}
		principal, err := s.resolveSession(r.Context(), cookie.Value)
		if err != nil {
			if _, ok := errors.Cause(err).(*meta.ErrAuthentication); ok {
				writeResponse(
					w,
					http.StatusUnauthorized,
					errors.Cause(err),
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
		ctx = authx.ContextWithSessionToken(ctx, cookie.Value)
		handle(w, r.WithContext(ctx))
	}
}
