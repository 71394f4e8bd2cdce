package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/inkwell-blog/apiserver/internal/auth"
)

// SessionRevoker records logged-out session tokens and answers whether a
// token has been revoked. *auth.Denylist is the production implementation;
// a nil revoker disables revocation.
type SessionRevoker interface {
	Revoke(ctx context.Context, raw string, ttl time.Duration) error
	Revoked(ctx context.Context, raw string) (bool, error)
}

// RequireSession gates a request on a valid session cookie. A missing
// cookie is 401, a cookie that fails verification for any reason (garbled,
// forged, expired, or revoked via the denylist) is 403. On success the
// token's claims are attached to the request context and the request
// continues; the guard itself never touches stored state.
//
// The guard only establishes who is calling. Handlers that mutate a
// resource still compare the authenticated account against the resource's
// owner.
func RequireSession(tokens *auth.Tokens, denylist SessionRevoker, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				writeError(w, http.StatusUnauthorized, "you are not authenticated")
				return
			}

			if denylist != nil {
				// Fail closed: a denylist that cannot be reached must
				// not let revoked tokens back in.
				revoked, err := denylist.Revoked(r.Context(), cookie.Value)
				if err != nil || revoked {
					writeError(w, http.StatusForbidden, "token is not valid")
					return
				}
			}

			claims, err := tokens.Verify(cookie.Value)
			if err != nil {
				writeError(w, http.StatusForbidden, "token is not valid")
				return
			}

			ctx := context.WithValue(r.Context(), contextClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
