package auth

import (
	"net/http"
	"strings"

	"github.com/user/taskdesk-go/apperror"
)

// tokenScheme is the authorization scheme: `Authorization: Token <key>`.
const tokenScheme = "Token"

// ParseTokenHeader extracts the token key from a raw Authorization header
// value. A missing header or one without the `Token ` prefix means no
// credential was supplied at all, which downstream is an authorization
// failure rather than an authentication one.
func ParseTokenHeader(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != tokenScheme {
		return "", false
	}
	key := strings.TrimSpace(parts[1])
	if key == "" {
		return "", false
	}
	return key, true
}

// TokenMiddleware authenticates requests with the opaque bearer tokens
// minted at register/login. The lookup is read-only: on success the
// resolved user is added to the request context, on failure the request is
// rejected before reaching the handler.
//
//   - no credential supplied → 403, authorization error
//   - credential supplied but unknown → 401, authentication failed
func TokenMiddleware(service Service) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := ParseTokenHeader(r.Header.Get("Authorization"))
			if !ok {
				WriteError(w, r, apperror.NewUnauthorizedError("authentication credentials were not provided", nil))
				return
			}

			user, err := service.ResolveToken(r.Context(), key)
			if err != nil {
				WriteError(w, r, err)
				return
			}

			ctx := NewContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
