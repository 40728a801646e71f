package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lmdl25/kenility-challenge/internal/apperr"
	"github.com/lmdl25/kenility-challenge/internal/auth"
	"github.com/lmdl25/kenility-challenge/internal/http/apierr"
)

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(tokenString string) (auth.Claims, error)
}

// BearerAuth rejects requests that do not carry a valid bearer token and
// stores the authenticated username in the request context.
func BearerAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				unauthorized(w)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := auth.NewContext(r.Context(), claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	res := apierr.New(apperr.Unauthenticated)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)
	//nolint:errcheck
	json.NewEncoder(w).Encode(res)
}
