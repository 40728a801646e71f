package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/lmdl25/kenility-challenge/pkg/correlationid"
)

// CorrelationID ensures every request carries a correlation id. The incoming
// header wins, otherwise a fresh id is generated. The id is stored in the
// request context and echoed back on the response.
func CorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(correlationid.Header)
			if id == "" {
				id = uuid.NewString()
			}

			ctx := correlationid.NewContext(r.Context(), id)
			w.Header().Set(correlationid.Header, id)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
