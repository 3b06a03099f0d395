package pending

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// IOPrefix prefixes the ids Track registers for in-flight requests.
const IOPrefix = "io:"

// Track wraps handlers so that every request is pending for as long as
// it is being served. The id is "io:" plus the chi request id, or a
// fresh uuid when the RequestID middleware is not installed.
func Track(reg *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := middleware.GetReqID(r.Context())
			if reqID == "" {
				reqID = uuid.NewString()
			}
			id := IOPrefix + reqID

			reg.Begin(id)
			defer reg.End(id)

			next.ServeHTTP(w, r)
		})
	}
}
