// pkg/middleware/session.go
package middleware

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"redhio/pkg/metrics"
	"redhio/pkg/problems"
	"redhio/pkg/session"
)

// RequireSession resolves the request's shop against the store and attaches
// the session to the context. No install on record is a bodyless 401; a
// store outage is a 503, never reported as unauthenticated.
func RequireSession(resolver *session.Resolver, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			shop := ShopFrom(r.Context())
			s, err := resolver.Resolve(r.Context(), shop)
			if errors.Is(err, session.ErrUnauthenticated) {
				metrics.ProxyRejected.Inc()
				http.Error(w, "", http.StatusUnauthorized)
				return
			}
			if err != nil {
				log.Errorw("session store unavailable", "shop", shop, "err", err)
				problems.Write(w, http.StatusServiceUnavailable, "storage-unavailable", "session store unavailable")
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
		})
	}
}
