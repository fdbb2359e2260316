package middleware

import (
	"net"
	"net/http"

	"futuremap/pkg/auth"
	pkgerrors "futuremap/pkg/errors"
)

// RateLimit throttles requests per authenticated user, falling back to the
// client address for anonymous requests
func RateLimit(limiter *auth.RateLimiter, errHandler *pkgerrors.ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientKey(r)) {
				w.Header().Set("Retry-After", "1")
				errHandler.Handle(w, r, pkgerrors.NewRateLimitError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if user, err := auth.GetUserFromContext(r.Context()); err == nil {
		return "user:" + user.UserID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
