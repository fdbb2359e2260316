package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"futuremap/pkg/auth"
	pkgerrors "futuremap/pkg/errors"
)

// Authenticate validates the bearer token and stores the caller in the
// request context. The raw token travels with the user so the backend
// can be called on their behalf.
func Authenticate(validator *auth.JWTValidator, errHandler *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				errHandler.Handle(w, r, pkgerrors.NewUnauthorizedError("Missing authorization header"))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				errHandler.Handle(w, r, pkgerrors.NewUnauthorizedError("Invalid authorization header format"))
				return
			}
			token := strings.TrimSpace(parts[1])

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Debug("Token rejected", zap.Error(err))
				errHandler.Handle(w, r, pkgerrors.NewUnauthorizedError("Invalid or expired token"))
				return
			}

			ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{
				UserID: claims.UserID,
				Email:  claims.Email,
				Roles:  claims.Roles,
				Token:  token,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
