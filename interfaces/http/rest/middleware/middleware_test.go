package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"futuremap/infrastructure/observability"
	"futuremap/pkg/auth"
	pkgerrors "futuremap/pkg/errors"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		name   string
		user   *auth.UserContext
		remote string
		want   string
	}{
		{name: "authenticated user", user: &auth.UserContext{UserID: "u1"}, remote: "10.0.0.1:1234", want: "user:u1"},
		{name: "host and port", remote: "10.0.0.1:1234", want: "ip:10.0.0.1"},
		{name: "bare host", remote: "10.0.0.2", want: "ip:10.0.0.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.user != nil {
				r = r.WithContext(auth.SetUserInContext(r.Context(), tt.user))
			}
			assert.Equal(t, tt.want, clientKey(r))
		})
	}
}

func TestRateLimit_SetsRetryAfter(t *testing.T) {
	limiter := auth.NewRateLimiter(0.001, 1)
	h := RateLimit(limiter, pkgerrors.NewErrorHandler(zap.NewNop(), false))(http.HandlerFunc(okHandler))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
}

func TestAuthenticate_StoresCaller(t *testing.T) {
	validator, err := auth.NewJWTValidator(auth.JWTConfig{SecretKey: "s", Issuer: "futuremap"})
	require.NoError(t, err)
	gen, err := auth.NewJWTGenerator("s", "futuremap", time.Minute)
	require.NoError(t, err)
	token, err := gen.GenerateToken("u1", "u1@example.com", []string{"student"})
	require.NoError(t, err)

	var seen *auth.UserContext
	h := Authenticate(validator, pkgerrors.NewErrorHandler(zap.NewNop(), false), zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = auth.GetUserFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}),
	)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "u1", seen.UserID)
	assert.Equal(t, token, seen.Token)
	assert.Equal(t, []string{"student"}, seen.Roles)
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	collector := observability.NewCollector("futuremap")
	router := chi.NewRouter()
	router.Use(Metrics(collector))
	router.Get("/canvases/{canvasID}", okHandler)

	for _, id := range []string{"a", "b"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/canvases/"+id, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(
		collector.HTTPRequests.WithLabelValues(http.MethodGet, "/canvases/{canvasID}", "204"),
	))
}
