package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"futuremap/application/session"
	"futuremap/infrastructure/observability"
	"futuremap/interfaces/http/rest/handlers"
	"futuremap/interfaces/http/rest/middleware"
	"futuremap/pkg/auth"
	pkgerrors "futuremap/pkg/errors"
)

// Options toggles optional router features
type Options struct {
	EnableCORS     bool
	AllowedOrigins []string
}

// Router creates and configures the HTTP router
type Router struct {
	registry   *session.Registry
	validator  *auth.JWTValidator
	limiter    *auth.RateLimiter
	collector  *observability.Collector
	errHandler *pkgerrors.ErrorHandler
	opts       Options
	logger     *zap.Logger
}

// NewRouter creates a new router instance. The collector and limiter may be nil.
func NewRouter(
	registry *session.Registry,
	validator *auth.JWTValidator,
	limiter *auth.RateLimiter,
	collector *observability.Collector,
	errHandler *pkgerrors.ErrorHandler,
	opts Options,
	logger *zap.Logger,
) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		registry:   registry,
		validator:  validator,
		limiter:    limiter,
		collector:  collector,
		errHandler: errHandler,
		opts:       opts,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.collector != nil {
		router.Use(middleware.Metrics(rt.collector))
	}

	if rt.opts.EnableCORS {
		origins := rt.opts.AllowedOrigins
		if len(origins) == 0 {
			origins = []string{"http://localhost:3000"}
		}
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.collector != nil {
		router.Handle("/metrics", rt.collector.Handler())
	}

	canvasHandler := handlers.NewCanvasHandler(rt.registry, rt.errHandler, rt.logger)
	cardHandler := handlers.NewCardHandler(rt.registry, rt.errHandler, rt.logger)
	pathHandler := handlers.NewPathHandler(rt.registry, rt.errHandler, rt.logger)
	catalogHandler := handlers.NewCatalogHandler(rt.registry, rt.errHandler, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.validator, rt.errHandler, rt.logger))
		if rt.limiter != nil {
			r.Use(middleware.RateLimit(rt.limiter, rt.errHandler))
		}

		r.Get("/workspace", canvasHandler.GetWorkspace)

		r.Route("/canvases", func(r chi.Router) {
			r.Post("/", canvasHandler.CreateCanvas)

			r.Route("/{canvasID}", func(r chi.Router) {
				r.Get("/", canvasHandler.GetCanvas)
				r.Delete("/", canvasHandler.DeleteCanvas)
				r.Put("/current", canvasHandler.SelectCanvas)
				r.Get("/snap", canvasHandler.PreviewSnap)
				r.Get("/analysis", canvasHandler.Analyze)

				// Cards
				r.Post("/cards", cardHandler.PlaceCard)
				r.Put("/cards/{cardID}/position", cardHandler.MoveCard)
				r.Delete("/cards/{cardID}", cardHandler.RemoveCard)

				// Connections
				r.Post("/connections", cardHandler.AddConnection)
				r.Post("/connect/begin", cardHandler.BeginConnect)
				r.Post("/connect/complete", cardHandler.CompleteConnect)

				// Collaborators
				r.Post("/save", pathHandler.SavePath)
				r.Get("/export", pathHandler.Export)
			})
		})

		r.Post("/paths/load", pathHandler.LoadPaths)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", catalogHandler.GetCatalog)
			r.Post("/custom", catalogHandler.AddCustomBlock)
		})

		r.Get("/profile", catalogHandler.GetProfile)
		r.Put("/profile", catalogHandler.UpdateProfile)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports ready once the session registry is wired
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if rt.registry == nil || rt.validator == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"not ready"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
