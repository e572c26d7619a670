/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address from proxy headers
  3. Logger:     Request logging through zap
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/calculate, /api/classify, /api/rules   Stateless engine
  /api/owners/*                               Owners, family, assets
  /api/assets/*                               Asset details, distributions
  /api/admin/*                                Asset review
  /api/scenarios/*                            Demo scenarios

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/calculate", h.Calculate)
		r.Post("/classify", h.Classify)
		r.Get("/rules", h.ListRules)

		// Owner routes
		r.Route("/owners", func(r chi.Router) {
			r.Get("/", h.ListOwners)
			r.Post("/", h.CreateOwner)
			r.Get("/{id}", h.GetOwner)
			r.Get("/{id}/family", h.ListFamily)
			r.Post("/{id}/family", h.AddFamilyMember)
			r.Delete("/{id}/family/{memberID}", h.RemoveFamilyMember)
			r.Get("/{id}/assets", h.ListOwnerAssets)
			r.Post("/{id}/assets", h.CreateAsset)
		})

		// Asset routes
		r.Route("/assets", func(r chi.Router) {
			r.Get("/{id}", h.GetAsset)
			r.Post("/{id}/distribution", h.CreateDistribution)
			r.Get("/{id}/distribution", h.GetDistribution)
			r.Get("/{id}/distributions", h.ListDistributions)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Get("/assets/pending", h.ListPendingAssets)
			r.Post("/assets/{id}/approve", h.ApproveAsset)
			r.Post("/assets/{id}/reject", h.RejectAsset)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Faraid Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Faraid Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/owners">/api/owners</a> - List owners</li>
<li><a href="/api/rules">/api/rules</a> - Fixed-share rules</li>
<li><a href="/api/scenarios">/api/scenarios</a> - List scenarios</li>
<li><a href="/api/admin/assets/pending">/api/admin/assets/pending</a> - Review queue</li>
</ul>
</body>
</html>`))
	})

	return r
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				logger.Info("request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
