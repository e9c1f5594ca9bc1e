// Package api exposes the cached producer intervals over HTTP.
package api

import (
	"encoding/json"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/producer-intervals/internal/model"
	"github.com/sells-group/producer-intervals/internal/monitoring"
)

// Source is the read side of the query service.
type Source interface {
	ResultJSON() []byte
	Report() model.IngestReport
}

// Options configures the router.
type Options struct {
	// RateLimit is the sustained requests per second across all clients.
	// Zero disables limiting.
	RateLimit   float64
	RateBurst   int
	CORSOrigins []string

	Metrics *monitoring.Metrics // may be nil
	Health  monitoring.Evaluator

	// Docs holds openapi.yaml and docs.html. Nil uses the embedded copies.
	Docs fs.FS
}

// NewRouter builds the HTTP handler. Only GET is served; every other method,
// CORS preflight included, gets a JSON 405 before routing.
func NewRouter(src Source, opts Options) *chi.Mux {
	docs := opts.Docs
	if docs == nil {
		docs = embeddedDocs()
	}
	swagger, err := swaggerJSON(docs)
	if err != nil {
		zap.L().Warn("api: openapi document unavailable", zap.Error(err))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(opts.Metrics.Middleware)
	r.Use(requestLogger)
	r.Use(recoverer)
	r.Use(getOnly)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(rateLimit(opts.RateLimit, opts.RateBurst))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/producers/intervals", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(src.ResultJSON())
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, opts.Health.Evaluate(src.Report()))
	})

	r.Get("/metrics", opts.Metrics.Handler().ServeHTTP)

	r.Get("/docs/swagger.json", func(w http.ResponseWriter, _ *http.Request) {
		if swagger == nil {
			writeError(w, http.StatusNotFound, "Swagger not found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(swagger)
	})

	r.Get("/docs/swagger", func(w http.ResponseWriter, _ *http.Request) {
		html, err := fs.ReadFile(docs, docsHTMLFile)
		if err != nil {
			writeError(w, http.StatusNotFound, "Docs not found")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(html)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/swagger", http.StatusFound)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
