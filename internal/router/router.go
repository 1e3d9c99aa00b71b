// Package router sets up all HTTP routes and middleware chains for
// inkpress. It organizes routes into the JSON API, the public blog and
// the operational endpoints.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inkpress/internal/apperr"
	"inkpress/internal/handlers"
	"inkpress/internal/middleware"
	"inkpress/web"
)

// Options tunes the router.
type Options struct {
	// HSTS adds Strict-Transport-Security; enable outside development.
	HSTS bool
}

// New creates the chi router with all middleware and route groups wired up.
func New(api *handlers.API, blog *handlers.Blog, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecureHeaders(opts.HSTS))

	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("web: embedded static directory missing: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Route("/api", func(r chi.Router) {
		r.NotFound(apiNotFound)
		r.MethodNotAllowed(apiMethodNotAllowed)

		r.Get("/stats", api.Stats)
		r.Get("/published", api.Published)

		r.Route("/articles", func(r chi.Router) {
			r.Get("/", api.List)
			r.Post("/", api.Create)
			r.Get("/slug/{slug}", api.GetBySlug)
			r.Post("/generate", api.Generate)
			r.Post("/generate/batch", api.GenerateBatch)

			r.Get("/{id}", api.GetByID)
			r.Patch("/{id}", api.Update)
			r.Delete("/{id}", api.Delete)
			r.Post("/{id}/featured-image", api.UploadFeaturedImage)
		})
	})

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/blog", http.StatusFound)
	})
	r.Get("/blog", blog.Index)
	r.Get("/blog/{slug}", blog.Post)
	r.NotFound(blog.NotFound)

	return r
}

func apiNotFound(w http.ResponseWriter, r *http.Request) {
	apperr.WriteJSON(w, r, apperr.NotFound("route"))
}

func apiMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	w.Write([]byte(`{"error":"method not allowed"}`))
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
