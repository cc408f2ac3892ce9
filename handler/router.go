package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/Konsultn-Engineering/registrar/config"
	"github.com/Konsultn-Engineering/registrar/metrics"
)

// RouterConfig holds the middleware settings of NewRouter.
type RouterConfig struct {
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
}

// RouterConfigFrom takes the middleware settings from the security section.
func RouterConfigFrom(cfg config.SecurityConfig) RouterConfig {
	return RouterConfig{
		CORSOrigins:       cfg.CORSOrigins,
		RateLimitRequests: cfg.RateLimitReqs,
		RateLimitWindow:   cfg.RateLimitWindow,
		RateLimitDisabled: cfg.RateLimitDisabled || cfg.RateLimitReqs == 0,
	}
}

// NewRouter mounts h. Health and metrics endpoints are not rate limited.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(Observe)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", RequestIDHeader, GrantsHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         86400,
	}))

	r.Get("/healthz", h.Healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		if !cfg.RateLimitDisabled {
			r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}
		r.Get(teacherResource, h.ListTeachers)
		r.Patch(teacherResource, h.UpdateTeacher)
		r.Get(studentResource, h.ListStudents)
		r.Patch(studentResource, h.UpdateStudent)
		r.Patch(completeResource, h.CompleteStudent)
	})
	return r
}
