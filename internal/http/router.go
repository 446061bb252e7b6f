package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/bursar/internal/application"
	applicationhttp "github.com/MrJamesThe3rd/bursar/internal/http/application"
	authhttp "github.com/MrJamesThe3rd/bursar/internal/http/auth"
	"github.com/MrJamesThe3rd/bursar/internal/http/httperr"
	bursarmw "github.com/MrJamesThe3rd/bursar/internal/http/middleware"
	reporthttp "github.com/MrJamesThe3rd/bursar/internal/http/report"
	"github.com/MrJamesThe3rd/bursar/internal/http/scholarship"
)

type Options struct {
	AllowedOrigins []string
	Verifier       bursarmw.Verifier
	// Limiter throttles login and register per client IP. Nil disables it.
	Limiter         bursarmw.Limiter
	LoginLimit      int
	LoginWindow     time.Duration
	RateLimitPrefix string
	// Health reports whether the backing stores are reachable.
	Health func(ctx context.Context) error
}

func New(
	opts Options,
	authV1 *authhttp.Handler,
	scholarshipsV1 *scholarship.Handler,
	applicationsV1 *applicationhttp.Handler,
	reportsV1 *reporthttp.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "Retry-After"},
		MaxAge:         300,
	}))

	router.Get("/healthz", health(opts.Health))

	loginLimit := bursarmw.RateLimit(opts.Limiter, opts.RateLimitPrefix+":login", opts.LoginLimit, opts.LoginWindow)
	authenticate := bursarmw.Authenticate(opts.Verifier)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			authV1.Routes(r, loginLimit)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/me", authV1.MeRoutes)

			r.Route("/scholarships", scholarshipsV1.Routes)

			r.Route("/applications", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				applicationsV1.Routes(r)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(bursarmw.RequireRole(application.RoleReviewer, application.RoleFinance))
				reportsV1.Routes(r)
			})
		})
	})

	return router
}

func health(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				httperr.Message(w, http.StatusServiceUnavailable, "unavailable")
				return
			}
		}

		httperr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
