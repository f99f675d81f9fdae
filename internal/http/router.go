package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/contas/internal/auth"
	authHandler "github.com/MrJamesThe3rd/contas/internal/http/auth"
	"github.com/MrJamesThe3rd/contas/internal/http/bill"
	"github.com/MrJamesThe3rd/contas/internal/http/export"
	"github.com/MrJamesThe3rd/contas/internal/http/importcsv"
	"github.com/MrJamesThe3rd/contas/internal/http/matching"
)

type Config struct {
	CORSOrigins []string
	JWT         *auth.JWTManager
	Metrics     prometheus.Gatherer
	// TokenIssuer, when set, exposes POST /api/v1/auth/token.
	TokenIssuer *authHandler.Handler
}

func New(
	cfg Config,
	billsV1 *bill.Handler,
	importV1 *importcsv.Handler,
	exportV1 *export.Handler,
	matchingV1 *matching.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if cfg.Metrics != nil {
		router.Handle("/metrics", promhttp.HandlerFor(cfg.Metrics, promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1", func(r chi.Router) {
		if cfg.TokenIssuer != nil {
			r.Route("/auth", cfg.TokenIssuer.Routes)
		}

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(cfg.JWT))

			r.Route("/bills", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				billsV1.Routes(r)
			})

			r.Route("/import", importV1.Routes)
			r.Route("/export", exportV1.Routes)
			r.Route("/matching", matchingV1.Routes)
		})
	})

	return router
}
