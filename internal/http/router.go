package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/smartledger/smartledger/internal/auth"
	"github.com/smartledger/smartledger/internal/http/account"
	"github.com/smartledger/smartledger/internal/http/budget"
	"github.com/smartledger/smartledger/internal/http/dashboard"
	"github.com/smartledger/smartledger/internal/http/export"
	"github.com/smartledger/smartledger/internal/http/importcsv"
	"github.com/smartledger/smartledger/internal/http/insight"
	"github.com/smartledger/smartledger/internal/http/matching"
	"github.com/smartledger/smartledger/internal/http/respond"
	"github.com/smartledger/smartledger/internal/http/transaction"
)

type Options struct {
	ServiceName    string
	Timeout        time.Duration
	AllowedOrigins []string
}

type Handlers struct {
	Accounts     *account.Handler
	Transactions *transaction.Handler
	Import       *importcsv.Handler
	Export       *export.Handler
	Budgets      *budget.Handler
	Dashboard    *dashboard.Handler
	Insights     *insight.Handler
	Rules        *matching.Handler
}

func New(opts Options, verifier auth.Verifier, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	router.Get("/health", health(opts.ServiceName))

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			h.Accounts.PublicRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware(verifier))
				h.Accounts.Routes(r)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(verifier))

			r.Route("/transactions", func(r chi.Router) {
				h.Export.Routes(r)
				h.Import.Routes(r)
				h.Transactions.Routes(r)
			})

			r.Route("/budgets", h.Budgets.Routes)
			r.Route("/dashboard", h.Dashboard.Routes)
			r.Get("/categories", h.Transactions.Categories)
			r.Route("/ai", h.Insights.Routes)
			r.Route("/rules", h.Rules.Routes)
		})
	})

	return router
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func health(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, healthResponse{Status: "healthy", Service: service})
	}
}
