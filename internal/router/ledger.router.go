package router

import (
	"context"
	"net/http"
	"time"

	hrest "ledger-service/internal/handler/rest"
	"ledger-service/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func SetupRoutes(
	r chi.Router,
	h *hrest.LedgerRestHandler,
	store Pinger,
	logger *zap.Logger,
) chi.Router {
	// ---- Global Middleware ----
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hrest.Correlation)
	r.Use(hrest.LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", hrest.CorrelationHeader},
		ExposedHeaders:   []string{"Link", hrest.CorrelationHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			response.Error(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// ---------------- Money movement ----------------
		r.Route("/transactions", func(t chi.Router) {
			t.Post("/deposit", h.Deposit)
			t.Post("/withdraw", h.Withdraw)
			t.Post("/transfer", h.Transfer)
			t.Get("/", h.ListTransactions)
		})

		// ---------------- Accounts ----------------
		r.Route("/accounts", func(a chi.Router) {
			a.Post("/", h.CreateAccount)
			a.Route("/{number}", func(a chi.Router) {
				a.Get("/", h.GetAccount)
				a.Delete("/", h.DeactivateAccount)
				a.Get("/transactions", h.AccountTransactions)
				a.Get("/min-balance", h.MinBalance)
			})
		})

		// ---------------- Administration ----------------
		r.Route("/account-types", func(t chi.Router) {
			t.Post("/", h.CreateAccountType)
			t.Get("/", h.ListAccountTypes)
			t.Get("/{id}", h.GetAccountType)
			t.Put("/{id}", h.UpdateAccountType)
			t.Delete("/{id}", h.DeactivateAccountType)
		})
		r.Route("/branches", func(b chi.Router) {
			b.Post("/", h.AddBranch)
			b.Get("/", h.ListBranches)
			b.Get("/{ifsc}", h.GetBranch)
			b.Put("/{ifsc}", h.UpdateBranch)
			b.Delete("/{ifsc}", h.DeactivateBranch)
		})
		r.Route("/forms", func(f chi.Router) {
			f.Post("/", h.SubmitForm)
			f.Get("/{id}", h.GetForm)
			f.Post("/{id}/approve", h.ApproveForm)
		})
	})

	return r
}
