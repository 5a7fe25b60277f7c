package rest

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/cors"

	"github.com/fieldserve/reimbursement/internal/auth"
	"github.com/fieldserve/reimbursement/internal/category"
	userDatamodel "github.com/fieldserve/reimbursement/internal/core/datamodel/user"
	"github.com/fieldserve/reimbursement/internal/expense"
	"github.com/fieldserve/reimbursement/internal/ledger"
	"github.com/fieldserve/reimbursement/internal/payout"
	"github.com/fieldserve/reimbursement/internal/stats"
	"github.com/fieldserve/reimbursement/internal/transport/middleware"
	"github.com/fieldserve/reimbursement/internal/transport/swagger"
	"github.com/fieldserve/reimbursement/internal/user"
	"github.com/fieldserve/reimbursement/pkg/logger"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Health   *HealthHandler
	Auth     *auth.Handler
	Expense  *expense.Handler
	Payout   *payout.Handler
	Ledger   *ledger.Handler
	Stats    *stats.Handler
	Category *category.Handler
	User     *user.Handler
}

func NewRouter(h Handlers, tokens middleware.TokenResolver, openAPIPath string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RecoveryMiddleware(logger.L()))
	r.Use(middleware.LoggingMiddleware(logger.L()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/openapi.yml", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, openAPIPath)
	})
	r.Mount("/swagger", swagger.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", h.Health.Ping)
		r.Get("/health", h.Health.Health)
		r.Post("/auth/login", h.Auth.Login)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticator(tokens))

			r.Route("/claims", func(r chi.Router) {
				r.Post("/", h.Expense.SubmitClaim)
				r.Get("/", h.Expense.ListClaims)
				r.Get("/{id}", h.Expense.GetClaim)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(userDatamodel.RoleAdmin))
					r.Post("/{id}/approve", h.Expense.ApproveClaim)
					r.Post("/{id}/reject", h.Expense.RejectClaim)
				})
			})

			r.Get("/categories", h.Category.GetCategories)
			r.Get("/stats/me", h.Stats.Me)

			// Admin-only surface
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(userDatamodel.RoleAdmin))

				r.Get("/payouts/queue", h.Payout.Queue)
				r.Post("/payouts/{technicianId}", h.Payout.PayoutTechnician)

				r.Get("/ledger/balance", h.Ledger.Balance)
				r.Get("/ledger/history", h.Ledger.History)
				r.Post("/ledger/topup", h.Ledger.TopUp)

				r.Post("/categories", h.Category.CreateCategory)
				r.Patch("/categories/{id}", h.Category.UpdateCategory)
				r.Delete("/categories/{id}", h.Category.DeleteCategory)

				r.Get("/users", h.User.GetUsers)
				r.Get("/users/{id}", h.User.GetUser)
				r.Post("/users", h.User.CreateUser)
				r.Patch("/users/{id}", h.User.UpdateUser)
			})
		})
	})

	return r
}
