package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"somiti-server/internal/config"
	"somiti-server/internal/metrics"
	"somiti-server/internal/transport/httpserver/handler"
	"somiti-server/internal/transport/httpserver/middleware"
	"somiti-server/pkg/logger"
)

// NewRouter wires every endpoint. m may be nil when metrics are disabled.
func NewRouter(cfg config.Config, handlers *handler.Handlers, m *metrics.Metrics, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewRequestLogger(log))
	r.Use(chimw.Recoverer)
	if m != nil {
		r.Use(m.Middleware)
	}
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(middleware.NewCORS(cfg.AllowedOrigins))

	r.Get("/", handlers.Root)
	r.Get("/health", handlers.Health)
	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	r.Route("/users", func(r chi.Router) {
		r.Post("/", handlers.RegisterMember)
		r.Get("/", handlers.ListMembers)
		r.Post("/assign-user", handlers.AssignMember)
		r.Get("/profile", handlers.GetMemberProfile)
		r.Get("/profile/{id}", handlers.GetMemberProfile)
		r.Patch("/update-status/{id}", handlers.UpdateMemberStatus)
		r.Patch("/update-profile", handlers.UpdateMemberProfile)
		r.Patch("/last-login-at/{email}", handlers.TouchMemberLastLogin)
		r.Delete("/delete-user/{email}", handlers.DeleteMember)
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Post("/", handlers.CreateTransaction)
		r.Get("/", handlers.ListTransactions)
		r.Get("/summary", handlers.TransactionSummary)
		r.Delete("/{id}", handlers.DeleteTransaction)
	})

	r.Get("/statistics", handlers.Statistics)
	r.Get("/statistics/admin-report", handlers.AdminReport)
	r.Get("/leaderboard", handlers.Leaderboard)

	return r
}
