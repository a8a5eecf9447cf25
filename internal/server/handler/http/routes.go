package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekovaleva/trustdate/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// NewRouter constructs the HTTP handler serving the admin dashboard API.
//
// Routes (all behind the access-key gate):
//
//	GET /api/admin/summary       → AdminHandler.Summary
//	GET /api/admin/transactions  → AdminHandler.Transactions
//	GET /api/admin/reports       → AdminHandler.Reports
//	PUT /api/admin/payout        → AdminHandler.UpdatePayout
//
// Middleware chain (applied in order):
//  1. WithRequestLogging(logger) — logs incoming requests
//  2. AccessKey(accessKey)       — enforces the shared admin key
func NewRouter(adminHandler *AdminHandler, accessKey string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))
	// Gate the whole dashboard behind the shared access key
	r.Use(middleware.AccessKey(accessKey))

	r.Route("/api/admin", func(r chi.Router) {
		r.Get("/summary", adminHandler.Summary)
		r.Get("/transactions", adminHandler.Transactions)
		r.Get("/reports", adminHandler.Reports)
		r.Put("/payout", adminHandler.UpdatePayout)
	})

	return r
}
