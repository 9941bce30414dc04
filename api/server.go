/*
server.go - HTTP router and middleware configuration

ROUTER: chi, with Logger/Recoverer/RequestID middleware and permissive CORS
for local frontends. No authentication middleware: session handling is the
host application's concern, not this engine's.

ROUTE GROUPS:
  /api/attendance/*   weekly reconciliation
  /api/payslips/*     monetary calculation, storage, PDF export
  /api/ledger/*       loan ledger operations
  /api/sync/*         change-notification hint
  /api/demo/*         demo data (dev only)
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates the router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/attendance", func(r chi.Router) {
			r.Post("/process", h.ProcessClockData)
			r.Post("/{employeeID}/scan", h.ScanStoredWeek)
		})

		r.Route("/payslips", func(r chi.Router) {
			r.Post("/", h.SavePayslip)
			r.Post("/calculate", h.CalculatePayslip)
			r.Get("/{id}/pdf", h.PayslipPDF)
		})

		r.Route("/ledger", func(r chi.Router) {
			r.Post("/transactions", h.RecordTransaction)
			r.Put("/transactions/{id}", h.EditTransaction)
			r.Get("/{employeeID}/transactions", h.ListTransactions)
			r.Get("/{employeeID}/balance", h.GetBalance)
			r.Post("/{employeeID}/recalculate", h.RecalculateBalances)
		})

		r.Route("/sync", func(r chi.Router) {
			r.Post("/notify", h.NotifyRowChanged)
		})

		r.Route("/demo", func(r chi.Router) {
			r.Post("/load", h.LoadDemoData)
		})
	})

	return r
}
