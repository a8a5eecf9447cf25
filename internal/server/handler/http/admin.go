// Package http provides the HTTP handlers for the admin financial
// dashboard: revenue summary, transaction and report logs, and the
// payout-destination settings.
package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ekovaleva/trustdate/internal/models"
)

// Ledger is the admin-ledger surface the handlers need.
type Ledger interface {
	// Admin returns a snapshot of the admin ledger.
	Admin() models.AdminSettings
	// UpdatePayout replaces the payout-destination fields.
	UpdatePayout(ctx context.Context, bankName, accountNumber, routingNumber string)
}

// AdminHandler serves the admin dashboard API.
type AdminHandler struct {
	// Ledger provides the ledger snapshots and payout updates.
	Ledger Ledger
}

// SummaryResponse is the JSON payload of the summary endpoint.
type SummaryResponse struct {
	TotalRevenue     float64 `json:"totalRevenue"`
	TransactionCount int     `json:"transactionCount"`
	ReportCount      int     `json:"reportCount"`
	BankName         string  `json:"bankName"`
	AccountNumber    string  `json:"accountNumber"`
	RoutingNumber    string  `json:"routingNumber"`
}

// Summary returns the revenue total, log sizes and payout destination.
func (h *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	settings := h.Ledger.Admin()
	writeJSON(w, SummaryResponse{
		TotalRevenue:     settings.TotalRevenue,
		TransactionCount: len(settings.Transactions),
		ReportCount:      len(settings.Reports),
		BankName:         settings.BankName,
		AccountNumber:    settings.AccountNumber,
		RoutingNumber:    settings.RoutingNumber,
	})
}

// Transactions returns the append-only transaction log, newest first.
func (h *AdminHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Ledger.Admin().Transactions)
}

// Reports returns the append-only report log, newest first.
func (h *AdminHandler) Reports(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Ledger.Admin().Reports)
}

// PayoutRequest is the JSON payload for payout-destination updates.
// Free text; the prototype validates no formats.
type PayoutRequest struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	RoutingNumber string `json:"routingNumber"`
}

// UpdatePayout replaces the payout-destination fields.
func (h *AdminHandler) UpdatePayout(w http.ResponseWriter, r *http.Request) {
	var req PayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	h.Ledger.UpdatePayout(r.Context(), req.BankName, req.AccountNumber, req.RoutingNumber)
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
