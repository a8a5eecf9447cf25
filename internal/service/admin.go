package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ekovaleva/trustdate/internal/models"
)

// newID mints a fresh entity id.
func newID() string {
	return uuid.NewString()
}

// recordRevenue appends a transaction (newest first) and adds its amount
// to the running total. The ledger is append-only and monotonic: nothing
// ever decreases the total or removes an entry. Callers must hold s.mu
// and persist the admin blob afterwards.
func (s *Session) recordRevenue(amount float64, label string, kind models.TransactionKind) {
	s.admin.Transactions = append([]models.Transaction{{
		ID:     newID(),
		Amount: amount,
		Date:   s.now().UnixMilli(),
		Label:  label,
		Kind:   kind,
	}}, s.admin.Transactions...)
	s.admin.TotalRevenue += amount
}

// UpdatePayout replaces the payout-destination fields. Free text, no
// format validation; nothing real is paid out.
func (s *Session) UpdatePayout(ctx context.Context, bankName, accountNumber, routingNumber string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin.BankName = bankName
	s.admin.AccountNumber = accountNumber
	s.admin.RoutingNumber = routingNumber
	s.saveAdmin(ctx)
}
