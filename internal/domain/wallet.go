package domain

import "time"

// Wallet is a per-store materialized balance. It is a derived cache: the
// webhook processor maintains it incrementally and the reconciliation job
// rebuilds it from the ledger and payout history, so it must always be
// reconstructable and never the source of truth.
type Wallet struct {
	Available         float64   `json:"available"`
	Pending           float64   `json:"pending"`
	Total             float64   `json:"total"`
	PendingWithdrawal float64   `json:"pendingWithdrawal"`
	TotalWithdrawn    float64   `json:"totalWithdrawn"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type WalletEntryType string

const (
	WalletEntryCredit WalletEntryType = "CREDIT"
	WalletEntryDebit  WalletEntryType = "DEBIT"
)

type WalletTransaction struct {
	Type      WalletEntryType `json:"type"`
	Amount    float64         `json:"amount"`
	InvoiceID string          `json:"invoiceId,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
