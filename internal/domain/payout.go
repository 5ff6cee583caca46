package domain

import (
	"strings"
	"time"
)

type PayoutStatus string

const (
	PayoutPending   PayoutStatus = "pending"
	PayoutApproved  PayoutStatus = "approved"
	PayoutCompleted PayoutStatus = "completed"
	PayoutRejected  PayoutStatus = "rejected"
)

// NormalizePayoutStatus lower-cases at the ingress boundary; payout records
// have shipped with mixed casing.
func NormalizePayoutStatus(raw string) PayoutStatus {
	return PayoutStatus(strings.ToLower(strings.TrimSpace(raw)))
}

// Holds reports whether the payout still reserves funds against the wallet.
func (s PayoutStatus) Holds() bool {
	return s == PayoutPending || s == PayoutApproved
}

// Payout is an external collaborator record: a store's withdrawal request,
// read during reconciliation but never written by this service.
type Payout struct {
	ID        string       `json:"id"`
	StoreID   string       `json:"storeId"`
	Amount    float64      `json:"amount"`
	Status    PayoutStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
}
