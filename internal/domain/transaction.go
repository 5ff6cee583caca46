package domain

import (
	"strings"
	"time"
)

type TransactionStatus string

const (
	StatusPending  TransactionStatus = "PENDING"
	StatusPaid     TransactionStatus = "PAID"
	StatusSettled  TransactionStatus = "SETTLED"
	StatusExpired  TransactionStatus = "EXPIRED"
	StatusVoided   TransactionStatus = "VOIDED"
	StatusRefunded TransactionStatus = "REFUNDED"
)

// NormalizeStatus maps a provider-supplied status string onto the canonical
// enum. Provider payloads have shipped "paid", "PAID" and "Paid" at various
// times; unknown values pass through verbatim so new provider states land in
// the ledger instead of being dropped.
func NormalizeStatus(raw string) TransactionStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PENDING":
		return StatusPending
	case "PAID":
		return StatusPaid
	case "SETTLED":
		return StatusSettled
	case "EXPIRED":
		return StatusExpired
	case "VOIDED":
		return StatusVoided
	case "REFUNDED":
		return StatusRefunded
	default:
		return TransactionStatus(raw)
	}
}

// Credits reports whether a transaction in this status has earned the store
// its share of the amount.
func (s TransactionStatus) Credits() bool {
	return s == StatusPaid || s == StatusSettled
}

type TransactionType string

const (
	TypeSale       TransactionType = "SALE"
	TypeAdjustment TransactionType = "ADJUSTMENT"
)

// LedgerTransaction is one record of a single payment attempt for one
// invoice, scoped to a store. Rows are append-mostly: once status leaves
// PENDING the monetary fields are frozen and corrections happen through
// sibling ADJUSTMENT rows.
type LedgerTransaction struct {
	InvoiceID             string            `json:"invoiceId"`
	StoreID               string            `json:"storeId"`
	OrderNumber           string            `json:"orderNumber,omitempty"`
	OrderID               string            `json:"orderId,omitempty"`
	Type                  TransactionType   `json:"type,omitempty"`
	Amount                float64           `json:"amount"`
	Commission            float64           `json:"commission"`
	CommissionRate        float64           `json:"commissionRate"`
	StoreAmount           float64           `json:"storeAmount"`
	Method                string            `json:"method,omitempty"`
	Status                TransactionStatus `json:"status"`
	InvoiceURL            string            `json:"invoiceUrl,omitempty"`
	ExpiryDate            *time.Time        `json:"expiryDate,omitempty"`
	CreatedAt             time.Time         `json:"createdAt"`
	PaidAt                *time.Time        `json:"paidAt,omitempty"`
	PreviousInvoiceID     string            `json:"previousInvoiceId,omitempty"`
	AdjustedFromInvoiceID string            `json:"adjustedFromInvoiceId,omitempty"`
	Reason                string            `json:"reason,omitempty"`
}

// TransactionUpdate is a partial update of a ledger row. Status, PaidAt,
// Method, InvoiceURL and ExpiryDate may change on any live row; the monetary
// and identity fields are only legal while the row is still PENDING (invoice
// replacement) and are rejected otherwise.
type TransactionUpdate struct {
	Status     *TransactionStatus
	PaidAt     *time.Time
	Method     *string
	InvoiceURL *string
	ExpiryDate *time.Time

	InvoiceID         *string
	PreviousInvoiceID *string
	Amount            *float64
	Commission        *float64
	CommissionRate    *float64
	StoreAmount       *float64
}

// TouchesMoney reports whether the update modifies fields that are frozen
// once the row has left PENDING.
func (u TransactionUpdate) TouchesMoney() bool {
	return u.Amount != nil || u.Commission != nil || u.CommissionRate != nil ||
		u.StoreAmount != nil || u.InvoiceID != nil
}
