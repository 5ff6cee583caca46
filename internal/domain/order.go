package domain

import "time"

type OrderPaymentStatus string

const (
	OrderPaymentPaid     OrderPaymentStatus = "PAID"
	OrderPaymentRefunded OrderPaymentStatus = "REFUNDED"
	OrderPaymentPending  OrderPaymentStatus = "pending"
)

// OrderPaymentStatusFor maps an invoice status onto the order record's
// payment status. Expired or voided invoices put the order back to pending so
// checkout can issue a fresh invoice.
func OrderPaymentStatusFor(s TransactionStatus) (OrderPaymentStatus, bool) {
	switch s {
	case StatusPaid, StatusSettled:
		return OrderPaymentPaid, true
	case StatusRefunded:
		return OrderPaymentRefunded, true
	case StatusExpired, StatusVoided:
		return OrderPaymentPending, true
	default:
		return "", false
	}
}

// Order is the slice of the marketplace order record this service touches.
// Order CRUD itself lives elsewhere; the webhook processor only flips the
// payment status of orders sharing the invoice's order number.
type Order struct {
	ID            string             `json:"id"`
	OrderNumber   string             `json:"orderNumber"`
	PaymentStatus OrderPaymentStatus `json:"paymentStatus,omitempty"`
	PaymentMethod string             `json:"paymentMethod,omitempty"`
	UpdatedAt     *time.Time         `json:"updatedAt,omitempty"`
}
