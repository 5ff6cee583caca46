package domain

// InvoiceMetadata is the opaque bag attached to every provider invoice. It
// duplicates the commission math and the store linkage so a webhook can be
// attributed even when the invoice index lookup fails.
type InvoiceMetadata struct {
	StoreID        string  `json:"store_id"`
	OrderNumber    string  `json:"order_number,omitempty"`
	OrderID        string  `json:"order_id,omitempty"`
	Commission     float64 `json:"commission"`
	CommissionRate float64 `json:"commission_rate"`
	StoreAmount    float64 `json:"store_amount"`
}

// InvoiceIndexEntry maps a provider invoice id back to the store scope it was
// issued under. Webhooks arrive keyed by invoice id only.
type InvoiceIndexEntry struct {
	StoreID     string `json:"storeId"`
	OrderNumber string `json:"orderNumber,omitempty"`
}
