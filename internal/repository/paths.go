package repository

import "github.com/tindahan/ledger-service/internal/pathstore"

// Path layout under the hierarchical store. The ledger is the source of
// truth; wallets and indexes are derived and rebuildable.
func transactionPath(storeID, invoiceID string) string {
	return pathstore.Join("ledgers", "stores", storeID, "transactions", invoiceID)
}

func transactionsPath(storeID string) string {
	return pathstore.Join("ledgers", "stores", storeID, "transactions")
}

const ledgerStoresPath = "ledgers/stores"

func invoiceStoreIndexPath(invoiceID string) string {
	return pathstore.Join("indexes", "invoice_to_store", invoiceID)
}

func invoiceOrderIndexPath(invoiceID string) string {
	return pathstore.Join("indexes", "invoice_to_order", invoiceID)
}

func orderNumberIndexPath(orderNumber string) string {
	return pathstore.Join("indexes", "order_number", orderNumber)
}

func walletPath(storeID string) string {
	return pathstore.Join("wallets", storeID)
}

func walletTransactionPath(storeID, txnID string) string {
	return pathstore.Join("wallets", storeID, "transactions", txnID)
}

const globalCommissionPath = "settings/platform/commissionRate"

func storeCommissionPath(storeID string) string {
	return pathstore.Join("settings", "stores", storeID, "commissionRate")
}

func processedWebhookPath(invoiceID string) string {
	return pathstore.Join("processed_webhooks", invoiceID)
}

const payoutsPath = "payouts"

func payoutPath(payoutID string) string {
	return pathstore.Join("payouts", payoutID)
}

func orderPath(orderID string) string {
	return pathstore.Join("orders", orderID)
}
