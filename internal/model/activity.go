package model

// Activity sources
const (
	ActivitySourceLedger  = "ledger"
	ActivitySourceIndexer = "indexer_api"
)

// WalletActivity represents response for GET /capsules/activity.
// LastActivityMillis is in unix milliseconds and 0 when no timed transaction is known.
type WalletActivity struct {
	Wallet             string `json:"wallet"`
	LastSignature      string `json:"lastSignature"`
	LastActivityMillis int64  `json:"lastActivityTimestamp"`
	TransactionCount   int    `json:"transactionCount"`
	Source             string `json:"source,omitempty"`
}
