package model

// LocalHistoryResponse represents response for GET /capsules/history
type LocalHistoryResponse struct {
	Wallet           string            `json:"wallet"`
	Intents          []CachedIntent    `json:"intents"`
	ExecutedCapsules []CachedExecution `json:"executedCapsules"`
}

// CachedIntent is intent text remembered locally. SavedAtMillis is nil for
// entries stored without a timestamp.
type CachedIntent struct {
	SavedAtMillis *int64 `json:"savedAt,omitempty"`
	Text          string `json:"text"`
}

// CachedExecution is an executed capsule remembered locally.
type CachedExecution struct {
	Capsule     string `json:"capsule"`
	ExecutedAt  int64  `json:"executedAt"`
	ExecutionTx string `json:"executionTx,omitempty"`
	IntentData  string `json:"intentData,omitempty"`
}
