package model

import (
	"fmt"
	"time"
)

// Kind is the symbolic type of a capsule transaction
type Kind string

const (
	KindCreation     Kind = "creation"
	KindExecution    Kind = "execution"
	KindUnclassified Kind = "unclassified"
)

// ParseKind parses a kind name; the empty string is rejected.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindCreation, KindExecution, KindUnclassified:
		return k, nil
	}
	return "", fmt.Errorf("kind must be creation, execution or unclassified")
}

// Source identifies where a record was obtained
type Source string

const (
	SourceLocalCache Source = "local_cache"
	SourceLedgerRPC  Source = "ledger_rpc"
	SourceIndexerAPI Source = "indexer_api"
)

// Rank orders sources by richness for merge tie-breaking (higher wins).
func (s Source) Rank() int {
	switch s {
	case SourceIndexerAPI:
		return 3
	case SourceLedgerRPC:
		return 2
	case SourceLocalCache:
		return 1
	}
	return 0
}

// TransactionRecord is one transaction as reported by a single source.
// BlockTime is nil when the source could not tell; it is never zero-filled.
type TransactionRecord struct {
	Signature string `json:"signature"`
	BlockTime *int64 `json:"blockTime,omitempty"`
	Kind      Kind   `json:"kind"`
	Succeeded bool   `json:"succeeded"`
	Source    Source `json:"-"`
	Slot      uint64 `json:"slot,omitempty"`
	Fee       uint64 `json:"fee,omitempty"`
}

// HasTime reports whether the record carries a block time.
func (r TransactionRecord) HasTime() bool {
	return r.BlockTime != nil
}

// Time returns the block time, or the zero time when unknown.
func (r TransactionRecord) Time() time.Time {
	if r.BlockTime == nil {
		return time.Time{}
	}
	return time.Unix(*r.BlockTime, 0).UTC()
}

// Cursors are the durable "most recent" pointers per event type
type Cursors struct {
	LatestCreation  string `json:"latestCreation,omitempty"`
	LatestExecution string `json:"latestExecution,omitempty"`
}

// Ledger is the deduplicated, newest-first record list for one wallet
type Ledger struct {
	Wallet  string              `json:"wallet"`
	RunID   string              `json:"runId,omitempty"`
	Records []TransactionRecord `json:"records"`
	Cursors Cursors             `json:"cursors"`
}

// LedgerResponse represents response for GET /capsules/ledger
type LedgerResponse struct {
	Status string `json:"status"`
	Ledger
}

// LedgerRequest represents request parameters for GET /capsules/ledger
type LedgerRequest struct {
	Wallet    string     `form:"wallet"`
	Capsule   string     `form:"capsule"`
	Kind      *Kind      `form:"kind"`
	Signature *string    `form:"signature"`
	From      *time.Time `form:"from"`
	To        *time.Time `form:"to"`
}

// DateLayout is the format of the from/to filter dates.
const DateLayout = "2006-01-02"

// NewLedgerRequest builds a LedgerRequest from raw filter strings; empty
// strings leave a filter unset. The to date covers its whole day.
func NewLedgerRequest(wallet, capsule, kind, signature, from, to string) (*LedgerRequest, error) {
	req := &LedgerRequest{Wallet: wallet, Capsule: capsule}

	if from != "" {
		t, err := time.Parse(DateLayout, from)
		if err != nil {
			return nil, fmt.Errorf("invalid from date: use YYYY-MM-DD (e.g. 2006-01-02)")
		}
		req.From = &t
	}
	if to != "" {
		t, err := time.Parse(DateLayout, to)
		if err != nil {
			return nil, fmt.Errorf("invalid to date: use YYYY-MM-DD (e.g. 2006-01-02)")
		}
		// End of day so filter is inclusive
		t = t.Add(24*time.Hour - time.Nanosecond)
		req.To = &t
	}

	if kind != "" {
		k, err := ParseKind(kind)
		if err != nil {
			return nil, err
		}
		req.Kind = &k
	}

	if signature != "" {
		req.Signature = &signature
	}
	return req, nil
}

// Validate validates LedgerRequest filter parameters.
func (r *LedgerRequest) Validate() error {
	if r.Wallet == "" {
		return fmt.Errorf("wallet is required")
	}
	if r.Kind != nil {
		if _, err := ParseKind(string(*r.Kind)); err != nil {
			return err
		}
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return fmt.Errorf("to date must be after or equal to from date")
	}
	return nil
}

// Filter returns the records of l matching r, preserving order.
// Date bounds exclude records without a block time.
func (r *LedgerRequest) Filter(records []TransactionRecord) []TransactionRecord {
	out := make([]TransactionRecord, 0, len(records))
	for _, rec := range records {
		if r.Kind != nil && rec.Kind != *r.Kind {
			continue
		}
		if r.Signature != nil && rec.Signature != *r.Signature {
			continue
		}
		if r.From != nil || r.To != nil {
			if !rec.HasTime() {
				continue
			}
			ts := rec.Time()
			if r.From != nil && ts.Before(*r.From) {
				continue
			}
			if r.To != nil && ts.After(*r.To) {
				continue
			}
		}
		out = append(out, rec)
	}
	return out
}
