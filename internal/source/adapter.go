// Package source holds the adapters that each report a wallet's capsule
// transactions from one place: the local cache, the ledger RPC node or the
// indexer API. Adapters never merge; reconciliation happens downstream.
package source

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/Joseph-hackathon/Lucid-solana/internal/client"
	"github.com/Joseph-hackathon/Lucid-solana/internal/model"
)

// Identity names the account whose history is fetched.
type Identity struct {
	Wallet string
	// Capsule is the optional capsule account, queried alongside the wallet.
	Capsule string
}

// Adapter fetches the records one source knows for an identity.
// An error means the whole source is unavailable; per-record failures
// never surface as errors.
type Adapter interface {
	Name() model.Source
	FetchForAccount(ctx context.Context, id Identity) ([]model.TransactionRecord, error)
}

// PruningAdapter is an Adapter that can also prove signatures stale, such as
// cached signatures the ledger node has never seen. Stale signatures are
// dropped from every source's records before reconciliation.
type PruningAdapter interface {
	Adapter
	FetchWithStale(ctx context.Context, id Identity) (records []model.TransactionRecord, stale []string, err error)
}

// LedgerClient is the subset of the ledger RPC the LedgerRPC adapter uses.
type LedgerClient interface {
	Signatures(ctx context.Context, address solana.PublicKey, limit int) ([]client.SignatureInfo, error)
	Transaction(ctx context.Context, signature string) (*client.TransactionDetail, error)
}

// Indexer is the subset of the indexer API the IndexerAPI adapter uses.
type Indexer interface {
	Enabled() bool
	Transactions(ctx context.Context, address string) ([]client.IndexedTransaction, error)
}

var (
	_ LedgerClient = (*client.SolanaClient)(nil)
	_ Indexer      = (*client.HeliusClient)(nil)

	_ PruningAdapter = (*LedgerRPC)(nil)
)
