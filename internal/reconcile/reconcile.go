// Package reconcile merges the records reported by every source into one
// deduplicated, newest-first ledger per wallet.
//
// All merge and priority rules live here. For records sharing a signature
// the winner is chosen by, in order:
//
//  1. an Execution record over any other kind
//  2. a known, larger block time
//  3. the richer source (indexer, then ledger RPC, then local cache)
//
// Winners are sorted by block time descending with unknown times last,
// Execution before Creation on equal times, then by signature.
package reconcile

import (
	"sort"

	"github.com/Joseph-hackathon/Lucid-solana/internal/model"
)

// Reconcile merges every record set into a ledger for wallet.
// Input order never affects the result. Empty input yields an empty ledger.
func Reconcile(wallet string, sets ...[]model.TransactionRecord) model.Ledger {
	winners := make(map[string]model.TransactionRecord)
	for _, set := range sets {
		for _, rec := range set {
			if rec.Signature == "" {
				continue
			}
			if cur, ok := winners[rec.Signature]; ok {
				winners[rec.Signature] = Merge(cur, rec)
			} else {
				winners[rec.Signature] = rec
			}
		}
	}

	records := make([]model.TransactionRecord, 0, len(winners))
	for _, rec := range winners {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return before(records[i], records[j])
	})

	return model.Ledger{
		Wallet:  wallet,
		Records: records,
		Cursors: Cursors(records),
	}
}

// Merge returns the winner of two records for the same signature.
func Merge(a, b model.TransactionRecord) model.TransactionRecord {
	if beats(b, a) {
		return b
	}
	return a
}

// beats reports whether a should replace b. The order is total over every
// field, so merging is commutative.
func beats(a, b model.TransactionRecord) bool {
	aExec, bExec := a.Kind == model.KindExecution, b.Kind == model.KindExecution
	if aExec != bExec {
		return aExec
	}
	if a.HasTime() != b.HasTime() {
		return a.HasTime()
	}
	if a.HasTime() && *a.BlockTime != *b.BlockTime {
		return *a.BlockTime > *b.BlockTime
	}
	if a.Source.Rank() != b.Source.Rank() {
		return a.Source.Rank() > b.Source.Rank()
	}

	// Remaining ties only occur between near-identical records.
	if kindRank(a.Kind) != kindRank(b.Kind) {
		return kindRank(a.Kind) > kindRank(b.Kind)
	}
	if a.Succeeded != b.Succeeded {
		return a.Succeeded
	}
	if a.Slot != b.Slot {
		return a.Slot > b.Slot
	}
	if a.Fee != b.Fee {
		return a.Fee > b.Fee
	}
	return a.Source > b.Source
}

func kindRank(k model.Kind) int {
	switch k {
	case model.KindExecution:
		return 2
	case model.KindCreation:
		return 1
	}
	return 0
}

// before orders the ledger newest first.
func before(a, b model.TransactionRecord) bool {
	if a.HasTime() != b.HasTime() {
		return a.HasTime()
	}
	if a.HasTime() && *a.BlockTime != *b.BlockTime {
		return *a.BlockTime > *b.BlockTime
	}
	if kindRank(a.Kind) != kindRank(b.Kind) {
		return kindRank(a.Kind) > kindRank(b.Kind)
	}
	return a.Signature < b.Signature
}

// Cursors returns the newest successful Creation and Execution signatures
// of a ledger already sorted newest first.
func Cursors(records []model.TransactionRecord) model.Cursors {
	var c model.Cursors
	for _, rec := range records {
		if !rec.Succeeded {
			continue
		}
		switch rec.Kind {
		case model.KindCreation:
			if c.LatestCreation == "" {
				c.LatestCreation = rec.Signature
			}
		case model.KindExecution:
			if c.LatestExecution == "" {
				c.LatestExecution = rec.Signature
			}
		}
	}
	return c
}
