package source

import (
	"context"

	"go.uber.org/zap"

	"github.com/Joseph-hackathon/Lucid-solana/internal/classify"
	"github.com/Joseph-hackathon/Lucid-solana/internal/client"
	"github.com/Joseph-hackathon/Lucid-solana/internal/errors"
	"github.com/Joseph-hackathon/Lucid-solana/internal/logging"
	"github.com/Joseph-hackathon/Lucid-solana/internal/metrics"
	"github.com/Joseph-hackathon/Lucid-solana/internal/model"
)

// IndexerAPI classifies the enriched history served by an indexer.
// It reports nothing when the indexer is not configured.
type IndexerAPI struct {
	indexer   Indexer
	programID string
	policy    classify.Policy
	logger    *zap.Logger
}

// NewIndexerAPI creates an IndexerAPI adapter.
func NewIndexerAPI(indexer Indexer, programID string, policy classify.Policy, logger *zap.Logger) *IndexerAPI {
	if policy.Fallback == "" {
		policy = classify.DefaultPolicy
	}
	return &IndexerAPI{
		indexer:   indexer,
		programID: programID,
		policy:    policy,
		logger:    logging.OrNop(logger),
	}
}

func (a *IndexerAPI) Name() model.Source {
	return model.SourceIndexerAPI
}

func (a *IndexerAPI) FetchForAccount(ctx context.Context, id Identity) ([]model.TransactionRecord, error) {
	if !a.indexer.Enabled() {
		return nil, nil
	}

	txs, err := a.indexer.Transactions(ctx, id.Wallet)
	if err != nil {
		return nil, errors.NewSourceUnavailable(string(a.Name()), err)
	}
	if id.Capsule != "" {
		more, err := a.indexer.Transactions(ctx, id.Capsule)
		if err != nil {
			a.logger.Warn("capsule history unavailable from indexer",
				zap.String("wallet", id.Wallet),
				zap.String("capsule", id.Capsule),
				zap.Error(err))
		} else {
			txs = append(txs, more...)
		}
	}

	seen := make(map[string]struct{}, len(txs))
	records := make([]model.TransactionRecord, 0, len(txs))
	for i := range txs {
		tx := &txs[i]
		if _, dup := seen[tx.Signature]; dup {
			continue
		}
		seen[tx.Signature] = struct{}{}

		rec, ok := a.toRecord(id.Wallet, tx)
		if ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (a *IndexerAPI) toRecord(wallet string, tx *client.IndexedTransaction) (model.TransactionRecord, bool) {
	res := classify.Classify(tx.Evidence(a.programID), a.policy)
	if !res.InvolvesProgram && res.Kind == model.KindUnclassified {
		return model.TransactionRecord{}, false
	}
	if res.Ambiguous {
		metrics.ClassificationFallbacks.WithLabelValues(string(res.Kind)).Inc()
		a.logger.Warn("classification ambiguous, fallback applied",
			zap.String("wallet", wallet),
			zap.String("signature", tx.Signature),
			zap.String("source", string(a.Name())),
			zap.String("kind", string(res.Kind)),
			zap.String("code", string(errors.ErrClassificationAmbiguous)))
	}
	return model.TransactionRecord{
		Signature: tx.Signature,
		BlockTime: tx.Timestamp,
		Kind:      res.Kind,
		Succeeded: !tx.Failed,
		Source:    model.SourceIndexerAPI,
		Slot:      tx.Slot,
		Fee:       tx.Fee,
	}, true
}
