package solana

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Joseph-hackathon/Lucid-solana/internal/capsule"
	"github.com/Joseph-hackathon/Lucid-solana/internal/common"
	"github.com/Joseph-hackathon/Lucid-solana/internal/errors"
	"github.com/Joseph-hackathon/Lucid-solana/internal/metrics"
	"github.com/Joseph-hackathon/Lucid-solana/internal/model"
	"github.com/Joseph-hackathon/Lucid-solana/internal/source"

	"github.com/gagliardetto/solana-go"
)

// WalletActivity reports the most recent transaction known for wallet.
// The reconciled ledger is used first; when it holds no timed record the
// indexer's raw history is consulted. Source failures degrade to an empty
// activity rather than an error.
func (s *Service) WalletActivity(ctx context.Context, wallet string) (*model.WalletActivity, error) {
	if _, err := solana.PublicKeyFromBase58(wallet); err != nil {
		return nil, errors.NewInvalidRequest("invalid wallet address")
	}
	logger := s.logger().With(zap.String("wallet", wallet))
	act := &model.WalletActivity{Wallet: wallet}

	if s.Pipeline != nil {
		ledger, err := s.Pipeline.Run(ctx, source.Identity{Wallet: wallet})
		if err != nil {
			logger.Warn("ledger unavailable for wallet activity", zap.Error(err))
		} else if latest, ok := latestTimed(ledger.Records); ok {
			act.LastSignature = latest.Signature
			act.LastActivityMillis = common.NormalizeUnixMillis(*latest.BlockTime)
			act.TransactionCount = len(ledger.Records)
			act.Source = model.ActivitySourceLedger
			return act, nil
		}
	}

	s.indexerActivity(ctx, logger, act)
	return act, nil
}

func latestTimed(records []model.TransactionRecord) (model.TransactionRecord, bool) {
	var (
		latest model.TransactionRecord
		found  bool
	)
	for _, rec := range records {
		if !rec.HasTime() {
			continue
		}
		if !found || *rec.BlockTime > *latest.BlockTime {
			latest, found = rec, true
		}
	}
	return latest, found
}

// indexerActivity fills act from the newest indexed transaction of the wallet.
func (s *Service) indexerActivity(ctx context.Context, logger *zap.Logger, act *model.WalletActivity) {
	if s.Indexer == nil || !s.Indexer.Enabled() {
		return
	}
	txs, err := s.Indexer.Transactions(ctx, act.Wallet)
	if err != nil {
		metrics.SourceFailures.WithLabelValues(string(model.SourceIndexerAPI)).Inc()
		logger.Warn("indexer unavailable for wallet activity",
			zap.String("source", string(model.SourceIndexerAPI)),
			zap.String("code", string(errors.ErrSourceUnavailable)),
			zap.Error(err))
		return
	}
	if len(txs) == 0 {
		return
	}

	newest := txs[0]
	var newestMillis int64
	for _, tx := range txs {
		if tx.Timestamp == nil {
			continue
		}
		if ms := common.NormalizeUnixMillis(*tx.Timestamp); ms > newestMillis {
			newest, newestMillis = tx, ms
		}
	}
	act.LastSignature = newest.Signature
	act.LastActivityMillis = newestMillis
	act.TransactionCount = len(txs)
	act.Source = model.ActivitySourceIndexer
}

// recheckActivity clears the dormant verdict of an active capsule whose owner
// transacted within the capsule's inactivity period.
func (s *Service) recheckActivity(ctx context.Context, snap *capsule.Snapshot, resp *model.SnapshotResponse, now time.Time) {
	act, err := s.WalletActivity(ctx, snap.Owner.String())
	if err != nil {
		s.logger().Warn("wallet activity re-check failed", zap.String("wallet", snap.Owner.String()), zap.Error(err))
		return
	}
	resp.WalletActivity = act
	if act.LastActivityMillis == 0 {
		return
	}
	if now.Unix()-act.LastActivityMillis/1000 < snap.InactivityThresholdSeconds {
		resp.Dormant = false
	}
}
