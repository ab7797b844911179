package reconcile

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Joseph-hackathon/Lucid-solana/internal/cache"
	"github.com/Joseph-hackathon/Lucid-solana/internal/errors"
	"github.com/Joseph-hackathon/Lucid-solana/internal/logging"
	"github.com/Joseph-hackathon/Lucid-solana/internal/metrics"
	"github.com/Joseph-hackathon/Lucid-solana/internal/model"
	"github.com/Joseph-hackathon/Lucid-solana/internal/source"
)

// Pipeline runs every adapter for an identity, reconciles their records
// and persists the resulting cursors.
type Pipeline struct {
	Adapters []source.Adapter
	// Cache receives cursors and newly seen signatures. Optional.
	Cache  *cache.Cache
	Logger *zap.Logger
	Clock  func() time.Time
}

func (p *Pipeline) now() time.Time {
	if p.Clock != nil {
		return p.Clock()
	}
	return time.Now()
}

// newRunID returns a fresh ULID.
func newRunID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Run performs one reconciliation pass. A failing adapter is logged and
// treated as empty; only when every adapter fails does Run return an
// ALL_SOURCES_FAILED error, alongside an empty ledger.
func (p *Pipeline) Run(ctx context.Context, id source.Identity) (model.Ledger, error) {
	logger := logging.OrNop(p.Logger)
	start := p.now()
	runID := newRunID(start)
	logger = logger.With(zap.String("run_id", runID), zap.String("wallet", id.Wallet))

	metrics.ReconcileRuns.Inc()
	defer func() {
		metrics.ReconcileDuration.Observe(p.now().Sub(start).Seconds())
	}()

	results := make([][]model.TransactionRecord, len(p.Adapters))
	stale := make([][]string, len(p.Adapters))
	errs := make([]error, len(p.Adapters))
	var g errgroup.Group
	for i, a := range p.Adapters {
		i, a := i, a
		g.Go(func() error {
			if pa, ok := a.(source.PruningAdapter); ok {
				results[i], stale[i], errs[i] = pa.FetchWithStale(ctx, id)
				return nil
			}
			results[i], errs[i] = a.FetchForAccount(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i, err := range errs {
		if err == nil {
			continue
		}
		// Invalid identities fail every adapter the same way.
		if errors.Is(err, errors.ErrInvalidRequest) {
			return model.Ledger{Wallet: id.Wallet, RunID: runID, Records: []model.TransactionRecord{}}, err
		}
		failed++
		results[i] = nil
		name := string(p.Adapters[i].Name())
		metrics.SourceFailures.WithLabelValues(name).Inc()
		logger.Warn("source unavailable, treating as empty",
			zap.String("source", name),
			zap.String("code", string(errors.ErrSourceUnavailable)),
			zap.Error(err))
	}

	if len(p.Adapters) > 0 && failed == len(p.Adapters) {
		logger.Error("all sources failed")
		return model.Ledger{Wallet: id.Wallet, RunID: runID, Records: []model.TransactionRecord{}},
			errors.NewAllSourcesFailed(id.Wallet, stderrors.Join(errs...))
	}

	if pruned := dropStale(results, stale); pruned > 0 {
		logger.Info("dropped stale signatures", zap.Int("records", pruned))
	}

	ledger := Reconcile(id.Wallet, results...)
	ledger.RunID = runID

	if p.Cache != nil {
		if err := p.persist(ctx, ledger); err != nil {
			logger.Warn("failed to persist cursors", zap.Error(err))
		}
	}

	logger.Info("reconciliation complete",
		zap.Int("records", len(ledger.Records)),
		zap.Int("failed_sources", failed),
		zap.String("latest_creation", ledger.Cursors.LatestCreation),
		zap.String("latest_execution", ledger.Cursors.LatestExecution))
	return ledger, nil
}

// dropStale removes every signature proven stale by one source from the
// records of all sources, in place. It returns the number of records removed.
func dropStale(results [][]model.TransactionRecord, stale [][]string) int {
	gone := make(map[string]struct{})
	for _, sigs := range stale {
		for _, sig := range sigs {
			gone[sig] = struct{}{}
		}
	}
	if len(gone) == 0 {
		return 0
	}

	removed := 0
	for i, recs := range results {
		kept := make([]model.TransactionRecord, 0, len(recs))
		for _, rec := range recs {
			if _, ok := gone[rec.Signature]; ok {
				removed++
				continue
			}
			kept = append(kept, rec)
		}
		results[i] = kept
	}
	return removed
}

// persist appends every classified signature to the cache history and
// advances the latest slots. A latest slot is only replaced by a cursor at
// least as recent as the signature it holds, or when that signature is no
// longer part of the ledger under the same kind.
func (p *Pipeline) persist(ctx context.Context, ledger model.Ledger) error {
	bySig := make(map[string]model.TransactionRecord, len(ledger.Records))
	for _, rec := range ledger.Records {
		bySig[rec.Signature] = rec
		purpose, ok := cache.PurposeFor(rec.Kind)
		if !ok || !rec.Succeeded {
			continue
		}
		if err := p.Cache.Remember(ctx, ledger.Wallet, purpose, rec.Signature); err != nil {
			return err
		}
	}

	cursors := map[cache.Purpose]string{
		cache.PurposeCreation:  ledger.Cursors.LatestCreation,
		cache.PurposeExecution: ledger.Cursors.LatestExecution,
	}
	for _, purpose := range cache.Purposes {
		cursor := cursors[purpose]
		if cursor == "" {
			continue
		}
		current, ok, err := p.Cache.Latest(ctx, ledger.Wallet, purpose)
		if err != nil {
			return err
		}
		if ok && current == cursor {
			continue
		}
		if ok && current != "" {
			held, inLedger := bySig[current]
			if inLedger && held.Kind == purpose.Kind() && !newerOrEqual(bySig[cursor], held) {
				continue
			}
		}
		if err := p.Cache.SetLatest(ctx, ledger.Wallet, purpose, cursor); err != nil {
			return err
		}
	}
	return nil
}

func newerOrEqual(a, b model.TransactionRecord) bool {
	if !a.HasTime() {
		return false
	}
	return !b.HasTime() || *a.BlockTime >= *b.BlockTime
}

// Watch runs the pipeline immediately and then every interval until ctx is
// done, handing each result to fn. A later result supersedes earlier ones.
func (p *Pipeline) Watch(ctx context.Context, id source.Identity, interval time.Duration, fn func(model.Ledger, error)) error {
	fn(p.Run(ctx, id))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn(p.Run(ctx, id))
		}
	}
}
