package source

import (
	"context"
	stderrors "errors"
	"sort"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Joseph-hackathon/Lucid-solana/internal/cache"
	"github.com/Joseph-hackathon/Lucid-solana/internal/classify"
	"github.com/Joseph-hackathon/Lucid-solana/internal/client"
	"github.com/Joseph-hackathon/Lucid-solana/internal/errors"
	"github.com/Joseph-hackathon/Lucid-solana/internal/logging"
	"github.com/Joseph-hackathon/Lucid-solana/internal/metrics"
	"github.com/Joseph-hackathon/Lucid-solana/internal/model"
)

// LedgerRPCOptions configures a LedgerRPC adapter.
type LedgerRPCOptions struct {
	Client    LedgerClient
	ProgramID solana.PublicKey
	// Cache is optional. Cached signatures are resolved alongside the
	// listed ones, and cached signatures the node no longer knows are pruned.
	Cache          *cache.Cache
	SignatureLimit int
	Concurrency    int
	Policy         classify.Policy
	Logger         *zap.Logger
}

// LedgerRPC lists signatures from a ledger node and classifies each one
// from its transaction detail.
type LedgerRPC struct {
	opts   LedgerRPCOptions
	logger *zap.Logger
}

// NewLedgerRPC creates a LedgerRPC adapter.
func NewLedgerRPC(opts LedgerRPCOptions) *LedgerRPC {
	if opts.SignatureLimit <= 0 {
		opts.SignatureLimit = 100
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.Policy.Fallback == "" {
		opts.Policy = classify.DefaultPolicy
	}
	return &LedgerRPC{opts: opts, logger: logging.OrNop(opts.Logger)}
}

func (a *LedgerRPC) Name() model.Source {
	return model.SourceLedgerRPC
}

// candidate is a signature to resolve and what is already known about it.
type candidate struct {
	signature string
	listed    *client.SignatureInfo
	cached    bool
}

func (a *LedgerRPC) FetchForAccount(ctx context.Context, id Identity) ([]model.TransactionRecord, error) {
	records, _, err := a.FetchWithStale(ctx, id)
	return records, err
}

// FetchWithStale is FetchForAccount that also returns the cached signatures
// pruned from the cache during this pass.
func (a *LedgerRPC) FetchWithStale(ctx context.Context, id Identity) ([]model.TransactionRecord, []string, error) {
	wallet, err := solana.PublicKeyFromBase58(id.Wallet)
	if err != nil {
		return nil, nil, errors.NewInvalidRequest("invalid wallet address: " + err.Error())
	}

	listed, err := a.opts.Client.Signatures(ctx, wallet, a.opts.SignatureLimit)
	if err != nil {
		return nil, nil, errors.NewSourceUnavailable(string(a.Name()), err)
	}

	if id.Capsule != "" {
		capsuleKey, err := solana.PublicKeyFromBase58(id.Capsule)
		if err != nil {
			return nil, nil, errors.NewInvalidRequest("invalid capsule address: " + err.Error())
		}
		more, err := a.opts.Client.Signatures(ctx, capsuleKey, a.opts.SignatureLimit)
		if err != nil {
			a.logger.Warn("capsule signature listing failed",
				zap.String("wallet", id.Wallet),
				zap.String("capsule", id.Capsule),
				zap.Error(err))
		} else {
			listed = append(listed, more...)
		}
	}

	candidates, err := a.candidates(ctx, id.Wallet, listed)
	if err != nil {
		return nil, nil, errors.NewSourceUnavailable(string(a.Name()), err)
	}

	results := make([]*model.TransactionRecord, len(candidates))
	pruned := make([]bool, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Concurrency)
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			results[i], pruned[i] = a.resolve(gctx, id.Wallet, c)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, errors.NewSourceUnavailable(string(a.Name()), err)
	}

	records := make([]model.TransactionRecord, 0, len(results))
	var stale []string
	for i, r := range results {
		if pruned[i] {
			stale = append(stale, candidates[i].signature)
			continue
		}
		if r != nil {
			records = append(records, *r)
		}
	}
	return records, stale, nil
}

// candidates unions listed and cached signatures in a stable order.
func (a *LedgerRPC) candidates(ctx context.Context, wallet string, listed []client.SignatureInfo) ([]candidate, error) {
	bySig := make(map[string]*candidate)
	var order []string
	for i := range listed {
		info := listed[i]
		if c, ok := bySig[info.Signature]; ok {
			if c.listed == nil {
				c.listed = &info
			}
			continue
		}
		bySig[info.Signature] = &candidate{signature: info.Signature, listed: &info}
		order = append(order, info.Signature)
	}

	if a.opts.Cache != nil {
		var cached []string
		for _, p := range cache.Purposes {
			sigs, err := a.opts.Cache.Signatures(ctx, wallet, p)
			if err != nil {
				return nil, err
			}
			cached = append(cached, sigs...)
		}
		sort.Strings(cached)
		for _, sig := range cached {
			if c, ok := bySig[sig]; ok {
				c.cached = true
				continue
			}
			bySig[sig] = &candidate{signature: sig, cached: true}
			order = append(order, sig)
		}
	}

	out := make([]candidate, 0, len(order))
	for _, sig := range order {
		out = append(out, *bySig[sig])
	}
	return out, nil
}

// resolve fetches and classifies one signature. A nil result drops it;
// stale reports a cached signature the node has never seen.
func (a *LedgerRPC) resolve(ctx context.Context, wallet string, c candidate) (rec *model.TransactionRecord, stale bool) {
	detail, err := a.opts.Client.Transaction(ctx, c.signature)
	if err != nil {
		if stderrors.Is(err, client.ErrTransactionNotFound) && c.cached && c.listed == nil {
			// The node has never seen it: the cached signature is stale.
			if a.opts.Cache != nil {
				if ferr := a.opts.Cache.Forget(ctx, wallet, c.signature); ferr != nil {
					a.logger.Warn("failed to prune stale cached signature",
						zap.String("wallet", wallet),
						zap.String("signature", c.signature),
						zap.Error(ferr))
				}
			}
			a.logger.Info("pruned stale cached signature",
				zap.String("wallet", wallet),
				zap.String("signature", c.signature))
			return nil, true
		}

		metrics.DetailFailures.Inc()
		derr := errors.NewRecordDetailUnavailable(c.signature, err)
		a.logger.Warn("transaction detail unavailable",
			zap.String("wallet", wallet),
			zap.String("signature", c.signature),
			zap.String("source", string(a.Name())),
			zap.String("code", string(derr.Code)),
			zap.Error(err))
		if c.listed == nil {
			// Only known from the cache, which already reports it.
			return nil, false
		}
		return &model.TransactionRecord{
			Signature: c.signature,
			BlockTime: c.listed.BlockTime,
			Kind:      model.KindUnclassified,
			Succeeded: !c.listed.Failed,
			Source:    model.SourceLedgerRPC,
			Slot:      c.listed.Slot,
		}, false
	}

	res := classify.Classify(detail.Evidence(a.opts.ProgramID.String()), a.opts.Policy)
	if !res.InvolvesProgram && res.Kind == model.KindUnclassified {
		return nil, false
	}
	if res.Ambiguous {
		metrics.ClassificationFallbacks.WithLabelValues(string(res.Kind)).Inc()
		a.logger.Warn("classification ambiguous, fallback applied",
			zap.String("wallet", wallet),
			zap.String("signature", c.signature),
			zap.String("source", string(a.Name())),
			zap.String("kind", string(res.Kind)),
			zap.String("code", string(errors.ErrClassificationAmbiguous)))
	}

	blockTime := detail.BlockTime
	if blockTime == nil && c.listed != nil {
		blockTime = c.listed.BlockTime
	}
	return &model.TransactionRecord{
		Signature: c.signature,
		BlockTime: blockTime,
		Kind:      res.Kind,
		Succeeded: !detail.Failed,
		Source:    model.SourceLedgerRPC,
		Slot:      detail.Slot,
		Fee:       detail.Fee,
	}, false
}
