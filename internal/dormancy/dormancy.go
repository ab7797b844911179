// Package dormancy computes how many capsule owners have gone quiet for at
// least a threshold, how that count evolved, and what their wallets hold.
package dormancy

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Joseph-hackathon/Lucid-solana/internal/capsule"
	"github.com/Joseph-hackathon/Lucid-solana/internal/common"
	"github.com/Joseph-hackathon/Lucid-solana/internal/errors"
	"github.com/Joseph-hackathon/Lucid-solana/internal/logging"
	"github.com/Joseph-hackathon/Lucid-solana/internal/metrics"
)

// DefaultThresholdSeconds is 365 days.
const DefaultThresholdSeconds int64 = 365 * 24 * 60 * 60

// BalanceLookup returns the native balance of a wallet in lamports.
type BalanceLookup interface {
	Balance(ctx context.Context, owner solana.PublicKey) (uint64, error)
}

// PriceFeed returns the USD price of one native unit.
type PriceFeed interface {
	PriceUSD(ctx context.Context) (float64, error)
}

// Bucket is the dormant owner count as of one checkpoint.
type Bucket struct {
	Timestamp          int64 `json:"timestamp"`
	DormantWalletCount int   `json:"dormantWalletCount"`
}

// Summary is the result of one aggregation.
type Summary struct {
	Series        []int
	Labels        []string
	Buckets       []Bucket
	DormantCount  int
	DormantOwners []string
	TotalLamports uint64
	EstimatedSOL  float64
	PriceUSD      float64
	EstimatedUSD  float64
}

// Aggregator folds capsule snapshots into a dormancy Summary.
type Aggregator struct {
	Balances BalanceLookup
	// Prices is optional; without it the fiat estimate is zero.
	Prices      PriceFeed
	Concurrency int
	Logger      *zap.Logger
}

// Checkpoints returns n instants two calendar months apart, oldest first,
// the last one being now.
func Checkpoints(now time.Time, n int) []time.Time {
	now = now.UTC()
	out := make([]time.Time, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, now.AddDate(0, -2*i, 0))
	}
	return out
}

// LatestActivity maps each owner to the newest last-activity time across
// all of its snapshots.
func LatestActivity(snapshots []*capsule.Snapshot) map[solana.PublicKey]int64 {
	latest := make(map[solana.PublicKey]int64)
	for _, s := range snapshots {
		if s == nil {
			continue
		}
		if cur, ok := latest[s.Owner]; !ok || s.LastActivityUnixSeconds > cur {
			latest[s.Owner] = s.LastActivityUnixSeconds
		}
	}
	return latest
}

// IsDormant reports whether lastActivity is at least threshold seconds before at.
func IsDormant(at, lastActivity, threshold int64) bool {
	return at-lastActivity >= threshold
}

// Aggregate computes the Summary as of now.
func (a *Aggregator) Aggregate(ctx context.Context, snapshots []*capsule.Snapshot, now time.Time, thresholdSeconds int64, buckets int) Summary {
	logger := logging.OrNop(a.Logger)
	latest := LatestActivity(snapshots)

	var summary Summary
	for _, cp := range Checkpoints(now, buckets) {
		count := 0
		for _, last := range latest {
			if IsDormant(cp.Unix(), last, thresholdSeconds) {
				count++
			}
		}
		summary.Series = append(summary.Series, count)
		summary.Labels = append(summary.Labels, cp.Format("Jan"))
		summary.Buckets = append(summary.Buckets, Bucket{Timestamp: cp.Unix(), DormantWalletCount: count})
	}
	if summary.Series == nil {
		summary.Series, summary.Labels, summary.Buckets = []int{}, []string{}, []Bucket{}
	}

	var dormant []solana.PublicKey
	for owner, last := range latest {
		if IsDormant(now.Unix(), last, thresholdSeconds) {
			dormant = append(dormant, owner)
		}
	}
	sort.Slice(dormant, func(i, j int) bool { return dormant[i].String() < dormant[j].String() })

	summary.DormantCount = len(dormant)
	summary.DormantOwners = make([]string, len(dormant))
	for i, owner := range dormant {
		summary.DormantOwners[i] = owner.String()
	}
	metrics.DormantWallets.Set(float64(summary.DormantCount))

	summary.TotalLamports = a.sumBalances(ctx, logger, dormant)
	summary.EstimatedSOL = common.LamportsToSOLFloat(summary.TotalLamports)

	if a.Prices != nil {
		price, err := a.Prices.PriceUSD(ctx)
		if err != nil {
			metrics.PriceFeedFailures.Inc()
			ferr := errors.NewFeedUnavailable(err)
			logger.Warn("price feed unavailable, fiat estimate zeroed",
				zap.String("code", string(ferr.Code)),
				zap.Error(err))
		} else {
			summary.PriceUSD = price
			summary.EstimatedUSD = summary.EstimatedSOL * price
		}
	}

	logger.Info("dormancy aggregated",
		zap.Int("owners", len(latest)),
		zap.Int("dormant", summary.DormantCount),
		zap.String("dormant_sol", common.LamportsToSOL(summary.TotalLamports)),
		zap.Float64("price_usd", summary.PriceUSD))
	return summary
}

// sumBalances looks up every owner's balance with bounded concurrency.
// A failed lookup contributes zero.
func (a *Aggregator) sumBalances(ctx context.Context, logger *zap.Logger, owners []solana.PublicKey) uint64 {
	if a.Balances == nil || len(owners) == 0 {
		return 0
	}
	limit := a.Concurrency
	if limit <= 0 {
		limit = 8
	}

	var (
		mu    sync.Mutex
		total uint64
		g     errgroup.Group
	)
	g.SetLimit(limit)
	for _, owner := range owners {
		owner := owner
		g.Go(func() error {
			lamports, err := a.Balances.Balance(ctx, owner)
			if err != nil {
				logger.Warn("balance lookup failed, counting as zero",
					zap.String("wallet", owner.String()),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			total += lamports
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return total
}
