package solana

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/Joseph-hackathon/Lucid-solana/internal/cache"
	"github.com/Joseph-hackathon/Lucid-solana/internal/capsule"
	"github.com/Joseph-hackathon/Lucid-solana/internal/classify"
	"github.com/Joseph-hackathon/Lucid-solana/internal/client"
	"github.com/Joseph-hackathon/Lucid-solana/internal/config"
	"github.com/Joseph-hackathon/Lucid-solana/internal/dormancy"
	"github.com/Joseph-hackathon/Lucid-solana/internal/logging"
	"github.com/Joseph-hackathon/Lucid-solana/internal/reconcile"
	"github.com/Joseph-hackathon/Lucid-solana/internal/source"

	"github.com/gagliardetto/solana-go"
)

// AccountReader reads capsule accounts from the ledger.
type AccountReader interface {
	ProgramAccounts(ctx context.Context, programID solana.PublicKey) ([]capsule.Account, error)
	Account(ctx context.Context, address solana.PublicKey) (*capsule.Account, solana.PublicKey, error)
}

var _ AccountReader = (*client.SolanaClient)(nil)

// Service wires the clients, the local cache and the domain components
// behind the HTTP handlers and the CLI.
type Service struct {
	Accounts   AccountReader
	Aggregator *dormancy.Aggregator
	Pipeline   *reconcile.Pipeline
	// Indexer is the fallback for wallet activity when the ledger is empty. Optional.
	Indexer source.Indexer
	// Cache is optional; without it nothing is remembered between runs.
	Cache     *cache.Cache
	ProgramID solana.PublicKey

	ThresholdSeconds int64
	SeriesPoints     int

	Logger *zap.Logger
	Clock  func() time.Time

	closer io.Closer
}

// NewServiceFromConfig builds a Service from the global configuration,
// opening the SQLite cache under the configured directory.
func NewServiceFromConfig(logger *zap.Logger) (*Service, error) {
	cfg := config.Get()
	logger = logging.OrNop(logger)

	policy, err := classify.ParsePolicy(cfg.ClassifyFallback)
	if err != nil {
		return nil, err
	}

	store, err := cache.OpenSQLite(config.GetCacheDir())
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	localCache := cache.New(store)

	rpcClient := client.NewSolanaClientFromConfig()
	indexer := client.NewHeliusClientFromConfig(logger)
	prices := client.NewCoinGeckoClientFromConfig()
	programID := config.GetProgramID()

	adapters := []source.Adapter{
		source.NewLocalCache(localCache),
		source.NewLedgerRPC(source.LedgerRPCOptions{
			Client:         rpcClient,
			ProgramID:      programID,
			Cache:          localCache,
			SignatureLimit: cfg.SignatureLimit,
			Concurrency:    cfg.LookupConcurrency,
			Policy:         policy,
			Logger:         logger,
		}),
	}
	if indexer.Enabled() {
		adapters = append(adapters, source.NewIndexerAPI(indexer, programID.String(), policy, logger))
	} else {
		logger.Info("indexer api key not set, indexer source disabled")
	}

	return &Service{
		Accounts: rpcClient,
		Aggregator: &dormancy.Aggregator{
			Balances:    rpcClient,
			Prices:      prices,
			Concurrency: cfg.LookupConcurrency,
			Logger:      logger,
		},
		Pipeline: &reconcile.Pipeline{
			Adapters: adapters,
			Cache:    localCache,
			Logger:   logger,
		},
		Indexer:          indexer,
		Cache:            localCache,
		ProgramID:        programID,
		ThresholdSeconds: cfg.DormancyThresholdSeconds,
		SeriesPoints:     cfg.SeriesPoints,
		Logger:           logger,
		closer:           store,
	}, nil
}

// Close releases the cache database.
func (s *Service) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) logger() *zap.Logger {
	return logging.OrNop(s.Logger)
}
