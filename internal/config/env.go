package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/kelseyhightower/envconfig"
)

// Config contains all configuration parameters for the application.
type Config struct {
	Port         string `envconfig:"PORT" default:"8080"`
	SolanaRPCURL string `envconfig:"SOLANA_RPC_URL" default:"https://api.devnet.solana.com"`
	ProgramID    string `envconfig:"LUCID_PROGRAM_ID" required:"true"`
	Commitment   string `envconfig:"SOLANA_COMMITMENT" default:"confirmed"`

	// Indexer (Helius enhanced transactions). Disabled when HeliusAPIKey is empty.
	HeliusBaseURL        string `envconfig:"HELIUS_BASE_URL" default:"https://api-devnet.helius.xyz/v0"`
	HeliusAPIKey         string `envconfig:"HELIUS_API_KEY"`
	IndexerPageSize      int    `envconfig:"INDEXER_PAGE_SIZE" default:"100"`
	IndexerMaxPages      int    `envconfig:"INDEXER_MAX_PAGES" default:"5"`
	IndexerRatePerSecond int    `envconfig:"INDEXER_RATE_PER_SECOND" default:"5"`

	SignatureLimit    int `envconfig:"SIGNATURE_LIMIT" default:"100"`
	LookupConcurrency int `envconfig:"LOOKUP_CONCURRENCY" default:"8"`

	CoinGeckoURL string `envconfig:"COINGECKO_URL" default:"https://api.coingecko.com/api/v3"`
	PriceAssetID string `envconfig:"PRICE_ASSET_ID" default:"solana"`

	CacheDir string `envconfig:"LUCID_CACHE_DIR"`

	DormancyThresholdSeconds int64         `envconfig:"DORMANCY_THRESHOLD_SECONDS" default:"31536000"`
	SeriesPoints             int           `envconfig:"SERIES_POINTS" default:"6"`
	RecheckInterval          time.Duration `envconfig:"RECHECK_INTERVAL" default:"30s"`
	ClassifyFallback         string        `envconfig:"CLASSIFY_FALLBACK" default:"unclassified"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	if c.CacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to resolve home directory: %w", err)
		}
		c.CacheDir = filepath.Join(home, ".lucid")
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

// Set replaces the global configuration. Intended for tests and embedding.
func Set(c *Config) {
	cfg = c
}

// Validate checks values envconfig cannot check by itself.
func (c *Config) Validate() error {
	if _, err := solana.PublicKeyFromBase58(c.ProgramID); err != nil {
		return fmt.Errorf("invalid LUCID_PROGRAM_ID: %w", err)
	}
	switch rpc.CommitmentType(c.Commitment) {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return fmt.Errorf("SOLANA_COMMITMENT must be processed, confirmed or finalized")
	}
	switch strings.ToLower(c.ClassifyFallback) {
	case "unclassified", "creation":
	default:
		return fmt.Errorf("CLASSIFY_FALLBACK must be unclassified or creation")
	}
	if c.LookupConcurrency <= 0 {
		return fmt.Errorf("LOOKUP_CONCURRENCY must be positive")
	}
	if c.IndexerPageSize <= 0 || c.IndexerMaxPages <= 0 || c.IndexerRatePerSecond <= 0 {
		return fmt.Errorf("indexer page size, max pages and rate must be positive")
	}
	if c.SeriesPoints <= 0 {
		return fmt.Errorf("SERIES_POINTS must be positive")
	}
	if c.RecheckInterval <= 0 {
		return fmt.Errorf("RECHECK_INTERVAL must be positive")
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetSolanaRPCURL returns Solana RPC URL from configuration
func GetSolanaRPCURL() string {
	return Get().SolanaRPCURL
}

// GetProgramID returns the capsule program id
func GetProgramID() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(Get().ProgramID)
}

// GetCommitment returns the confirmation level used for RPC reads
func GetCommitment() rpc.CommitmentType {
	return rpc.CommitmentType(Get().Commitment)
}

// GetCacheDir returns the directory holding the local cache database
func GetCacheDir() string {
	return Get().CacheDir
}
