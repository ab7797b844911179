package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Joseph-hackathon/Lucid-solana/internal/config"
)

const (
	coingeckoAPI = "https://api.coingecko.com/api/v3"
)

// CoinGeckoClient client for CoinGecko API
type CoinGeckoClient struct {
	baseURL string
	assetID string
	client  *http.Client
}

// NewCoinGeckoClient creates a new CoinGecko client quoting assetID in USD.
// An empty baseURL selects the public API.
func NewCoinGeckoClient(baseURL, assetID string) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = coingeckoAPI
	}
	return &CoinGeckoClient{
		baseURL: baseURL,
		assetID: assetID,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewCoinGeckoClientFromConfig creates a CoinGecko client from the global configuration.
func NewCoinGeckoClientFromConfig() *CoinGeckoClient {
	cfg := config.Get()
	return NewCoinGeckoClient(cfg.CoinGeckoURL, cfg.PriceAssetID)
}

// PriceResponse response from CoinGecko simple price API, keyed by asset id
type PriceResponse map[string]struct {
	USD *float64 `json:"usd"`
}

// PriceUSD gets the current USD price of the configured asset
func (c *CoinGeckoClient) PriceUSD(ctx context.Context) (float64, error) {
	u := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.baseURL, url.QueryEscape(c.assetID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build price request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to get price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("failed to get price: status %d", resp.StatusCode)
	}

	var priceResp PriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&priceResp); err != nil {
		return 0, fmt.Errorf("failed to decode price: %w", err)
	}

	quote, ok := priceResp[c.assetID]
	if !ok || quote.USD == nil {
		return 0, fmt.Errorf("failed to get price: no usd quote for %s", c.assetID)
	}
	return *quote.USD, nil
}
