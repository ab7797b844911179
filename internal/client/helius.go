package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mr-tron/base58"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"

	"github.com/Joseph-hackathon/Lucid-solana/internal/classify"
	"github.com/Joseph-hackathon/Lucid-solana/internal/common"
	"github.com/Joseph-hackathon/Lucid-solana/internal/config"
	"github.com/Joseph-hackathon/Lucid-solana/internal/logging"
)

// HeliusClient pages through the Helius enhanced transactions API.
type HeliusClient struct {
	baseURL  string
	apiKey   string
	pageSize int
	maxPages int
	limiter  ratelimit.Limiter
	client   *http.Client
	logger   *zap.Logger
}

// HeliusOptions configures a HeliusClient.
type HeliusOptions struct {
	BaseURL        string
	APIKey         string
	PageSize       int
	MaxPages       int
	RatePerSecond  int
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// NewHeliusClient creates an indexer client. Zero options fall back to defaults.
func NewHeliusClient(opts HeliusOptions) *HeliusClient {
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 5
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 5
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	return &HeliusClient{
		baseURL:  opts.BaseURL,
		apiKey:   opts.APIKey,
		pageSize: opts.PageSize,
		maxPages: opts.MaxPages,
		limiter:  ratelimit.New(opts.RatePerSecond),
		client:   &http.Client{Timeout: opts.RequestTimeout},
		logger:   logging.OrNop(opts.Logger),
	}
}

// NewHeliusClientFromConfig creates an indexer client from the global configuration.
func NewHeliusClientFromConfig(logger *zap.Logger) *HeliusClient {
	cfg := config.Get()
	return NewHeliusClient(HeliusOptions{
		BaseURL:       cfg.HeliusBaseURL,
		APIKey:        cfg.HeliusAPIKey,
		PageSize:      cfg.IndexerPageSize,
		MaxPages:      cfg.IndexerMaxPages,
		RatePerSecond: cfg.IndexerRatePerSecond,
		Logger:        logger,
	})
}

// Enabled reports whether an API key is configured.
func (c *HeliusClient) Enabled() bool {
	return c.apiKey != ""
}

// IndexedTransaction is one transaction as described by the indexer.
type IndexedTransaction struct {
	Signature           string
	Timestamp           *int64
	Slot                uint64
	Fee                 uint64
	Failed              bool
	LogLines            []string
	AccountKeys         []string
	Instructions        []classify.Instruction
	NativeTransferCount int
	TokenTransferCount  int
}

// Evidence converts t to classifier input for programID.
func (t *IndexedTransaction) Evidence(programID string) classify.Evidence {
	return classify.Evidence{
		ProgramID:           programID,
		LogLines:            t.LogLines,
		Instructions:        t.Instructions,
		AccountKeys:         t.AccountKeys,
		NativeTransferCount: t.NativeTransferCount,
		TokenTransferCount:  t.TokenTransferCount,
	}
}

// Transactions returns the indexed history of address, newest first.
// A page failure ends paging and returns what was accumulated so far;
// only a failure of the first page is reported as an error.
func (c *HeliusClient) Transactions(ctx context.Context, address string) ([]IndexedTransaction, error) {
	var (
		out    []IndexedTransaction
		before string
	)
	for page := 0; page < c.maxPages; page++ {
		c.limiter.Take()
		if err := ctx.Err(); err != nil {
			return out, err
		}

		txs, raw, err := c.fetchPage(ctx, address, before)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			c.logger.Warn("indexer paging stopped",
				zap.String("address", address),
				zap.Int("page", page),
				zap.Error(err))
			return out, nil
		}
		out = append(out, txs...)

		if raw < c.pageSize || len(txs) == 0 {
			break
		}
		before = txs[len(txs)-1].Signature
	}
	return out, nil
}

// fetchPage fetches one page. raw is the number of entries in the page
// before malformed entries were dropped.
func (c *HeliusClient) fetchPage(ctx context.Context, address, before string) ([]IndexedTransaction, int, error) {
	q := url.Values{}
	q.Set("api-key", c.apiKey)
	q.Set("limit", strconv.Itoa(c.pageSize))
	if before != "" {
		q.Set("before", before)
	}
	u := fmt.Sprintf("%s/addresses/%s/transactions?%s", c.baseURL, url.PathEscape(address), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build indexer request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get indexed transactions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("failed to get indexed transactions: status %d", resp.StatusCode)
	}

	var body json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, 0, fmt.Errorf("failed to decode indexed transactions: %w", err)
	}
	entries, err := unwrapEnvelope(body)
	if err != nil {
		return nil, 0, err
	}

	txs := make([]IndexedTransaction, 0, len(entries))
	for _, e := range entries {
		tx, ok := parseIndexedTransaction(e)
		if !ok {
			continue
		}
		txs = append(txs, tx)
	}
	return txs, len(entries), nil
}

// unwrapEnvelope accepts a bare array or an object carrying the array
// under transactions, result or data.
func unwrapEnvelope(body json.RawMessage) ([]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var entries []json.RawMessage
		if err := json.Unmarshal(body, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode indexed transactions: %w", err)
		}
		return entries, nil
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode indexed transactions: %w", err)
	}
	for _, key := range []string{"transactions", "result", "data"} {
		raw, ok := env[key]
		if !ok {
			continue
		}
		var entries []json.RawMessage
		if err := json.Unmarshal(raw, &entries); err == nil {
			return entries, nil
		}
	}
	return nil, nil
}

type heliusInstruction struct {
	ProgramID         string              `json:"programId"`
	Data              string              `json:"data"`
	InnerInstructions []heliusInstruction `json:"innerInstructions"`
}

type heliusTransaction struct {
	Signature            string   `json:"signature"`
	TransactionSignature string   `json:"transactionSignature"`
	Signatures           []string `json:"signatures"`
	Transaction          *struct {
		Signatures []string `json:"signatures"`
	} `json:"transaction"`

	Timestamp *float64 `json:"timestamp"`
	BlockTime *float64 `json:"blockTime"`
	Slot      uint64   `json:"slot"`
	Fee       uint64   `json:"fee"`

	TransactionError json.RawMessage `json:"transactionError"`
	LogMessages      []string        `json:"logMessages"`
	Meta             *struct {
		Err         json.RawMessage `json:"err"`
		LogMessages []string        `json:"logMessages"`
	} `json:"meta"`
	Events json.RawMessage `json:"events"`

	NativeTransfers []json.RawMessage `json:"nativeTransfers"`
	TokenTransfers  []json.RawMessage `json:"tokenTransfers"`
	AccountData     []struct {
		Account string `json:"account"`
	} `json:"accountData"`
	Instructions []heliusInstruction `json:"instructions"`
}

func parseIndexedTransaction(raw json.RawMessage) (IndexedTransaction, bool) {
	var h heliusTransaction
	if err := json.Unmarshal(raw, &h); err != nil {
		return IndexedTransaction{}, false
	}

	tx := IndexedTransaction{
		Signature:           firstSignature(&h),
		Slot:                h.Slot,
		Fee:                 h.Fee,
		NativeTransferCount: len(h.NativeTransfers),
		TokenTransferCount:  len(h.TokenTransfers),
	}
	if tx.Signature == "" {
		return IndexedTransaction{}, false
	}

	ts := h.Timestamp
	if ts == nil {
		ts = h.BlockTime
	}
	if ts != nil && *ts > 0 {
		sec := common.NormalizeUnixSeconds(int64(*ts))
		tx.Timestamp = &sec
	}

	tx.Failed = isError(h.TransactionError)
	switch {
	case len(h.LogMessages) > 0:
		tx.LogLines = h.LogMessages
	case h.Meta != nil && len(h.Meta.LogMessages) > 0:
		tx.LogLines = h.Meta.LogMessages
	default:
		tx.LogLines = eventLogLines(h.Events)
	}
	if h.Meta != nil && isError(h.Meta.Err) {
		tx.Failed = true
	}

	for _, acc := range h.AccountData {
		if acc.Account != "" {
			tx.AccountKeys = append(tx.AccountKeys, acc.Account)
		}
	}
	tx.Instructions = flattenInstructions(h.Instructions, nil)
	return tx, true
}

func firstSignature(h *heliusTransaction) string {
	switch {
	case h.Signature != "":
		return h.Signature
	case h.TransactionSignature != "":
		return h.TransactionSignature
	case h.Transaction != nil && len(h.Transaction.Signatures) > 0:
		return h.Transaction.Signatures[0]
	case len(h.Signatures) > 0:
		return h.Signatures[0]
	}
	return ""
}

func isError(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// eventLogLines collects logMessage fields from an events array.
func eventLogLines(raw json.RawMessage) []string {
	var events []struct {
		LogMessage string `json:"logMessage"`
	}
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil
	}
	var lines []string
	for _, e := range events {
		if e.LogMessage != "" {
			lines = append(lines, e.LogMessage)
		}
	}
	return lines
}

// flattenInstructions returns top-level and inner instructions in order.
// Instruction data that is not valid base58 is kept empty.
func flattenInstructions(in []heliusInstruction, out []classify.Instruction) []classify.Instruction {
	for _, ix := range in {
		decoded, err := base58.Decode(ix.Data)
		if err != nil {
			decoded = nil
		}
		out = append(out, classify.Instruction{ProgramID: ix.ProgramID, Data: decoded})
		out = flattenInstructions(ix.InnerInstructions, out)
	}
	return out
}
