package client

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/Joseph-hackathon/Lucid-solana/internal/capsule"
	"github.com/Joseph-hackathon/Lucid-solana/internal/classify"
	"github.com/Joseph-hackathon/Lucid-solana/internal/config"
)

// ErrTransactionNotFound is returned by Transaction when the node has no
// record of the signature.
var ErrTransactionNotFound = stderrors.New("transaction not found")

// ErrAccountNotFound is returned by Account when the address holds no account.
var ErrAccountNotFound = stderrors.New("account not found")

// SolanaClient is a client for working with Solana RPC
type SolanaClient struct {
	rpcClient  *rpc.Client
	rpcURL     string
	commitment rpc.CommitmentType
}

// NewSolanaClient creates a new Solana client for rpcURL.
func NewSolanaClient(rpcURL string, commitment rpc.CommitmentType) *SolanaClient {
	return &SolanaClient{
		rpcClient:  rpc.New(rpcURL),
		rpcURL:     rpcURL,
		commitment: commitment,
	}
}

// NewSolanaClientFromConfig creates a Solana client from the global configuration.
func NewSolanaClientFromConfig() *SolanaClient {
	return NewSolanaClient(config.GetSolanaRPCURL(), config.GetCommitment())
}

// SignatureInfo is one entry of a signature listing.
type SignatureInfo struct {
	Signature string
	Slot      uint64
	BlockTime *int64
	Failed    bool
}

// TransactionDetail is the part of a confirmed transaction the classifier needs.
type TransactionDetail struct {
	Signature string
	Slot      uint64
	BlockTime *int64
	Fee       uint64
	Failed    bool
	LogLines  []string
	// AccountKeys includes addresses loaded from lookup tables, in balance order.
	AccountKeys        []string
	Instructions       []classify.Instruction
	PreBalances        []uint64
	PostBalances       []uint64
	TokenTransferCount int
}

// Evidence converts d to classifier input for programID.
func (d *TransactionDetail) Evidence(programID string) classify.Evidence {
	return classify.Evidence{
		ProgramID:          programID,
		LogLines:           d.LogLines,
		Instructions:       d.Instructions,
		AccountKeys:        d.AccountKeys,
		PreBalances:        d.PreBalances,
		PostBalances:       d.PostBalances,
		TokenTransferCount: d.TokenTransferCount,
	}
}

// ProgramAccounts returns every account owned by programID.
func (c *SolanaClient) ProgramAccounts(ctx context.Context, programID solana.PublicKey) ([]capsule.Account, error) {
	out, err := c.rpcClient.GetProgramAccountsWithOpts(ctx, programID, &rpc.GetProgramAccountsOpts{
		Commitment: c.commitment,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get program accounts: %w", err)
	}

	accounts := make([]capsule.Account, 0, len(out))
	for _, keyed := range out {
		if keyed == nil || keyed.Account == nil || keyed.Account.Data == nil {
			continue
		}
		accounts = append(accounts, capsule.Account{
			Address: keyed.Pubkey,
			Data:    keyed.Account.Data.GetBinary(),
		})
	}
	return accounts, nil
}

// Account fetches one account and the program that owns it.
func (c *SolanaClient) Account(ctx context.Context, address solana.PublicKey) (*capsule.Account, solana.PublicKey, error) {
	out, err := c.rpcClient.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Commitment: c.commitment,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		if stderrors.Is(err, rpc.ErrNotFound) {
			return nil, solana.PublicKey{}, ErrAccountNotFound
		}
		return nil, solana.PublicKey{}, fmt.Errorf("failed to get account %s: %w", address, err)
	}
	if out == nil || out.Value == nil || out.Value.Data == nil {
		return nil, solana.PublicKey{}, ErrAccountNotFound
	}
	return &capsule.Account{Address: address, Data: out.Value.Data.GetBinary()}, out.Value.Owner, nil
}

// Signatures lists up to limit recent signatures touching address, newest first.
func (c *SolanaClient) Signatures(ctx context.Context, address solana.PublicKey, limit int) ([]SignatureInfo, error) {
	sigs, err := c.rpcClient.GetSignaturesForAddressWithOpts(ctx, address, &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: c.commitment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get signatures for %s: %w", address, err)
	}

	out := make([]SignatureInfo, 0, len(sigs))
	for _, s := range sigs {
		if s == nil {
			continue
		}
		info := SignatureInfo{
			Signature: s.Signature.String(),
			Slot:      s.Slot,
			Failed:    s.Err != nil,
		}
		if s.BlockTime != nil {
			bt := int64(*s.BlockTime)
			info.BlockTime = &bt
		}
		out = append(out, info)
	}
	return out, nil
}

// Transaction fetches the detail of one signature.
// It returns ErrTransactionNotFound when the node does not know the signature.
func (c *SolanaClient) Transaction(ctx context.Context, signature string) (*TransactionDetail, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature %q: %w", signature, err)
	}

	// maxVersion is hardcoded - no point making it env var because
	// new version support requires library update and rebuild anyway
	maxVersion := uint64(0)
	tx, err := c.rpcClient.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     c.commitment,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		if stderrors.Is(err, rpc.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction %s: %w", signature, err)
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}
	return detailFromResult(signature, tx)
}

// detailFromResult flattens an RPC transaction result.
func detailFromResult(signature string, tx *rpc.GetTransactionResult) (*TransactionDetail, error) {
	detail := &TransactionDetail{
		Signature: signature,
		Slot:      tx.Slot,
	}
	if tx.BlockTime != nil {
		bt := int64(*tx.BlockTime)
		detail.BlockTime = &bt
	}

	var keys solana.PublicKeySlice
	if tx.Transaction != nil {
		decoded, err := tx.Transaction.GetTransaction()
		if err != nil {
			return nil, fmt.Errorf("failed to decode transaction %s: %w", signature, err)
		}
		keys = append(keys, decoded.Message.AccountKeys...)
		if tx.Meta != nil {
			keys = append(keys, tx.Meta.LoadedAddresses.Writable...)
			keys = append(keys, tx.Meta.LoadedAddresses.ReadOnly...)
		}
		for _, ix := range decoded.Message.Instructions {
			programIdx := int(ix.ProgramIDIndex)
			if programIdx >= len(keys) {
				continue
			}
			detail.Instructions = append(detail.Instructions, classify.Instruction{
				ProgramID: keys[programIdx].String(),
				Data:      []byte(ix.Data),
			})
		}
	}
	detail.AccountKeys = make([]string, len(keys))
	for i, k := range keys {
		detail.AccountKeys[i] = k.String()
	}

	if meta := tx.Meta; meta != nil {
		detail.Failed = meta.Err != nil
		detail.Fee = meta.Fee
		detail.LogLines = meta.LogMessages
		detail.PreBalances = meta.PreBalances
		detail.PostBalances = meta.PostBalances
		detail.TokenTransferCount = countTokenRecipients(meta.PreTokenBalances, meta.PostTokenBalances)
	}
	return detail, nil
}

// countTokenRecipients counts token accounts whose amount increased.
func countTokenRecipients(pre, post []rpc.TokenBalance) int {
	before := make(map[uint16]uint64, len(pre))
	for _, b := range pre {
		before[b.AccountIndex] = tokenAmount(b)
	}
	n := 0
	for _, b := range post {
		if tokenAmount(b) > before[b.AccountIndex] {
			n++
		}
	}
	return n
}

func tokenAmount(b rpc.TokenBalance) uint64 {
	if b.UiTokenAmount == nil {
		return 0
	}
	amt, err := strconv.ParseUint(b.UiTokenAmount.Amount, 10, 64)
	if err != nil {
		return 0
	}
	return amt
}

// Balance returns the native balance of address in lamports.
func (c *SolanaClient) Balance(ctx context.Context, address solana.PublicKey) (uint64, error) {
	balance, err := c.rpcClient.GetBalance(ctx, address, c.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get SOL balance: %w", err)
	}
	return balance.Value, nil
}
