package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Joseph-hackathon/Lucid-solana/internal/cache"
	"github.com/Joseph-hackathon/Lucid-solana/internal/capsule"
	"github.com/Joseph-hackathon/Lucid-solana/internal/model"
	"github.com/Joseph-hackathon/Lucid-solana/internal/reconcile"
	"github.com/Joseph-hackathon/Lucid-solana/internal/source"
	lucid "github.com/Joseph-hackathon/Lucid-solana/solana"
)

type failingAccounts struct{}

func (failingAccounts) ProgramAccounts(context.Context, solana.PublicKey) ([]capsule.Account, error) {
	return nil, stderrors.New("rpc down")
}

func (failingAccounts) Account(context.Context, solana.PublicKey) (*capsule.Account, solana.PublicKey, error) {
	return nil, solana.PublicKey{}, stderrors.New("rpc down")
}

type staticAdapter struct {
	records []model.TransactionRecord
}

func (staticAdapter) Name() model.Source { return model.SourceLedgerRPC }

func (a staticAdapter) FetchForAccount(context.Context, source.Identity) ([]model.TransactionRecord, error) {
	return a.records, nil
}

// newTestEnv returns an env whose service is svc; open fails the test
// when svc is nil.
func newTestEnv(t *testing.T, svc *lucid.Service) (*env, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return &env{
		out:    out,
		logger: zap.NewNop(),
		open: func() (*lucid.Service, error) {
			if svc == nil {
				t.Fatal("service opened unexpectedly")
			}
			return svc, nil
		},
	}, out
}

func run(e *env, args ...string) error {
	return newCLIApp(e).Run(append([]string{"lucid"}, args...))
}

func testSnapshotBytes() []byte {
	exec := int64(1_700_000_500)
	return capsule.Encode(&capsule.Snapshot{
		Owner:                      solana.MustPublicKeyFromBase58("LuciDxq9ZJxQ6C5KwF3yrcmE8XZyTTyWUpchm1G4bNn"),
		InactivityThresholdSeconds: 3600,
		LastActivityUnixSeconds:    1_700_000_000,
		Payload:                    []byte("hi"),
		IsActive:                   true,
		ExecutedAtUnixSeconds:      &exec,
	})
}

func TestDecodeCommand(t *testing.T) {
	data := testSnapshotBytes()
	for _, args := range [][]string{
		{"decode", "--hex", hex.EncodeToString(data)},
		{"decode", "--hex", "0x" + hex.EncodeToString(data)},
		{"decode", "--base64", base64.StdEncoding.EncodeToString(data)},
	} {
		e, out := newTestEnv(t, nil)
		require.NoError(t, run(e, args...), args[1])

		var resp model.SnapshotResponse
		require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
		assert.Equal(t, "LuciDxq9ZJxQ6C5KwF3yrcmE8XZyTTyWUpchm1G4bNn", resp.Owner)
		assert.Equal(t, int64(1_700_003_600), resp.ExecutableAtUnixSeconds)
		assert.Equal(t, "aGk=", resp.PayloadBase64)
		require.NotNil(t, resp.ExecutedAtUnixSeconds)
		assert.Equal(t, int64(1_700_000_500), *resp.ExecutedAtUnixSeconds)
		assert.Empty(t, resp.Address)
	}
}

func TestDecodeCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no input", []string{"decode"}, "--hex or --base64 is required"},
		{"both inputs", []string{"decode", "--hex", "00", "--base64", "AA=="}, "not both"},
		{"bad hex", []string{"decode", "--hex", "zz"}, "invalid hex"},
		{"bad base64", []string{"decode", "--base64", "%%%"}, "invalid base64"},
		{"truncated", []string{"decode", "--hex", "0011"}, "DECODE_FAILURE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, out := newTestEnv(t, nil)
			err := run(e, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, out.String())
		})
	}
}

func TestStatsCommandPrintsEmptyShapeOnFailure(t *testing.T) {
	svc := &lucid.Service{
		Accounts:     failingAccounts{},
		SeriesPoints: 6,
		Clock:        func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) },
	}
	e, out := newTestEnv(t, svc)
	require.NoError(t, run(e, "stats"))

	// compact output when not writing to a terminal
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))

	var resp model.StatsResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0}, resp.Series)
	assert.Equal(t, "lucid-program", resp.Source)
}

func TestLedgerCommand(t *testing.T) {
	wallet := solana.NewWallet().PublicKey().String()
	bt := int64(1_760_000_000)
	c := cache.New(cache.NewMemory())
	svc := &lucid.Service{
		Pipeline: &reconcile.Pipeline{
			Adapters: []source.Adapter{staticAdapter{records: []model.TransactionRecord{
				{Signature: "e1", Kind: model.KindExecution, BlockTime: &bt, Succeeded: true, Source: model.SourceLedgerRPC},
				{Signature: "c1", Kind: model.KindCreation, BlockTime: &bt, Succeeded: true, Source: model.SourceLedgerRPC},
			}}},
			Cache: c,
		},
		Cache: c,
	}
	e, out := newTestEnv(t, svc)
	require.NoError(t, run(e, "ledger", "--wallet", wallet, "--kind", "creation"))

	var resp model.LedgerResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "c1", resp.Records[0].Signature)
	assert.Equal(t, "e1", resp.Cursors.LatestExecution)
}

func TestLedgerCommandRejectsBadFilterBeforeOpening(t *testing.T) {
	e, _ := newTestEnv(t, nil)
	err := run(e, "ledger", "--wallet", "W", "--kind", "transfer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_REQUEST")
}

func TestOpenFailureIsReported(t *testing.T) {
	e := &env{
		out:    &bytes.Buffer{},
		logger: zap.NewNop(),
		open:   func() (*lucid.Service, error) { return nil, stderrors.New("LUCID_PROGRAM_ID missing") },
	}
	err := run(e, "stats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LUCID_PROGRAM_ID missing")
}

func TestActivityCommand(t *testing.T) {
	wallet := solana.NewWallet().PublicKey().String()
	bt := int64(1_760_000_000)
	svc := &lucid.Service{
		Pipeline: &reconcile.Pipeline{
			Adapters: []source.Adapter{staticAdapter{records: []model.TransactionRecord{
				{Signature: "c1", Kind: model.KindCreation, BlockTime: &bt, Succeeded: true, Source: model.SourceLedgerRPC},
			}}},
		},
	}
	e, out := newTestEnv(t, svc)
	require.NoError(t, run(e, "activity", "--wallet", wallet))

	var resp model.WalletActivity
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, wallet, resp.Wallet)
	assert.Equal(t, "c1", resp.LastSignature)
	assert.Equal(t, bt*1000, resp.LastActivityMillis)
	assert.Equal(t, 1, resp.TransactionCount)

	e, _ = newTestEnv(t, svc)
	err := run(e, "activity", "--wallet", "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_REQUEST")
}
