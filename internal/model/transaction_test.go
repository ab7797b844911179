package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(v int64) *int64 { return &v }

func TestLedgerRequestValidate(t *testing.T) {
	bad := Kind("transfer")
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)

	tests := []struct {
		name    string
		req     LedgerRequest
		wantErr string
	}{
		{"ok", LedgerRequest{Wallet: "W"}, ""},
		{"missing wallet", LedgerRequest{}, "wallet is required"},
		{"bad kind", LedgerRequest{Wallet: "W", Kind: &bad}, "kind must be"},
		{"inverted range", LedgerRequest{Wallet: "W", From: &from, To: &to}, "to date must be after"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLedgerRequestFilter(t *testing.T) {
	records := []TransactionRecord{
		{Signature: "c", BlockTime: ts(300), Kind: KindExecution},
		{Signature: "b", BlockTime: ts(200), Kind: KindCreation},
		{Signature: "a", Kind: KindUnclassified},
	}

	exec := KindExecution
	got := (&LedgerRequest{Wallet: "W", Kind: &exec}).Filter(records)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].Signature)

	from := time.Unix(150, 0)
	got = (&LedgerRequest{Wallet: "W", From: &from}).Filter(records)
	require.Len(t, got, 2, "records without a block time fall outside any date range")
	assert.Equal(t, "c", got[0].Signature)
	assert.Equal(t, "b", got[1].Signature)

	sig := "a"
	got = (&LedgerRequest{Wallet: "W", Signature: &sig}).Filter(records)
	require.Len(t, got, 1)
	assert.False(t, got[0].HasTime())
	assert.True(t, got[0].Time().IsZero())
}

func TestSourceRank(t *testing.T) {
	assert.Greater(t, SourceIndexerAPI.Rank(), SourceLedgerRPC.Rank())
	assert.Greater(t, SourceLedgerRPC.Rank(), SourceLocalCache.Rank())
	assert.Zero(t, Source("other").Rank())
}

func TestEmptyStats(t *testing.T) {
	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	s := EmptyStats(now, 6)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0}, s.Series)
	assert.Equal(t, []string{"Dec", "Feb", "Apr", "Jun", "Aug", "Oct"}, s.Labels)
	assert.Equal(t, StatsSource, s.Source)
	assert.Zero(t, s.EstimatedAssetsUSD)
}

func TestNewLedgerRequest(t *testing.T) {
	req, err := NewLedgerRequest("W", "C", "execution", "S", "2026-01-01", "2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, "W", req.Wallet)
	assert.Equal(t, "C", req.Capsule)
	assert.Equal(t, KindExecution, *req.Kind)
	assert.Equal(t, "S", *req.Signature)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *req.From)
	assert.Equal(t, time.Date(2026, 1, 31, 23, 59, 59, 999999999, time.UTC), *req.To)

	req, err = NewLedgerRequest("W", "", "", "", "", "")
	require.NoError(t, err)
	assert.Nil(t, req.Kind)
	assert.Nil(t, req.Signature)
	assert.Nil(t, req.From)
	assert.Nil(t, req.To)

	for _, bad := range [][3]string{{"transfer", "", ""}, {"", "2026/01/01", ""}, {"", "", "yesterday"}} {
		_, err := NewLedgerRequest("W", "", bad[0], "", bad[1], bad[2])
		assert.Error(t, err, "%v", bad)
	}
}
