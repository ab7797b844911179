package reconcile

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseph-hackathon/Lucid-solana/internal/model"
)

func i64(v int64) *int64 { return &v }

func rec(sig string, kind model.Kind, src model.Source, bt *int64) model.TransactionRecord {
	return model.TransactionRecord{Signature: sig, Kind: kind, Source: src, BlockTime: bt, Succeeded: true}
}

func TestMergeTieBreakScenario(t *testing.T) {
	cached := rec("S", model.KindCreation, model.SourceLocalCache, nil)
	indexed := rec("S", model.KindExecution, model.SourceIndexerAPI, i64(1000))

	assert.Equal(t, indexed, Merge(cached, indexed))
	assert.Equal(t, indexed, Merge(indexed, cached))

	ledger := Reconcile("W", []model.TransactionRecord{cached}, []model.TransactionRecord{indexed})
	require.Len(t, ledger.Records, 1)
	assert.Equal(t, model.KindExecution, ledger.Records[0].Kind)
	assert.Equal(t, i64(1000), ledger.Records[0].BlockTime)
}

func TestMergePriority(t *testing.T) {
	tests := []struct {
		name string
		a, b model.TransactionRecord
		want model.TransactionRecord
	}{
		{
			name: "execution beats newer creation",
			a:    rec("S", model.KindCreation, model.SourceIndexerAPI, i64(200)),
			b:    rec("S", model.KindExecution, model.SourceLocalCache, nil),
			want: rec("S", model.KindExecution, model.SourceLocalCache, nil),
		},
		{
			name: "known time beats unknown",
			a:    rec("S", model.KindCreation, model.SourceIndexerAPI, nil),
			b:    rec("S", model.KindUnclassified, model.SourceLocalCache, i64(5)),
			want: rec("S", model.KindUnclassified, model.SourceLocalCache, i64(5)),
		},
		{
			name: "larger time wins",
			a:    rec("S", model.KindCreation, model.SourceIndexerAPI, i64(10)),
			b:    rec("S", model.KindCreation, model.SourceLedgerRPC, i64(11)),
			want: rec("S", model.KindCreation, model.SourceLedgerRPC, i64(11)),
		},
		{
			name: "richer source on equal time",
			a:    rec("S", model.KindCreation, model.SourceLedgerRPC, i64(10)),
			b:    rec("S", model.KindCreation, model.SourceIndexerAPI, i64(10)),
			want: rec("S", model.KindCreation, model.SourceIndexerAPI, i64(10)),
		},
		{
			name: "rpc beats cache without times",
			a:    rec("S", model.KindCreation, model.SourceLocalCache, nil),
			b:    rec("S", model.KindCreation, model.SourceLedgerRPC, nil),
			want: rec("S", model.KindCreation, model.SourceLedgerRPC, nil),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.a, tt.b))
			assert.Equal(t, tt.want, Merge(tt.b, tt.a))
		})
	}
}

func TestReconcileOrdering(t *testing.T) {
	records := []model.TransactionRecord{
		rec("a-old", model.KindCreation, model.SourceLedgerRPC, i64(100)),
		rec("z-untimed", model.KindCreation, model.SourceLocalCache, nil),
		rec("b-untimed", model.KindExecution, model.SourceLocalCache, nil),
		rec("tie-create", model.KindCreation, model.SourceIndexerAPI, i64(300)),
		rec("tie-exec", model.KindExecution, model.SourceIndexerAPI, i64(300)),
		rec("newest", model.KindUnclassified, model.SourceLedgerRPC, i64(400)),
	}
	ledger := Reconcile("W", records)

	var sigs []string
	for _, r := range ledger.Records {
		sigs = append(sigs, r.Signature)
	}
	assert.Equal(t, []string{"newest", "tie-exec", "tie-create", "a-old", "b-untimed", "z-untimed"}, sigs)
	assert.Equal(t, model.Cursors{LatestCreation: "tie-create", LatestExecution: "tie-exec"}, ledger.Cursors)
	assert.Equal(t, "W", ledger.Wallet)
}

func TestReconcileEmpty(t *testing.T) {
	ledger := Reconcile("W")
	assert.NotNil(t, ledger.Records)
	assert.Empty(t, ledger.Records)
	assert.Equal(t, model.Cursors{}, ledger.Cursors)

	ledger = Reconcile("W", nil, []model.TransactionRecord{}, nil)
	assert.Empty(t, ledger.Records)
}

func TestReconcileNoDuplicateSignatures(t *testing.T) {
	ledger := Reconcile("W",
		[]model.TransactionRecord{rec("S", model.KindCreation, model.SourceLocalCache, nil), rec("T", model.KindCreation, model.SourceLocalCache, nil)},
		[]model.TransactionRecord{rec("S", model.KindCreation, model.SourceLedgerRPC, i64(1))},
		[]model.TransactionRecord{rec("S", model.KindExecution, model.SourceIndexerAPI, i64(1)), rec("T", model.KindUnclassified, model.SourceIndexerAPI, nil)},
	)
	require.Len(t, ledger.Records, 2)
	assert.Equal(t, "S", ledger.Records[0].Signature)
	assert.Equal(t, model.KindExecution, ledger.Records[0].Kind)
	// T: equal (unknown) times, indexer outranks cache
	assert.Equal(t, model.KindUnclassified, ledger.Records[1].Kind)
}

func TestCursorsSkipFailedRecords(t *testing.T) {
	failed := rec("new-exec", model.KindExecution, model.SourceLedgerRPC, i64(500))
	failed.Succeeded = false
	ledger := Reconcile("W", []model.TransactionRecord{
		failed,
		rec("old-exec", model.KindExecution, model.SourceLedgerRPC, i64(100)),
	})
	assert.Equal(t, "old-exec", ledger.Cursors.LatestExecution)
	assert.Empty(t, ledger.Cursors.LatestCreation)
}

func TestReconcileIdempotentUnderPermutation(t *testing.T) {
	kinds := []model.Kind{model.KindCreation, model.KindExecution, model.KindUnclassified}
	sources := []model.Source{model.SourceLocalCache, model.SourceLedgerRPC, model.SourceIndexerAPI}
	rng := rand.New(rand.NewSource(7))

	var all []model.TransactionRecord
	for i := 0; i < 200; i++ {
		r := model.TransactionRecord{
			Signature: string(rune('A' + rng.Intn(20))),
			Kind:      kinds[rng.Intn(len(kinds))],
			Source:    sources[rng.Intn(len(sources))],
			Succeeded: rng.Intn(4) != 0,
			Slot:      uint64(rng.Intn(3)),
		}
		if rng.Intn(3) != 0 {
			r.BlockTime = i64(int64(rng.Intn(5)))
		}
		all = append(all, r)
	}

	want := Reconcile("W", all)
	for trial := 0; trial < 20; trial++ {
		shuffled := append([]model.TransactionRecord(nil), all...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		cut := rng.Intn(len(shuffled))
		got := Reconcile("W", shuffled[cut:], shuffled[:cut])
		assert.Equal(t, want, got)

		// reconciling a ledger with itself changes nothing
		again := Reconcile("W", got.Records, shuffled)
		assert.Equal(t, want, again)
	}
}
