package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseph-hackathon/Lucid-solana/internal/model"
)

const programID = "LuciDxq9ZJxQ6C5KwF3yrcmE8XZyTTyWUpchm1G4bNn"

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		ev         Evidence
		wantKind   model.Kind
		wantSignal string
		ambiguous  bool
	}{
		{
			name: "creation marker",
			ev: Evidence{
				ProgramID: programID,
				LogLines: []string{
					"Program " + programID + " invoke [1]",
					"Program log: Instruction: CreateCapsule",
				},
			},
			wantKind:   model.KindCreation,
			wantSignal: SignalCreationMarker,
		},
		{
			name: "recreate marker is creation",
			ev: Evidence{
				ProgramID:   programID,
				AccountKeys: []string{"Owner", programID},
				LogLines:    []string{"Program log: Capsule recreated"},
			},
			wantKind:   model.KindCreation,
			wantSignal: SignalCreationMarker,
		},
		{
			name: "execution marker case-insensitive",
			ev: Evidence{
				ProgramID:   programID,
				AccountKeys: []string{programID},
				LogLines:    []string{"Program log: Instruction: EXECUTEINTENT"},
			},
			wantKind:   model.KindExecution,
			wantSignal: SignalExecutionMarker,
		},
		{
			name: "execute instruction discriminator",
			ev: Evidence{
				ProgramID: programID,
				Instructions: []Instruction{
					{ProgramID: programID, Data: append(append([]byte{}, ExecuteIntentDiscriminator...), 9, 9)},
				},
			},
			wantKind:   model.KindExecution,
			wantSignal: SignalExecuteIx,
		},
		{
			name: "distribution outranks creation marker",
			ev: Evidence{
				ProgramID:    programID,
				AccountKeys:  []string{"Payer", "B1", "B2", programID},
				LogLines:     []string{"Program log: Instruction: CreateCapsule"},
				PreBalances:  []uint64{5_000_000, 1_000, 2_000, 1},
				PostBalances: []uint64{1_000_000, 2_001_000, 2_002_000, 1},
			},
			wantKind:   model.KindExecution,
			wantSignal: SignalAssetDistribution,
		},
		{
			name: "indexer transfer counts imply distribution",
			ev: Evidence{
				ProgramID:           programID,
				AccountKeys:         []string{programID},
				NativeTransferCount: 2,
			},
			wantKind:   model.KindExecution,
			wantSignal: SignalAssetDistribution,
		},
		{
			name: "single beneficiary gain is not distribution",
			ev: Evidence{
				ProgramID:    programID,
				AccountKeys:  []string{"Payer", "Owner", programID},
				PreBalances:  []uint64{5_000, 1_000, 1},
				PostBalances: []uint64{4_000, 1_500, 1},
			},
			wantKind:   model.KindUnclassified,
			wantSignal: SignalFallback,
			ambiguous:  true,
		},
		{
			name: "account funded from zero",
			ev: Evidence{
				ProgramID:    programID,
				AccountKeys:  []string{"Payer", "CapsulePDA", programID},
				PreBalances:  []uint64{10_000_000, 0, 1},
				PostBalances: []uint64{7_000_000, 2_900_000, 1},
			},
			wantKind:   model.KindCreation,
			wantSignal: SignalAccountCreation,
		},
		{
			name: "program mentioned only in logs",
			ev: Evidence{
				ProgramID: programID,
				LogLines:  []string{"Program " + programID + " success"},
			},
			wantKind:   model.KindUnclassified,
			wantSignal: SignalFallback,
			ambiguous:  true,
		},
		{
			name:       "unrelated transaction",
			ev:         Evidence{ProgramID: programID, AccountKeys: []string{"A", "B"}, LogLines: []string{"Program log: transfer"}},
			wantKind:   model.KindUnclassified,
			wantSignal: SignalNone,
		},
		{
			name:       "empty evidence",
			ev:         Evidence{},
			wantKind:   model.KindUnclassified,
			wantSignal: SignalNone,
		},
		{
			name:       "marker without visible program",
			ev:         Evidence{ProgramID: programID, LogLines: []string{"Program log: Intent executed"}},
			wantKind:   model.KindExecution,
			wantSignal: SignalExecutionMarker,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.ev, DefaultPolicy)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantSignal, got.Signal)
			assert.Equal(t, tt.ambiguous, got.Ambiguous)
		})
	}
}

func TestClassifyFallbackPolicy(t *testing.T) {
	ev := Evidence{ProgramID: programID, AccountKeys: []string{programID}}

	got := Classify(ev, Policy{Fallback: model.KindCreation})
	assert.Equal(t, model.KindCreation, got.Kind)
	assert.True(t, got.Ambiguous)
	assert.True(t, got.InvolvesProgram)

	got = Classify(ev, Policy{})
	assert.Equal(t, model.KindUnclassified, got.Kind)
}

func TestClassifyMismatchedBalances(t *testing.T) {
	ev := Evidence{
		ProgramID:    programID,
		AccountKeys:  []string{programID},
		PreBalances:  []uint64{0, 1, 1},
		PostBalances: []uint64{},
	}
	assert.NotPanics(t, func() { Classify(ev, DefaultPolicy) })
	assert.False(t, CreatesAccount(ev))
	assert.False(t, HasAssetDistribution(ev))
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("creation")
	require.NoError(t, err)
	assert.Equal(t, model.KindCreation, p.Fallback)

	p, err = ParsePolicy("unclassified")
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy, p)

	_, err = ParsePolicy("execution")
	require.Error(t, err)
	_, err = ParsePolicy("")
	require.Error(t, err)
}
