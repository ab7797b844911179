// Package classify infers whether a transaction created or executed a capsule
// from its log lines, instruction data and balance movements.
package classify

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Joseph-hackathon/Lucid-solana/internal/model"
)

// ExecuteIntentDiscriminator prefixes execute_intent instruction data.
var ExecuteIntentDiscriminator = []byte{53, 130, 47, 154, 227, 220, 122, 212}

var (
	creationMarkers = []string{
		"createcapsule",
		"intent capsule created",
		"recreatecapsule",
		"capsule recreated",
	}
	executionMarkers = []string{
		"execute_intent",
		"executeintent",
		"intent executed",
		"intentexecuted",
	}
)

// Instruction is one instruction of a transaction.
type Instruction struct {
	ProgramID string
	Data      []byte
}

// Evidence is everything known about one transaction. Any field may be empty.
type Evidence struct {
	// ProgramID is the tracked capsule program.
	ProgramID    string
	LogLines     []string
	Instructions []Instruction
	AccountKeys  []string
	// PreBalances and PostBalances are indexed like AccountKeys.
	PreBalances  []uint64
	PostBalances []uint64
	// Transfer counts as reported by an enriched indexer, zero when unknown.
	NativeTransferCount int
	TokenTransferCount  int
}

// Policy decides what an unresolved, program-related record becomes.
type Policy struct {
	Fallback model.Kind
}

// DefaultPolicy leaves unresolved records unclassified.
var DefaultPolicy = Policy{Fallback: model.KindUnclassified}

// ParsePolicy maps a configured fallback name to a Policy.
func ParsePolicy(name string) (Policy, error) {
	kind, err := model.ParseKind(name)
	if err != nil || kind == model.KindExecution {
		return Policy{}, fmt.Errorf("fallback must be unclassified or creation, got %q", name)
	}
	return Policy{Fallback: kind}, nil
}

// Result is the outcome of Classify.
type Result struct {
	Kind model.Kind
	// Signal names the evidence that decided Kind.
	Signal          string
	InvolvesProgram bool
	// Ambiguous is set when Kind came from the fallback policy.
	Ambiguous bool
}

const (
	SignalExecutionMarker   = "execution_marker"
	SignalExecuteIx         = "execute_instruction"
	SignalAssetDistribution = "asset_distribution"
	SignalCreationMarker    = "creation_marker"
	SignalAccountCreation   = "account_creation"
	SignalFallback          = "fallback"
	SignalNone              = "none"
)

// Classify returns the kind of the transaction described by ev.
func Classify(ev Evidence, policy Policy) Result {
	involves := InvolvesProgram(ev)
	hasCreate := hasMarker(ev.LogLines, creationMarkers)
	hasExecute := hasMarker(ev.LogLines, executionMarkers)
	hasExecuteIx := involves && hasExecuteInstruction(ev)

	res := Result{InvolvesProgram: involves}

	if !involves {
		// Log markers are emitted by the program itself, so they stand on their own.
		switch {
		case hasExecute:
			res.Kind, res.Signal = model.KindExecution, SignalExecutionMarker
		case hasCreate:
			res.Kind, res.Signal = model.KindCreation, SignalCreationMarker
		default:
			res.Kind, res.Signal = model.KindUnclassified, SignalNone
		}
		return res
	}

	switch {
	case hasExecute:
		res.Kind, res.Signal = model.KindExecution, SignalExecutionMarker
	case hasExecuteIx:
		res.Kind, res.Signal = model.KindExecution, SignalExecuteIx
	case HasAssetDistribution(ev):
		res.Kind, res.Signal = model.KindExecution, SignalAssetDistribution
	case hasCreate:
		res.Kind, res.Signal = model.KindCreation, SignalCreationMarker
	case CreatesAccount(ev):
		res.Kind, res.Signal = model.KindCreation, SignalAccountCreation
	default:
		fallback := policy.Fallback
		if fallback == "" {
			fallback = model.KindUnclassified
		}
		res.Kind, res.Signal, res.Ambiguous = fallback, SignalFallback, true
	}
	return res
}

// InvolvesProgram reports whether the tracked program appears in the
// transaction's accounts, instructions or logs.
func InvolvesProgram(ev Evidence) bool {
	if ev.ProgramID == "" {
		return false
	}
	for _, key := range ev.AccountKeys {
		if key == ev.ProgramID {
			return true
		}
	}
	for _, ix := range ev.Instructions {
		if ix.ProgramID == ev.ProgramID {
			return true
		}
	}
	for _, line := range ev.LogLines {
		if strings.Contains(line, ev.ProgramID) {
			return true
		}
	}
	return false
}

// HasAssetDistribution reports fan-out payouts: more than one transfer of
// either kind, or more than one pre-existing account gaining lamports.
// Creations credit at most the owner/fee payer.
func HasAssetDistribution(ev Evidence) bool {
	if ev.NativeTransferCount > 1 || ev.TokenTransferCount > 1 {
		return true
	}
	gains := 0
	for i, pre := range ev.PreBalances {
		if i >= len(ev.PostBalances) {
			break
		}
		if pre > 0 && ev.PostBalances[i] > pre {
			gains++
		}
	}
	return gains > 1
}

// CreatesAccount reports an account funded from zero in this transaction.
func CreatesAccount(ev Evidence) bool {
	for i, pre := range ev.PreBalances {
		if i >= len(ev.PostBalances) {
			break
		}
		if pre == 0 && ev.PostBalances[i] > 0 {
			return true
		}
	}
	return false
}

func hasExecuteInstruction(ev Evidence) bool {
	for _, ix := range ev.Instructions {
		if ix.ProgramID == ev.ProgramID && bytes.HasPrefix(ix.Data, ExecuteIntentDiscriminator) {
			return true
		}
	}
	return false
}

func hasMarker(lines []string, markers []string) bool {
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, m := range markers {
			if strings.Contains(lower, m) {
				return true
			}
		}
	}
	return false
}
