package solana

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Joseph-hackathon/Lucid-solana/internal/cache"
	"github.com/Joseph-hackathon/Lucid-solana/internal/capsule"
	"github.com/Joseph-hackathon/Lucid-solana/internal/client"
	"github.com/Joseph-hackathon/Lucid-solana/internal/errors"
	"github.com/Joseph-hackathon/Lucid-solana/internal/model"

	"github.com/gagliardetto/solana-go"
)

// GetSnapshot fetches and decodes one capsule account.
// Intent text and execution are remembered in the local cache for the owner.
// An active capsule that looks dormant is re-checked against the owner's
// wallet activity before it is reported as dormant.
func (s *Service) GetSnapshot(ctx context.Context, address string) (*model.SnapshotResponse, error) {
	key, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, errors.NewInvalidRequest("invalid capsule address")
	}

	acc, owner, err := s.Accounts.Account(ctx, key)
	if err != nil {
		if stderrors.Is(err, client.ErrAccountNotFound) {
			return nil, errors.NewNotFound(address)
		}
		return nil, fmt.Errorf("failed to get capsule account: %w", err)
	}
	if !owner.Equals(s.ProgramID) {
		return nil, errors.NewDecodeFailure(address, len(acc.Data))
	}

	snap, ok := capsule.Decode(acc.Data)
	if !ok {
		return nil, errors.NewDecodeFailure(address, len(acc.Data))
	}
	snap.Address = key

	if s.Cache != nil {
		s.remember(ctx, snap)
	}

	now := s.now()
	resp := NewSnapshotResponse(snap, now)
	if resp.Dormant && snap.IsActive && !snap.Executed() {
		s.recheckActivity(ctx, snap, resp, now)
	}
	return resp, nil
}

// NewSnapshotResponse renders snap as of now.
func NewSnapshotResponse(snap *capsule.Snapshot, now time.Time) *model.SnapshotResponse {
	resp := &model.SnapshotResponse{
		Owner:                      snap.Owner.String(),
		InactivityThresholdSeconds: snap.InactivityThresholdSeconds,
		LastActivityUnixSeconds:    snap.LastActivityUnixSeconds,
		PayloadBase64:              base64.StdEncoding.EncodeToString(snap.Payload),
		IsActive:                   snap.IsActive,
		ExecutedAtUnixSeconds:      snap.ExecutedAtUnixSeconds,
		ExecutableAtUnixSeconds:    snap.ExecutableAt(),
		Dormant:                    snap.Dormant(now),
	}
	if snap.Address != (solana.PublicKey{}) {
		resp.Address = snap.Address.String()
	}
	return resp
}

// remember saves the capsule's intent text once per owner and, for an
// executed capsule, an executed-capsule entry. Cache failures only log.
func (s *Service) remember(ctx context.Context, snap *capsule.Snapshot) {
	logger := s.logger().With(zap.String("wallet", snap.Owner.String()), zap.String("capsule", snap.Address.String()))
	wallet := snap.Owner.String()

	if len(snap.Payload) > 0 {
		if err := s.saveIntentOnce(ctx, wallet, string(snap.Payload)); err != nil {
			logger.Warn("failed to cache intent", zap.Error(err))
		}
	}

	if !snap.Executed() {
		return
	}
	entry := cache.ExecutedCapsule{
		Capsule:    snap.Address.String(),
		ExecutedAt: *snap.ExecutedAtUnixSeconds,
		IntentData: string(snap.Payload),
	}
	if tx, ok, err := s.Cache.Latest(ctx, wallet, cache.PurposeExecution); err == nil && ok {
		entry.ExecutionTx = tx
	}
	added, err := s.Cache.AddExecutedCapsule(ctx, wallet, entry)
	if err != nil {
		logger.Warn("failed to cache executed capsule", zap.Error(err))
		return
	}
	if added {
		logger.Info("executed capsule recorded", zap.Int64("executed_at", entry.ExecutedAt))
	}
}

func (s *Service) saveIntentOnce(ctx context.Context, wallet, text string) error {
	intents, err := s.Cache.Intents(ctx, wallet)
	if err != nil {
		return err
	}
	for _, in := range intents {
		if in.Text == text {
			return nil
		}
	}
	return s.Cache.SaveIntent(ctx, wallet, s.now(), text)
}

// LocalHistory returns what the local cache remembers for wallet beyond
// transaction signatures.
func (s *Service) LocalHistory(ctx context.Context, wallet string) (*model.LocalHistoryResponse, error) {
	if _, err := solana.PublicKeyFromBase58(wallet); err != nil {
		return nil, errors.NewInvalidRequest("invalid wallet address")
	}
	resp := &model.LocalHistoryResponse{
		Wallet:           wallet,
		Intents:          []model.CachedIntent{},
		ExecutedCapsules: []model.CachedExecution{},
	}
	if s.Cache == nil {
		return resp, nil
	}

	intents, err := s.Cache.Intents(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached intents: %w", err)
	}
	for _, in := range intents {
		ci := model.CachedIntent{Text: in.Text}
		if !in.SavedAt.IsZero() {
			ms := in.SavedAt.UnixMilli()
			ci.SavedAtMillis = &ms
		}
		resp.Intents = append(resp.Intents, ci)
	}

	executed, err := s.Cache.ExecutedCapsules(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to read executed capsules: %w", err)
	}
	for _, ec := range executed {
		resp.ExecutedCapsules = append(resp.ExecutedCapsules, model.CachedExecution{
			Capsule:     ec.Capsule,
			ExecutedAt:  ec.ExecutedAt,
			ExecutionTx: ec.ExecutionTx,
			IntentData:  ec.IntentData,
		})
	}
	return resp, nil
}
