package solana

import (
	"context"
	"time"

	"github.com/Joseph-hackathon/Lucid-solana/internal/errors"
	"github.com/Joseph-hackathon/Lucid-solana/internal/model"
	"github.com/Joseph-hackathon/Lucid-solana/internal/source"

	"github.com/gagliardetto/solana-go"
)

const (
	LedgerStatusOK          = "ok"
	LedgerStatusUnavailable = "unavailable"
)

// GetLedger runs one reconciliation pass for the requested wallet and
// applies the request filters. Cursors always describe the unfiltered ledger.
// When every source failed the response carries the unavailable status
// alongside the ALL_SOURCES_FAILED error.
func (s *Service) GetLedger(ctx context.Context, req *model.LedgerRequest) (*model.LedgerResponse, error) {
	if err := validateLedgerRequest(req); err != nil {
		return nil, err
	}
	if s.Pipeline == nil {
		return nil, errors.NewAllSourcesFailed(req.Wallet, nil)
	}

	ledger, err := s.Pipeline.Run(ctx, source.Identity{Wallet: req.Wallet, Capsule: req.Capsule})
	if err != nil {
		if errors.Is(err, errors.ErrAllSourcesFailed) {
			return &model.LedgerResponse{Status: LedgerStatusUnavailable, Ledger: ledger}, err
		}
		return nil, err
	}

	ledger.Records = req.Filter(ledger.Records)
	return &model.LedgerResponse{Status: LedgerStatusOK, Ledger: ledger}, nil
}

// WatchLedger re-runs the reconciliation every interval until ctx is done.
// Each pass is filtered like GetLedger and handed to fn.
func (s *Service) WatchLedger(ctx context.Context, req *model.LedgerRequest, interval time.Duration, fn func(*model.LedgerResponse, error)) error {
	if err := validateLedgerRequest(req); err != nil {
		return err
	}
	if s.Pipeline == nil {
		return errors.NewAllSourcesFailed(req.Wallet, nil)
	}
	id := source.Identity{Wallet: req.Wallet, Capsule: req.Capsule}
	return s.Pipeline.Watch(ctx, id, interval, func(ledger model.Ledger, err error) {
		if err != nil {
			status := LedgerStatusUnavailable
			if !errors.Is(err, errors.ErrAllSourcesFailed) {
				status = ""
			}
			fn(&model.LedgerResponse{Status: status, Ledger: ledger}, err)
			return
		}
		ledger.Records = req.Filter(ledger.Records)
		fn(&model.LedgerResponse{Status: LedgerStatusOK, Ledger: ledger}, nil)
	})
}

func validateLedgerRequest(req *model.LedgerRequest) error {
	if err := req.Validate(); err != nil {
		return errors.NewInvalidRequest(err.Error())
	}
	if _, err := solana.PublicKeyFromBase58(req.Wallet); err != nil {
		return errors.NewInvalidRequest("invalid wallet address")
	}
	if req.Capsule != "" {
		if _, err := solana.PublicKeyFromBase58(req.Capsule); err != nil {
			return errors.NewInvalidRequest("invalid capsule address")
		}
	}
	return nil
}
