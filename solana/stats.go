package solana

import (
	"context"

	"go.uber.org/zap"

	"github.com/Joseph-hackathon/Lucid-solana/internal/capsule"
	"github.com/Joseph-hackathon/Lucid-solana/internal/dormancy"
	"github.com/Joseph-hackathon/Lucid-solana/internal/errors"
	"github.com/Joseph-hackathon/Lucid-solana/internal/metrics"
	"github.com/Joseph-hackathon/Lucid-solana/internal/model"
)

// GetDormantStats scans every capsule account and summarizes owner dormancy.
// It never fails: when the program scan fails the all-zero shape is returned.
func (s *Service) GetDormantStats(ctx context.Context) *model.StatsResponse {
	now := s.now()
	points := s.SeriesPoints
	if points <= 0 {
		points = 6
	}
	threshold := s.ThresholdSeconds
	if threshold <= 0 {
		threshold = dormancy.DefaultThresholdSeconds
	}

	accounts, err := s.Accounts.ProgramAccounts(ctx, s.ProgramID)
	if err != nil {
		s.logger().Error("program account scan failed, returning empty stats",
			zap.String("program", s.ProgramID.String()),
			zap.Error(err))
		return model.EmptyStats(now, points)
	}

	snapshots, skipped := capsule.DecodeAll(accounts)
	for _, addr := range skipped {
		metrics.DecodeFailures.Inc()
		s.logger().Warn("skipping undecodable program account",
			zap.String("account", addr.String()),
			zap.String("code", string(errors.ErrDecodeFailure)))
	}

	agg := s.Aggregator
	if agg == nil {
		agg = &dormancy.Aggregator{Logger: s.Logger}
	}
	summary := agg.Aggregate(ctx, snapshots, now, threshold, points)

	return &model.StatsResponse{
		Series:             summary.Series,
		Labels:             summary.Labels,
		DormantCount:       summary.DormantCount,
		EstimatedAssetsUSD: summary.EstimatedUSD,
		EstimatedAssetsSOL: summary.EstimatedSOL,
		PriceUSD:           summary.PriceUSD,
		Source:             model.StatsSource,
	}
}
