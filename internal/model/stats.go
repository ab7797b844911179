package model

import "time"

// StatsSource tags statistics computed from the capsule program's accounts.
const StatsSource = "lucid-program"

// StatsResponse represents response for GET /capsules/stats
type StatsResponse struct {
	Series             []int    `json:"series"`
	Labels             []string `json:"labels"`
	DormantCount       int      `json:"dormantCount"`
	EstimatedAssetsUSD float64  `json:"estimatedAssetsUsd"`
	EstimatedAssetsSOL float64  `json:"estimatedAssetsSol"`
	PriceUSD           float64  `json:"priceUsd"`
	Source             string   `json:"source"`
}

// SeriesLabels returns UTC month labels for points checkpoints spaced two
// months apart, oldest first, ending at now.
func SeriesLabels(now time.Time, points int) []string {
	now = now.UTC()
	labels := make([]string, 0, points)
	for i := points - 1; i >= 0; i-- {
		labels = append(labels, now.AddDate(0, -2*i, 0).Format("Jan"))
	}
	return labels
}

// EmptyStats is the well-formed all-zero response returned when upstream data is unavailable.
func EmptyStats(now time.Time, points int) *StatsResponse {
	return &StatsResponse{
		Series: make([]int, points),
		Labels: SeriesLabels(now, points),
		Source: StatsSource,
	}
}

// SnapshotResponse represents response for GET /capsules/snapshot
type SnapshotResponse struct {
	Address                    string `json:"address"`
	Owner                      string `json:"owner"`
	InactivityThresholdSeconds int64  `json:"inactivityPeriod"`
	LastActivityUnixSeconds    int64  `json:"lastActivity"`
	PayloadBase64              string `json:"intentData"`
	IsActive                   bool   `json:"isActive"`
	ExecutedAtUnixSeconds      *int64 `json:"executedAt"`
	ExecutableAtUnixSeconds    int64  `json:"executableAt"`
	Dormant                    bool   `json:"dormant"`
	// WalletActivity is set when the owner's wallet activity was re-checked.
	WalletActivity *WalletActivity `json:"walletActivity,omitempty"`
}
