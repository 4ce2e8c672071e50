// internal/workers/matching/rank-campaigns/models.go
package rankcampaigns

import (
	"campaign-workers/internal/matching"
	"campaign-workers/internal/workers/matching/profile"
)

// Input leaves Candidates nil to rank campaigns from the configured source.
// An explicit empty list ranks nothing.
type Input struct {
	InvestorID       string                       `json:"investorId,omitempty"`
	Investor         *profile.Profile             `json:"investor,omitempty"`
	Candidates       []matching.CampaignCandidate `json:"candidates,omitempty"`
	MinScore         *int                         `json:"minScore,omitempty"`
	Limit            *int                         `json:"limit,omitempty"`
	IncludeBreakdown bool                         `json:"includeBreakdown,omitempty"`
}

type Output struct {
	RankingID  string                 `json:"rankingId"`
	InvestorID string                 `json:"investorId,omitempty"`
	MinScore   int                    `json:"minScore"`
	Limit      int                    `json:"limit"`
	Evaluated  int                    `json:"evaluated"`
	Returned   int                    `json:"returned"`
	Results    []matching.ScoreResult `json:"results"`
}
