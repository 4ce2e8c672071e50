// internal/workers/matching/score-campaign/models.go
package scorecampaign

import (
	"campaign-workers/internal/matching"
	"campaign-workers/internal/workers/matching/profile"
)

type Input struct {
	InvestorID string                     `json:"investorId,omitempty"`
	Investor   *profile.Profile           `json:"investor,omitempty"`
	Campaign   matching.CampaignCandidate `json:"campaign"`
}

type Output struct {
	InvestorID string                `json:"investorId,omitempty"`
	CampaignID string                `json:"campaignId"`
	Score      int                   `json:"score"`
	Reasons    []string              `json:"reasons"`
	Breakdown  []matching.RuleResult `json:"breakdown"`
}
