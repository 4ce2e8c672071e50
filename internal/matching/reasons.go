// internal/matching/reasons.go
package matching

import (
	"fmt"
	"math"
)

const (
	excellentMatchScore = 80
	goodFitScore        = 60
)

// Explain lists the criteria that earned full credit, then an overall
// quality line for high scores. Partial credit never produces a reason.
func (e *Engine) Explain(investor InvestorCriteria, campaign CampaignCandidate, score int) []string {
	return reasonsFor(e.Evaluate(investor, campaign).Rules, campaign, score)
}

func reasonsFor(results []RuleResult, campaign CampaignCandidate, score int) []string {
	reasons := []string{}
	for _, r := range results {
		if !r.FullCredit {
			continue
		}
		if s := reasonSentence(r, campaign); s != "" {
			reasons = append(reasons, s)
		}
	}

	switch {
	case score >= excellentMatchScore:
		reasons = append(reasons, "Excellent match for your investment criteria")
	case score >= goodFitScore:
		reasons = append(reasons, "Good fit for your portfolio")
	}
	return reasons
}

func reasonSentence(r RuleResult, campaign CampaignCandidate) string {
	switch r.Criterion {
	case CriterionIndustry:
		return fmt.Sprintf("Matches your preferred industry: %s", campaign.Industry)
	case CriterionStage:
		return fmt.Sprintf("Matches your preferred funding stage: %s", campaign.Stage)
	case CriterionTicketSize:
		return fmt.Sprintf("Minimum investment of $%.0f fits your investment range", roundHalfUp(campaign.MinInvestment))
	case CriterionFundingProgress:
		progress := FundingProgress(campaign)
		if r.Progress != nil {
			progress = *r.Progress
		}
		return fmt.Sprintf("Campaign is %.0f%% funded, in the funding sweet spot", roundHalfUp(progress))
	}
	// risk affinity contributes to the score but has no sentence of its own
	return ""
}

// roundHalfUp matches the rounding used for scores; %.0f alone rounds half
// to even.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
