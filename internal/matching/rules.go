// internal/matching/rules.go
package matching

type Criterion string

const (
	CriterionIndustry        Criterion = "industry"
	CriterionStage           Criterion = "stage"
	CriterionTicketSize      Criterion = "ticket_size"
	CriterionFundingProgress Criterion = "funding_progress"
	CriterionRiskAffinity    Criterion = "risk_affinity"
)

// Rule weights. They sum to 100 but the engine never relies on that.
const (
	IndustryPoints        = 30.0
	StagePoints           = 25.0
	TicketSizePoints      = 20.0
	FundingProgressPoints = 15.0
	RiskAffinityPoints    = 10.0

	ticketBelowFloorPoints  = 10.0
	progressEarlyPoints     = 10.0
	progressLatePoints      = 5.0
	riskAffinityOtherPoints = 5.0
	progressSweetSpotLow    = 20.0
	progressSweetSpotHigh   = 80.0
)

// RuleResult is the outcome of one criterion. FullCredit is the single
// predicate shared by scoring and reason generation.
type RuleResult struct {
	Criterion  Criterion `json:"criterion"`
	Earned     float64   `json:"earned"`
	Possible   float64   `json:"possible"`
	FullCredit bool      `json:"fullCredit"`
	// Progress is the funding percentage; only set by the funding progress
	// rule and only when the goal is positive.
	Progress *float64 `json:"progress,omitempty"`
}

type Rule interface {
	Criterion() Criterion
	MaxPoints() float64
	Evaluate(investor InvestorCriteria, campaign CampaignCandidate) RuleResult
}

// DefaultRules returns the five rules in reason order.
func DefaultRules() []Rule {
	return []Rule{
		IndustryRule{Points: IndustryPoints},
		StageRule{Points: StagePoints},
		TicketSizeRule{Points: TicketSizePoints, BelowFloorPoints: ticketBelowFloorPoints},
		FundingProgressRule{
			Points:      FundingProgressPoints,
			EarlyPoints: progressEarlyPoints,
			LatePoints:  progressLatePoints,
			Low:         progressSweetSpotLow,
			High:        progressSweetSpotHigh,
		},
		RiskAffinityRule{Points: RiskAffinityPoints, OtherPoints: riskAffinityOtherPoints},
	}
}

func binary(c Criterion, points float64, hit bool) RuleResult {
	r := RuleResult{Criterion: c, Possible: points, FullCredit: hit}
	if hit {
		r.Earned = points
	}
	return r
}

type IndustryRule struct {
	Points float64
}

func (r IndustryRule) Criterion() Criterion { return CriterionIndustry }
func (r IndustryRule) MaxPoints() float64   { return r.Points }

func (r IndustryRule) Evaluate(investor InvestorCriteria, campaign CampaignCandidate) RuleResult {
	return binary(CriterionIndustry, r.Points, containsString(investor.PreferredIndustries, campaign.Industry))
}

type StageRule struct {
	Points float64
}

func (r StageRule) Criterion() Criterion { return CriterionStage }
func (r StageRule) MaxPoints() float64   { return r.Points }

func (r StageRule) Evaluate(investor InvestorCriteria, campaign CampaignCandidate) RuleResult {
	return binary(CriterionStage, r.Points, containsString(investor.PreferredStages, campaign.Stage))
}

// TicketSizeRule gives partial credit when the campaign's minimum ticket is
// below the investor's floor.
type TicketSizeRule struct {
	Points           float64
	BelowFloorPoints float64
}

func (r TicketSizeRule) Criterion() Criterion { return CriterionTicketSize }
func (r TicketSizeRule) MaxPoints() float64   { return r.Points }

func (r TicketSizeRule) Evaluate(investor InvestorCriteria, campaign CampaignCandidate) RuleResult {
	res := RuleResult{Criterion: CriterionTicketSize, Possible: r.Points}
	switch {
	case campaign.MinInvestment > investor.InvestmentRangeMax:
		// out of reach, including the case where min sits above max
	case campaign.MinInvestment >= investor.InvestmentRangeMin:
		res.Earned = r.Points
		res.FullCredit = true
	default:
		res.Earned = r.BelowFloorPoints
	}
	return res
}

// FundingProgressRule scores how far a campaign is toward its goal. A zero
// or negative goal has no defined progress and falls into the late branch.
type FundingProgressRule struct {
	Points      float64
	EarlyPoints float64
	LatePoints  float64
	Low         float64
	High        float64
}

func (r FundingProgressRule) Criterion() Criterion { return CriterionFundingProgress }
func (r FundingProgressRule) MaxPoints() float64   { return r.Points }

func (r FundingProgressRule) Evaluate(_ InvestorCriteria, campaign CampaignCandidate) RuleResult {
	res := RuleResult{Criterion: CriterionFundingProgress, Possible: r.Points}
	if campaign.FundraisingGoal <= 0 {
		res.Earned = r.LatePoints
		return res
	}

	progress := FundingProgress(campaign)
	res.Progress = &progress
	switch {
	case progress < r.Low:
		res.Earned = r.EarlyPoints
	case progress > r.High:
		res.Earned = r.LatePoints
	default:
		res.Earned = r.Points
		res.FullCredit = true
	}
	return res
}

// FundingProgress returns raised/goal as a percentage, or 0 for a
// non-positive goal.
func FundingProgress(c CampaignCandidate) float64 {
	if c.FundraisingGoal <= 0 {
		return 0
	}
	return c.CurrentAmountRaised / c.FundraisingGoal * 100
}

var riskStageAffinity = map[RiskTolerance]string{
	RiskHigh:   "Seed",
	RiskMedium: "Series A",
	RiskLow:    "Series B",
}

type RiskAffinityRule struct {
	Points      float64
	OtherPoints float64
}

func (r RiskAffinityRule) Criterion() Criterion { return CriterionRiskAffinity }
func (r RiskAffinityRule) MaxPoints() float64   { return r.Points }

func (r RiskAffinityRule) Evaluate(investor InvestorCriteria, campaign CampaignCandidate) RuleResult {
	stage, ok := riskStageAffinity[investor.RiskTolerance]
	res := RuleResult{Criterion: CriterionRiskAffinity, Possible: r.Points, Earned: r.OtherPoints}
	if ok && campaign.Stage == stage {
		res.Earned = r.Points
		res.FullCredit = true
	}
	return res
}
