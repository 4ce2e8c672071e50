// internal/matching/rules_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvestor() InvestorCriteria {
	return InvestorCriteria{
		InvestmentRangeMin:  10000,
		InvestmentRangeMax:  500000,
		PreferredIndustries: []string{"AI"},
		PreferredStages:     []string{"Seed"},
		RiskTolerance:       RiskHigh,
	}
}

func testCampaign() CampaignCandidate {
	return CampaignCandidate{
		ID:                  "campaign-1",
		Industry:            "AI",
		Stage:               "Seed",
		FundraisingGoal:     1000000,
		MinInvestment:       50000,
		EquityOffered:       10,
		CurrentAmountRaised: 500000,
	}
}

func TestDefaultRules_WeightsSumTo100(t *testing.T) {
	total := 0.0
	for _, r := range DefaultRules() {
		total += r.MaxPoints()
	}
	assert.Equal(t, 100.0, total)
}

func TestIndustryRule(t *testing.T) {
	tests := []struct {
		name      string
		preferred []string
		industry  string
		earned    float64
	}{
		{"member of set", []string{"Fintech", "AI"}, "AI", 30},
		{"not in set", []string{"Fintech"}, "AI", 0},
		{"absent industry", []string{"AI"}, "", 0},
		{"empty preferences", nil, "AI", 0},
		{"empty string preference never matches absent", []string{""}, "", 0},
	}

	rule := IndustryRule{Points: IndustryPoints}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := InvestorCriteria{PreferredIndustries: tt.preferred}
			res := rule.Evaluate(inv, CampaignCandidate{Industry: tt.industry})
			assert.Equal(t, tt.earned, res.Earned)
			assert.Equal(t, 30.0, res.Possible)
			assert.Equal(t, tt.earned > 0, res.FullCredit)
		})
	}
}

func TestStageRule(t *testing.T) {
	tests := []struct {
		name      string
		preferred []string
		stage     string
		earned    float64
	}{
		{"member of set", []string{"Seed", "Series A"}, "Series A", 25},
		{"not in set", []string{"Seed"}, "Series C", 0},
		{"absent stage", []string{"Seed"}, "", 0},
		{"empty preferences", []string{}, "Seed", 0},
	}

	rule := StageRule{Points: StagePoints}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := InvestorCriteria{PreferredStages: tt.preferred}
			res := rule.Evaluate(inv, CampaignCandidate{Stage: tt.stage})
			assert.Equal(t, tt.earned, res.Earned)
			assert.Equal(t, tt.earned > 0, res.FullCredit)
		})
	}
}

func TestTicketSizeRule(t *testing.T) {
	tests := []struct {
		name       string
		min, max   float64
		minInvest  float64
		earned     float64
		fullCredit bool
	}{
		{"inside range", 10000, 500000, 50000, 20, true},
		{"at lower bound", 10000, 500000, 10000, 20, true},
		{"at upper bound", 10000, 500000, 500000, 20, true},
		{"below floor", 10000, 500000, 5000, 10, false},
		{"above ceiling", 10000, 500000, 600000, 0, false},
		{"zero range", 0, 0, 1000, 0, false},
	}

	rule := TicketSizeRule{Points: TicketSizePoints, BelowFloorPoints: ticketBelowFloorPoints}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := InvestorCriteria{InvestmentRangeMin: tt.min, InvestmentRangeMax: tt.max}
			res := rule.Evaluate(inv, CampaignCandidate{MinInvestment: tt.minInvest})
			assert.Equal(t, tt.earned, res.Earned)
			assert.Equal(t, tt.fullCredit, res.FullCredit)
		})
	}
}

func TestFundingProgressRule(t *testing.T) {
	tests := []struct {
		name       string
		goal       float64
		raised     float64
		earned     float64
		fullCredit bool
	}{
		{"sweet spot", 1000000, 500000, 15, true},
		{"exactly 20%", 1000, 200, 15, true},
		{"exactly 80%", 1000, 800, 15, true},
		{"early", 1000, 100, 10, false},
		{"nothing raised", 1000, 0, 10, false},
		{"late", 1000, 900, 5, false},
		{"overfunded", 1000, 2500, 5, false},
		{"zero goal falls back to late branch", 0, 0, 5, false},
	}

	rule := DefaultRules()[3]
	require.Equal(t, CriterionFundingProgress, rule.Criterion())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := rule.Evaluate(InvestorCriteria{}, CampaignCandidate{FundraisingGoal: tt.goal, CurrentAmountRaised: tt.raised})
			assert.Equal(t, tt.earned, res.Earned)
			assert.Equal(t, tt.fullCredit, res.FullCredit)
			if tt.goal == 0 {
				assert.Nil(t, res.Progress)
			} else {
				require.NotNil(t, res.Progress)
			}
		})
	}
}

func TestRiskAffinityRule(t *testing.T) {
	tests := []struct {
		risk   RiskTolerance
		stage  string
		earned float64
	}{
		{RiskHigh, "Seed", 10},
		{RiskMedium, "Series A", 10},
		{RiskLow, "Series B", 10},
		{RiskHigh, "Series B", 5},
		{RiskLow, "Seed", 5},
		{RiskMedium, "", 5},
		{"", "Seed", 5},
	}

	rule := RiskAffinityRule{Points: RiskAffinityPoints, OtherPoints: riskAffinityOtherPoints}
	for _, tt := range tests {
		t.Run(string(tt.risk)+"/"+tt.stage, func(t *testing.T) {
			res := rule.Evaluate(InvestorCriteria{RiskTolerance: tt.risk}, CampaignCandidate{Stage: tt.stage})
			assert.Equal(t, tt.earned, res.Earned)
			assert.Equal(t, tt.earned == 10, res.FullCredit)
		})
	}
}

func TestParseInvestmentRange(t *testing.T) {
	tests := []struct {
		raw      string
		min, max float64
		ok       bool
	}{
		{"10000-500000", 10000, 500000, true},
		{"$10,000 - $500,000", 10000, 500000, true},
		{"2500.50-10000", 2500.5, 10000, true},
		{"$10k-$50k", 10, 50, true},
		{"50000", 0, 0, false},
		{"-500000", 0, 500000, false},
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			min, max, ok := ParseInvestmentRange(tt.raw)
			assert.Equal(t, tt.min, min)
			assert.Equal(t, tt.max, max)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestParseRiskTolerance(t *testing.T) {
	assert.Equal(t, RiskHigh, ParseRiskTolerance("high"))
	assert.Equal(t, RiskMedium, ParseRiskTolerance(" Medium "))
	assert.Equal(t, RiskLow, ParseRiskTolerance("LOW"))
	assert.Equal(t, RiskTolerance(""), ParseRiskTolerance("aggressive"))
}
