// internal/matching/types.go
package matching

import (
	"strconv"
	"strings"
)

type RiskTolerance string

const (
	RiskLow    RiskTolerance = "LOW"
	RiskMedium RiskTolerance = "MEDIUM"
	RiskHigh   RiskTolerance = "HIGH"
)

// ParseRiskTolerance accepts any casing. Unknown values map to "", which
// never satisfies a risk/stage affinity pair.
func ParseRiskTolerance(s string) RiskTolerance {
	switch RiskTolerance(strings.ToUpper(strings.TrimSpace(s))) {
	case RiskLow:
		return RiskLow
	case RiskMedium:
		return RiskMedium
	case RiskHigh:
		return RiskHigh
	}
	return ""
}

// InvestorCriteria is the investor side of a match. Preference slices are
// treated as sets.
type InvestorCriteria struct {
	InvestmentRangeMin  float64       `json:"investmentRangeMin"`
	InvestmentRangeMax  float64       `json:"investmentRangeMax"`
	PreferredIndustries []string      `json:"preferredIndustries"`
	PreferredStages     []string      `json:"preferredStages"`
	RiskTolerance       RiskTolerance `json:"riskTolerance"`
}

// CampaignCandidate is a fundraising campaign considered for an investor.
// An empty Industry or Stage means the value is absent.
type CampaignCandidate struct {
	ID                  string  `json:"id"`
	Industry            string  `json:"industry,omitempty"`
	Stage               string  `json:"stage,omitempty"`
	FundraisingGoal     float64 `json:"fundraisingGoal"`
	MinInvestment       float64 `json:"minInvestment"`
	EquityOffered       float64 `json:"equityOffered"`
	CurrentAmountRaised float64 `json:"currentAmountRaised"`
}

type ScoreResult struct {
	Campaign  CampaignCandidate `json:"campaign"`
	Score     int               `json:"score"`
	Reasons   []string          `json:"reasons"`
	Breakdown []RuleResult      `json:"breakdown,omitempty"`
}

// ParseInvestmentRange reads a "<min>-<max>" string after dropping every
// character that is not a digit, '.' or '-'. Sides that fail to parse come
// back as 0 and ok is false.
func ParseInvestmentRange(raw string) (min, max float64, ok bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)

	lo, hi, found := strings.Cut(cleaned, "-")
	if !found {
		return 0, 0, false
	}

	min, errMin := strconv.ParseFloat(lo, 64)
	if errMin != nil {
		min = 0
	}
	max, errMax := strconv.ParseFloat(hi, 64)
	if errMax != nil {
		max = 0
	}
	return min, max, errMin == nil && errMax == nil
}

func containsString(set []string, v string) bool {
	if v == "" {
		return false
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
