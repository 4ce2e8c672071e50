// internal/workers/matching/profile/profile.go
package profile

import (
	"context"
	stderrors "errors"

	"campaign-workers/internal/common/errors"
	"campaign-workers/internal/matching"
	"campaign-workers/internal/repository"
)

// Profile is investor criteria passed inline in job variables. Explicit
// bounds win over a range string.
type Profile struct {
	InvestmentRange     string   `json:"investmentRange,omitempty"`
	InvestmentRangeMin  *float64 `json:"investmentRangeMin,omitempty"`
	InvestmentRangeMax  *float64 `json:"investmentRangeMax,omitempty"`
	PreferredIndustries []string `json:"preferredIndustries,omitempty"`
	PreferredStages     []string `json:"preferredStages,omitempty"`
	RiskTolerance       string   `json:"riskTolerance,omitempty"`
}

func (p Profile) Criteria() matching.InvestorCriteria {
	c := matching.InvestorCriteria{
		PreferredIndustries: p.PreferredIndustries,
		PreferredStages:     p.PreferredStages,
		RiskTolerance:       matching.ParseRiskTolerance(p.RiskTolerance),
	}
	if p.InvestmentRange != "" {
		c.InvestmentRangeMin, c.InvestmentRangeMax, _ = matching.ParseInvestmentRange(p.InvestmentRange)
	}
	if p.InvestmentRangeMin != nil {
		c.InvestmentRangeMin = *p.InvestmentRangeMin
	}
	if p.InvestmentRangeMax != nil {
		c.InvestmentRangeMax = *p.InvestmentRangeMax
	}
	return c
}

// Resolve prefers inline criteria and otherwise loads them by investor ID.
// Errors are already mapped to job error codes.
func Resolve(ctx context.Context, store repository.CriteriaStore, investorID string, inline *Profile) (matching.InvestorCriteria, error) {
	if inline != nil {
		return inline.Criteria(), nil
	}
	if investorID == "" {
		return matching.InvestorCriteria{}, errors.NewInvalidInputError("investorId or investor is required")
	}

	criteria, err := store.GetCriteria(ctx, investorID)
	if err != nil {
		return matching.InvestorCriteria{}, StoreError(investorID, err)
	}
	return *criteria, nil
}

func StoreError(investorID string, err error) error {
	switch {
	case stderrors.Is(err, repository.ErrInvestorNotFound):
		return errors.NewInvestorNotFoundError(investorID, err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewQueryTimeoutError("get_investor_criteria")
	default:
		return errors.NewQueryExecutionFailedError("get_investor_criteria", err)
	}
}
