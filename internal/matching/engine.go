// internal/matching/engine.go
package matching

import (
	"math"
	"sort"
)

const (
	DefaultMinScore = 40
	DefaultLimit    = 10
)

// Breakdown is the full evaluation of one investor/campaign pair.
type Breakdown struct {
	Rules    []RuleResult `json:"rules"`
	Earned   float64      `json:"earned"`
	Possible float64      `json:"possible"`
	Score    int          `json:"score"`
}

// Engine holds an immutable rule set and is safe for concurrent use.
type Engine struct {
	rules []Rule
}

func NewEngine(rules ...Rule) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return &Engine{rules: copied}
}

var defaultEngine = NewEngine()

// Evaluate runs every rule and scales earned points to 0-100.
func (e *Engine) Evaluate(investor InvestorCriteria, campaign CampaignCandidate) Breakdown {
	b := Breakdown{Rules: make([]RuleResult, 0, len(e.rules))}
	for _, rule := range e.rules {
		res := rule.Evaluate(investor, campaign)
		b.Rules = append(b.Rules, res)
		b.Earned += res.Earned
		b.Possible += res.Possible
	}
	b.Score = scale(b.Earned, b.Possible)
	return b
}

func (e *Engine) Score(investor InvestorCriteria, campaign CampaignCandidate) int {
	return e.Evaluate(investor, campaign).Score
}

// scale rounds half up; earned and possible are never negative.
func scale(earned, possible float64) int {
	if possible <= 0 {
		return 0
	}
	score := math.Floor(earned/possible*100 + 0.5)
	return int(math.Max(0, math.Min(100, score)))
}

// ScoreCampaign bundles score, reasons and breakdown for one campaign.
func (e *Engine) ScoreCampaign(investor InvestorCriteria, campaign CampaignCandidate) ScoreResult {
	b := e.Evaluate(investor, campaign)
	return ScoreResult{
		Campaign:  campaign,
		Score:     b.Score,
		Reasons:   reasonsFor(b.Rules, campaign, b.Score),
		Breakdown: b.Rules,
	}
}

type rankOptions struct {
	minScore int
	limit    int
}

type RankOption func(*rankOptions)

func WithMinScore(n int) RankOption {
	return func(o *rankOptions) { o.minScore = n }
}

// WithLimit caps the result length. Negative values act as zero.
func WithLimit(n int) RankOption {
	return func(o *rankOptions) {
		if n < 0 {
			n = 0
		}
		o.limit = n
	}
}

// Rank scores every candidate, drops those under the minimum score and
// returns the best ones first. Equal scores keep their input order.
func (e *Engine) Rank(investor InvestorCriteria, candidates []CampaignCandidate, opts ...RankOption) []ScoreResult {
	o := rankOptions{minScore: DefaultMinScore, limit: DefaultLimit}
	for _, opt := range opts {
		opt(&o)
	}

	results := make([]ScoreResult, 0, len(candidates))
	for _, c := range candidates {
		res := e.ScoreCampaign(investor, c)
		if res.Score < o.minScore {
			continue
		}
		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > o.limit {
		results = results[:o.limit]
	}
	return results
}

func Score(investor InvestorCriteria, campaign CampaignCandidate) int {
	return defaultEngine.Score(investor, campaign)
}

func Explain(investor InvestorCriteria, campaign CampaignCandidate, score int) []string {
	return defaultEngine.Explain(investor, campaign, score)
}

func Rank(investor InvestorCriteria, candidates []CampaignCandidate, opts ...RankOption) []ScoreResult {
	return defaultEngine.Rank(investor, candidates, opts...)
}
