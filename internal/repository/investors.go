// internal/repository/investors.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"campaign-workers/internal/common/logger"
	"campaign-workers/internal/common/metrics"
	"campaign-workers/internal/matching"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

var ErrInvestorNotFound = errors.New("investor profile not found")

const criteriaCacheName = "investor_criteria"

// CriteriaStore loads the matching criteria of one investor.
type CriteriaStore interface {
	GetCriteria(ctx context.Context, investorID string) (*matching.InvestorCriteria, error)
}

// InvestorStore reads investor_profiles with a Redis cache in front.
// A nil cache disables caching.
type InvestorStore struct {
	db     *sql.DB
	cache  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewInvestorStore(db *sql.DB, cache *redis.Client, ttl time.Duration, log logger.Logger) *InvestorStore {
	return &InvestorStore{db: db, cache: cache, ttl: ttl, logger: log}
}

func criteriaKey(investorID string) string {
	return "investor:criteria:" + investorID
}

const criteriaQuery = `SELECT investment_range, preferred_industries, preferred_stages, risk_tolerance
FROM investor_profiles WHERE user_id = $1`

func (s *InvestorStore) GetCriteria(ctx context.Context, investorID string) (*matching.InvestorCriteria, error) {
	if cached, ok := s.cached(ctx, investorID); ok {
		return cached, nil
	}

	var (
		investmentRange sql.NullString
		industries      pq.StringArray
		stages          pq.StringArray
		risk            sql.NullString
	)
	err := s.db.QueryRowContext(ctx, criteriaQuery, investorID).Scan(
		&investmentRange, &industries, &stages, &risk,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrInvestorNotFound, investorID)
		}
		return nil, fmt.Errorf("get investor criteria: %w", err)
	}

	criteria := &matching.InvestorCriteria{
		PreferredIndustries: []string(industries),
		PreferredStages:     []string(stages),
		RiskTolerance:       matching.ParseRiskTolerance(risk.String),
	}
	if investmentRange.Valid {
		lo, hi, ok := matching.ParseInvestmentRange(investmentRange.String)
		if !ok {
			s.logger.Warn("investment range only partly parsed", map[string]interface{}{
				"investorId": investorID,
				"raw":        investmentRange.String,
			})
		}
		criteria.InvestmentRangeMin, criteria.InvestmentRangeMax = lo, hi
	}

	s.store(ctx, investorID, criteria)
	return criteria, nil
}

func (s *InvestorStore) cached(ctx context.Context, investorID string) (*matching.InvestorCriteria, bool) {
	if s.cache == nil {
		return nil, false
	}

	val, err := s.cache.Get(ctx, criteriaKey(investorID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCache(criteriaCacheName, metrics.CacheMiss)
		} else {
			metrics.RecordCache(criteriaCacheName, metrics.CacheError)
			s.logger.Warn("criteria cache read failed", map[string]interface{}{
				"investorId": investorID,
				"error":      err.Error(),
			})
		}
		return nil, false
	}

	var criteria matching.InvestorCriteria
	if err := json.Unmarshal([]byte(val), &criteria); err != nil {
		metrics.RecordCache(criteriaCacheName, metrics.CacheError)
		return nil, false
	}
	metrics.RecordCache(criteriaCacheName, metrics.CacheHit)
	return &criteria, true
}

func (s *InvestorStore) store(ctx context.Context, investorID string, criteria *matching.InvestorCriteria) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(criteria)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, criteriaKey(investorID), data, s.ttl).Err(); err != nil {
		s.logger.Warn("criteria cache write failed", map[string]interface{}{
			"investorId": investorID,
			"error":      err.Error(),
		})
	}
}
