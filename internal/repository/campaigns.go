// internal/repository/campaigns.go
package repository

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"campaign-workers/internal/matching"

	"github.com/elastic/go-elasticsearch/v8"
)

// CampaignSource lists active campaigns to rank. A limit of zero or less
// means no bound.
type CampaignSource interface {
	ListCandidates(ctx context.Context, limit int) ([]matching.CampaignCandidate, error)
}

type PostgresCampaigns struct {
	db *sql.DB
}

func NewPostgresCampaigns(db *sql.DB) *PostgresCampaigns {
	return &PostgresCampaigns{db: db}
}

// LIMIT NULL is no limit in Postgres.
const candidatesQuery = `SELECT id, industry, stage,
	COALESCE(fundraising_goal, 0), COALESCE(min_investment, 0),
	COALESCE(equity_offered, 0), COALESCE(current_amount_raised, 0)
FROM campaigns WHERE status = 'active'
ORDER BY created_at DESC
LIMIT $1`

func (p *PostgresCampaigns) ListCandidates(ctx context.Context, limit int) ([]matching.CampaignCandidate, error) {
	rows, err := p.db.QueryContext(ctx, candidatesQuery, sql.NullInt64{Int64: int64(limit), Valid: limit > 0})
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var out []matching.CampaignCandidate
	for rows.Next() {
		var (
			c        matching.CampaignCandidate
			industry sql.NullString
			stage    sql.NullString
		)
		if err := rows.Scan(&c.ID, &industry, &stage,
			&c.FundraisingGoal, &c.MinInvestment, &c.EquityOffered, &c.CurrentAmountRaised); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		c.Industry = industry.String
		c.Stage = stage.String
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaigns: %w", err)
	}
	return out, nil
}

// Search results are capped at the default index.max_result_window.
const maxSearchWindow = 10000

type ElasticsearchCampaigns struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchCampaigns(client *elasticsearch.Client, index string) *ElasticsearchCampaigns {
	return &ElasticsearchCampaigns{client: client, index: index}
}

func (e *ElasticsearchCampaigns) Index() string { return e.index }

type campaignDocument struct {
	ID                  string  `json:"id"`
	Industry            string  `json:"industry"`
	Stage               string  `json:"stage"`
	FundraisingGoal     float64 `json:"fundraising_goal"`
	MinInvestment       float64 `json:"min_investment"`
	EquityOffered       float64 `json:"equity_offered"`
	CurrentAmountRaised float64 `json:"current_amount_raised"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string           `json:"_id"`
			Source campaignDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func candidatesSearch(size int) map[string]interface{} {
	return map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"status": "active"}},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"created_at": map[string]interface{}{"order": "desc", "unmapped_type": "date"}},
		},
	}
}

func (e *ElasticsearchCampaigns) ListCandidates(ctx context.Context, limit int) ([]matching.CampaignCandidate, error) {
	size := limit
	if size <= 0 || size > maxSearchWindow {
		size = maxSearchWindow
	}

	body, err := json.Marshal(candidatesSearch(size))
	if err != nil {
		return nil, err
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search campaigns: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search campaigns: %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]matching.CampaignCandidate, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		doc := hit.Source
		id := doc.ID
		if id == "" {
			id = hit.ID
		}
		out = append(out, matching.CampaignCandidate{
			ID:                  id,
			Industry:            doc.Industry,
			Stage:               doc.Stage,
			FundraisingGoal:     doc.FundraisingGoal,
			MinInvestment:       doc.MinInvestment,
			EquityOffered:       doc.EquityOffered,
			CurrentAmountRaised: doc.CurrentAmountRaised,
		})
	}
	return out, nil
}
