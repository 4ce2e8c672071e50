// internal/workers/matching/rank-campaigns/config.go
package rankcampaigns

import (
	"time"

	"campaign-workers/internal/common/config"
)

type Config struct {
	Timeout           time.Duration
	MinScore          int
	TopN              int
	CandidatePoolSize int
	// CandidateSource names the store behind the campaign source and
	// selects which error codes its failures map to.
	CandidateSource string
	Index           string
}

func LoadConfig(cfg *config.Config) *Config {
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:           config.GetDuration(wcfg.Timeout),
		MinScore:          cfg.Matching.MinScore,
		TopN:              cfg.Matching.TopN,
		CandidatePoolSize: cfg.Matching.CandidatePoolSize,
		CandidateSource:   cfg.Matching.CandidateSource,
		Index:             cfg.Database.Elasticsearch.CampaignIndex,
	}
}
