// internal/common/database/clients.go
package database

import (
	"context"
	"errors"
	"fmt"

	"campaign-workers/internal/common/config"
)

// Clients bundles the stores the workers read from. Elasticsearch is nil
// unless campaigns are sourced from it.
type Clients struct {
	Postgres      *PostgresClient
	Redis         *RedisClient
	Elasticsearch *ElasticsearchClient
}

func Open(cfg *config.Config) (*Clients, error) {
	pg, err := NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, err
	}

	clients := &Clients{
		Postgres: pg,
		Redis:    NewRedis(cfg.Database.Redis),
	}

	if cfg.Matching.CandidateSource == config.CandidateSourceElasticsearch {
		es, err := NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			clients.Close()
			return nil, err
		}
		clients.Elasticsearch = es
	}

	return clients, nil
}

// HealthCheck pings every configured store and reports all failures.
func (c *Clients) HealthCheck(ctx context.Context) error {
	var errs []error
	if c.Postgres != nil {
		errs = append(errs, c.Postgres.Ping(ctx))
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Ping(ctx))
	}
	if c.Elasticsearch != nil {
		errs = append(errs, c.Elasticsearch.Ping(ctx))
	}
	return errors.Join(errs...)
}

func (c *Clients) Close() error {
	var errs []error
	if c.Postgres != nil {
		errs = append(errs, c.Postgres.Close())
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close clients: %w", err)
	}
	return nil
}
