// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig               `mapstructure:"app"`
	Camunda   CamundaConfig           `mapstructure:"camunda"`
	Database  DatabaseConfig          `mapstructure:"database"`
	Workers   map[string]WorkerConfig `mapstructure:"workers"`
	Logging   LoggingConfig           `mapstructure:"logging"`
	Matching  MatchingConfig          `mapstructure:"matching"`
	Analytics AnalyticsConfig         `mapstructure:"analytics"`
	Registry  RegistryConfig          `mapstructure:"registry"`
	Server    ServerConfig            `mapstructure:"server"`

	// EnvFile is the .env file that was loaded, if any.
	EnvFile string `mapstructure:"-"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	UsePlaintext   bool   `mapstructure:"use_plaintext"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses     []string `mapstructure:"addresses"`
	Username      string   `mapstructure:"username"`
	Password      string   `mapstructure:"password"`
	CampaignIndex string   `mapstructure:"campaign_index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Candidate sources for the rank-campaigns worker.
const (
	CandidateSourcePostgres      = "postgres"
	CandidateSourceElasticsearch = "elasticsearch"
)

// MatchingConfig holds ranking defaults and the investor criteria cache TTL.
type MatchingConfig struct {
	MinScore          int    `mapstructure:"min_score"`
	TopN              int    `mapstructure:"top_n"`
	CandidateSource   string `mapstructure:"candidate_source"`
	CandidatePoolSize int    `mapstructure:"candidate_pool_size"`
	CriteriaCacheTTL  int    `mapstructure:"criteria_cache_ttl"` // seconds
}

// FieldMapping adds source paths to a normalized metrics field. Listed
// rather than keyed because viper lowercases map keys.
type FieldMapping struct {
	Field string   `mapstructure:"field"`
	Kind  string   `mapstructure:"kind"`
	Paths []string `mapstructure:"paths"`
}

type AnalyticsConfig struct {
	CacheTTL int            `mapstructure:"cache_ttl"` // seconds
	FieldMap []FieldMapping `mapstructure:"field_map"`
}

type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

func (m MatchingConfig) CriteriaTTL() time.Duration {
	return time.Duration(m.CriteriaCacheTTL) * time.Second
}

func (a AnalyticsConfig) TTL() time.Duration {
	return time.Duration(a.CacheTTL) * time.Second
}
