// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"campaign-workers/internal/common/camunda"
	"campaign-workers/internal/common/config"
	"campaign-workers/internal/common/database"
	"campaign-workers/internal/common/logger"
	"campaign-workers/internal/common/observability"
	"campaign-workers/internal/common/validation"
	"campaign-workers/internal/repository"
	"campaign-workers/pkg/registry"

	nm "campaign-workers/internal/workers/analytics/normalize-metrics"
	rc "campaign-workers/internal/workers/matching/rank-campaigns"
	sc "campaign-workers/internal/workers/matching/score-campaign"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func fatal(log logger.Logger, msg string, err error) {
	log.Error(msg, map[string]interface{}{"error": err.Error()})
	_ = log.Sync()
	os.Exit(1)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}).WithFields(map[string]interface{}{
		"service":     cfg.App.Name,
		"environment": cfg.App.Environment,
	})
	defer log.Sync()

	log.Info("starting worker manager", map[string]interface{}{"envFile": cfg.EnvFile})

	obs, err := observability.New(cfg.App.Name, prometheus.DefaultRegisterer)
	if err != nil {
		fatal(log, "observability init failed", err)
	}

	ctx := context.Background()

	// --- Stores ---
	var clients *database.Clients
	err = retryWithBackoff(func() error {
		var err error
		if clients, err = database.Open(cfg); err != nil {
			return err
		}
		if err := clients.HealthCheck(ctx); err != nil {
			clients.Close()
			return err
		}
		return nil
	}, 15, 2*time.Second, log, "store connection")
	if err != nil {
		fatal(log, "stores unavailable after retries", err)
	}
	defer clients.Close()
	log.Info("stores connected", map[string]interface{}{"candidateSource": cfg.Matching.CandidateSource})

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, log, "zeebe client initialization")
	if err != nil {
		fatal(log, "zeebe client failed after retries", err)
	}
	log.Info("zeebe client connected", map[string]interface{}{"gateway": cfg.Camunda.BrokerAddress})

	// --- Job variable schemas ---
	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		fatal(log, "activity registry load failed", err)
	}
	schemas, err := reg.InputSchemas()
	if err != nil {
		fatal(log, "activity registry schemas invalid", err)
	}

	// --- Workers ---
	investors := repository.NewInvestorStore(clients.Postgres.DB, clients.Redis.Client, cfg.Matching.CriteriaTTL(), log)

	var campaigns repository.CampaignSource = repository.NewPostgresCampaigns(clients.Postgres.DB)
	if clients.Elasticsearch != nil {
		campaigns = repository.NewElasticsearchCampaigns(clients.Elasticsearch.Client, cfg.Database.Elasticsearch.CampaignIndex)
	}

	handlers := map[string]camunda.JobHandler{
		sc.TaskType: sc.NewHandler(sc.LoadConfig(cfg), investors, schemaFor(schemas, sc.TaskType, log), log),
		rc.TaskType: rc.NewHandler(rc.LoadConfig(cfg), investors, campaigns, schemaFor(schemas, rc.TaskType, log), log),
		nm.TaskType: nm.NewHandler(nm.LoadConfig(cfg),
			repository.NewMetricsCache(clients.Redis.Client, cfg.Analytics.TTL()),
			schemaFor(schemas, nm.TaskType, log), log),
	}

	var workers []*camunda.CamundaWorker
	for _, taskType := range []string{sc.TaskType, rc.TaskType, nm.TaskType} {
		if !config.IsWorkerEnabled(cfg, taskType) {
			log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
			continue
		}
		w := camunda.NewWorker(zeebe.Zeebe(), taskType, config.GetWorkerConfig(cfg, taskType), handlers[taskType], log, obs)
		workers = append(workers, w)
	}
	log.Info("workers registered", map[string]interface{}{"count": len(workers)})

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           newMux(clients, zeebe),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("health/metrics server listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("health/metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping workers", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("health/metrics server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Error("observability shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if err := zeebe.Close(); err != nil {
		log.Error("error closing zeebe client", map[string]interface{}{"error": err.Error()})
	}

	log.Info("worker manager stopped gracefully", nil)
}

// schemaFor returns nil, which accepts any variables, for task types the
// registry has no input schema for.
func schemaFor(schemas map[string]*validation.Schema, taskType string, log logger.Logger) *validation.Schema {
	schema, ok := schemas[taskType]
	if !ok {
		log.Warn("no input schema registered", map[string]interface{}{"taskType": taskType})
	}
	return schema
}
