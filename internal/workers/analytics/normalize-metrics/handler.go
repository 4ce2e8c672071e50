// internal/workers/analytics/normalize-metrics/handler.go
package normalizemetrics

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"campaign-workers/internal/analytics"
	"campaign-workers/internal/common/errors"
	"campaign-workers/internal/common/logger"
	"campaign-workers/internal/common/metrics"
	"campaign-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/tidwall/gjson"
)

const (
	TaskType = "normalize-metrics"
)

// MetricsStore persists normalized metrics; a nil store skips caching.
type MetricsStore interface {
	Put(ctx context.Context, campaignID, source string, normalized []byte) error
	Get(ctx context.Context, campaignID, source string) ([]byte, bool, error)
}

type Handler struct {
	config       *Config
	normalizer   *analytics.Normalizer
	cache        MetricsStore
	schema       *validation.Schema
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, cache MetricsStore, schema *validation.Schema, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		normalizer:   analytics.NewNormalizer(config.FieldMap),
		cache:        cache,
		schema:       schema,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	err := validation.DecodeVariables(h.schema, job.Variables, &input)
	var output *Output
	if err == nil {
		output, err = h.execute(ctx, &input)
	}
	if err != nil {
		return h.errorHandler.HandleJobError(ctx, client, job, err)
	}

	return h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UseCached && h.cache != nil && input.CampaignID != "" {
		output, err := h.cachedOutput(ctx, input)
		if err != nil || output != nil {
			return output, err
		}
	}

	var opts []analytics.Option
	if input.IncludeReport {
		opts = append(opts, analytics.WithReport())
	}

	result, err := h.normalizer.Normalize(unwrapPayload(input.Payload), opts...)
	if err != nil {
		if stderrors.Is(err, analytics.ErrInvalidPayload) {
			return nil, errors.NewPayloadInvalidError("payload is not valid JSON", err)
		}
		return nil, errors.NewInternalError(err)
	}

	mapped, unmapped := countFields(result.Records)
	metrics.RecordFields(input.Source, mapped, unmapped)

	output := &Output{
		CampaignID:         input.CampaignID,
		Source:             input.Source,
		Metrics:            result.Metrics(),
		MappingReport:      result.MappingReport(),
		UnrecognizedFields: result.Unrecognized,
		RecordCount:        len(result.Records),
	}

	if h.cache != nil && input.CampaignID != "" {
		data, err := json.Marshal(result)
		if err != nil {
			return nil, errors.NewInternalError(err)
		}
		if err := h.cache.Put(ctx, input.CampaignID, input.Source, data); err != nil {
			return nil, errors.NewCacheUnavailableError(err)
		}
		output.Cached = true
	}

	h.logger.Debug("metrics normalized", map[string]interface{}{
		"campaignId":   input.CampaignID,
		"source":       input.Source,
		"records":      output.RecordCount,
		"mapped":       mapped,
		"unmapped":     unmapped,
		"unrecognized": len(result.Unrecognized),
	})
	return output, nil
}

// cachedOutput serves the stored normalization. A miss, or an unreadable
// entry, returns nil so the payload is normalized instead. A read failure
// only fails the job when there is no payload to fall back on.
func (h *Handler) cachedOutput(ctx context.Context, input *Input) (*Output, error) {
	fields := map[string]interface{}{
		"campaignId": input.CampaignID,
		"source":     input.Source,
	}

	data, found, err := h.cache.Get(ctx, input.CampaignID, input.Source)
	if err != nil {
		if len(input.Payload) == 0 {
			return nil, errors.NewCacheUnavailableError(err)
		}
		fields["error"] = err.Error()
		h.logger.Warn("cached metrics unavailable, normalizing payload", fields)
		return nil, nil
	}
	if !found {
		return nil, nil
	}

	var cached cachedResult
	if err := json.Unmarshal(data, &cached); err != nil || len(cached.Metrics) == 0 {
		h.logger.Warn("ignoring unreadable cached metrics", fields)
		return nil, nil
	}

	output := &Output{
		CampaignID:         input.CampaignID,
		Source:             input.Source,
		Metrics:            cached.Metrics,
		UnrecognizedFields: cached.UnrecognizedFields,
		RecordCount:        recordCount(cached.Metrics),
		Cached:             true,
		FromCache:          true,
	}
	if input.IncludeReport && len(cached.MappingReport) > 0 {
		output.MappingReport = cached.MappingReport
	}

	h.logger.Debug("metrics served from cache", fields)
	return output, nil
}

func recordCount(metrics json.RawMessage) int {
	if v := gjson.ParseBytes(metrics); v.IsArray() {
		return len(v.Array())
	}
	return 1
}

// unwrapPayload decodes a payload sent as a JSON string holding JSON.
func unwrapPayload(raw json.RawMessage) []byte {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []byte(s)
	}
	return raw
}

func countFields(records []analytics.Record) (mapped, unmapped int) {
	for _, rec := range records {
		for _, v := range rec {
			if v == nil {
				unmapped++
			} else {
				mapped++
			}
		}
	}
	return mapped, unmapped
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return errors.NewInternalError(err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return errors.NewEngineUnavailableError("complete_job", err)
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
