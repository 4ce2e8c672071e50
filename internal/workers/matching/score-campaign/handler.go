// internal/workers/matching/score-campaign/handler.go
package scorecampaign

import (
	"context"

	"campaign-workers/internal/common/errors"
	"campaign-workers/internal/common/logger"
	"campaign-workers/internal/common/metrics"
	"campaign-workers/internal/common/validation"
	"campaign-workers/internal/matching"
	"campaign-workers/internal/repository"
	"campaign-workers/internal/workers/matching/profile"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "score-campaign"
)

type Handler struct {
	config       *Config
	store        repository.CriteriaStore
	engine       *matching.Engine
	schema       *validation.Schema
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, store repository.CriteriaStore, schema *validation.Schema, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        store,
		engine:       matching.NewEngine(),
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
	if input.Campaign.ID == "" {
		return nil, errors.NewInvalidInputError("campaign.id is required")
	}

	investor, err := profile.Resolve(ctx, h.store, input.InvestorID, input.Investor)
	if err != nil {
		return nil, err
	}

	result := h.engine.ScoreCampaign(investor, input.Campaign)
	metrics.MatchScore.Observe(float64(result.Score))

	h.logger.Debug("campaign scored", map[string]interface{}{
		"investorId": input.InvestorID,
		"campaignId": input.Campaign.ID,
		"score":      result.Score,
	})

	return &Output{
		InvestorID: input.InvestorID,
		CampaignID: input.Campaign.ID,
		Score:      result.Score,
		Reasons:    result.Reasons,
		Breakdown:  result.Breakdown,
	}, nil
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
