// internal/workers/matching/rank-campaigns/handler.go
package rankcampaigns

import (
	"context"
	stderrors "errors"

	"campaign-workers/internal/common/config"
	"campaign-workers/internal/common/errors"
	"campaign-workers/internal/common/logger"
	"campaign-workers/internal/common/metrics"
	"campaign-workers/internal/common/validation"
	"campaign-workers/internal/matching"
	"campaign-workers/internal/repository"
	"campaign-workers/internal/workers/matching/profile"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "rank-campaigns"
)

type Handler struct {
	config       *Config
	store        repository.CriteriaStore
	source       repository.CampaignSource
	engine       *matching.Engine
	schema       *validation.Schema
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
	newID        func() string
}

func NewHandler(
	config *Config,
	store repository.CriteriaStore,
	source repository.CampaignSource,
	schema *validation.Schema,
	log logger.Logger,
) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        store,
		source:       source,
		engine:       matching.NewEngine(),
		schema:       schema,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
		newID:        uuid.NewString,
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
	investor, err := profile.Resolve(ctx, h.store, input.InvestorID, input.Investor)
	if err != nil {
		return nil, err
	}

	candidates := input.Candidates
	if candidates == nil {
		candidates, err = h.loadCandidates(ctx)
		if err != nil {
			return nil, err
		}
	}

	minScore, limit := h.config.MinScore, h.config.TopN
	if input.MinScore != nil {
		minScore = *input.MinScore
	}
	if input.Limit != nil {
		limit = *input.Limit
	}
	if limit < 0 {
		limit = 0
	}

	results := h.engine.Rank(investor, candidates, matching.WithMinScore(minScore), matching.WithLimit(limit))
	if !input.IncludeBreakdown {
		for i := range results {
			results[i].Breakdown = nil
		}
	}
	metrics.ObserveRanking(len(candidates), len(results))

	output := &Output{
		RankingID:  h.newID(),
		InvestorID: input.InvestorID,
		MinScore:   minScore,
		Limit:      limit,
		Evaluated:  len(candidates),
		Returned:   len(results),
		Results:    results,
	}

	h.logger.Info("campaigns ranked", map[string]interface{}{
		"rankingId":  output.RankingID,
		"investorId": input.InvestorID,
		"evaluated":  output.Evaluated,
		"returned":   output.Returned,
	})
	return output, nil
}

func (h *Handler) loadCandidates(ctx context.Context) ([]matching.CampaignCandidate, error) {
	if h.source == nil {
		return nil, errors.NewInvalidInputError("candidates are required when no campaign source is configured")
	}

	candidates, err := h.source.ListCandidates(ctx, h.config.CandidatePoolSize)
	if err != nil {
		return nil, h.sourceError(err)
	}
	if candidates == nil {
		candidates = []matching.CampaignCandidate{}
	}
	return candidates, nil
}

func (h *Handler) sourceError(err error) error {
	timedOut := stderrors.Is(err, context.DeadlineExceeded)
	if h.config.CandidateSource == config.CandidateSourceElasticsearch {
		if timedOut {
			return errors.NewSearchTimeoutError(h.config.Index)
		}
		return errors.NewSearchQueryFailedError(h.config.Index, err)
	}
	if timedOut {
		return errors.NewQueryTimeoutError("list_candidates")
	}
	return errors.NewQueryExecutionFailedError("list_candidates", err)
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
