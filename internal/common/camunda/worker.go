// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"campaign-workers/internal/common/config"
	"campaign-workers/internal/common/errors"
	"campaign-workers/internal/common/logger"
	"campaign-workers/internal/common/metrics"
	"campaign-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler completes or fails the job itself and returns the error it
// routed, if any.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

func NewWorker(
	client zbc.Client,
	taskType string,
	cfg config.WorkerConfig,
	handler JobHandler,
	log logger.Logger,
	obs *observability.Observability,
) *CamundaWorker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(instrument(taskType, handler, log, obs)).
		MaxJobsActive(cfg.MaxJobsActive).
		Timeout(config.GetDuration(cfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": cfg.MaxJobsActive,
		"timeoutMs":     cfg.Timeout,
	})

	return &CamundaWorker{worker: jobWorker, logger: log, taskType: taskType}
}

// instrument records prometheus and otel job metrics around handler.
func instrument(taskType string, handler JobHandler, log logger.Logger, obs *observability.Observability) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		active := metrics.WorkerJobsActive.WithLabelValues(taskType)
		active.Inc()
		defer active.Dec()

		start := time.Now()
		err := handler.Handle(client, job)
		elapsed := time.Since(start)

		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())

		status := jobStatus(err)
		if err != nil {
			stdErr := errors.AsStandardError(err)
			metrics.WorkerJobsFailed.WithLabelValues(taskType, string(stdErr.Code)).Inc()
			log.Debug("job ended with error", map[string]interface{}{
				"jobKey":     job.Key,
				"errorCode":  stdErr.Code,
				"status":     status,
				"durationMs": elapsed.Milliseconds(),
			})
		} else {
			metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		}

		obs.RecordJob(context.Background(), taskType, status, elapsed)
	}
}

// jobStatus labels the outcome by the command that reached the engine. An
// error nobody reported, such as a failed complete command, leaves the job
// to time out and is labelled incomplete.
func jobStatus(err error) string {
	if err == nil {
		return observability.StatusCompleted
	}
	jobErr, ok := errors.AsJobError(err)
	if !ok {
		return observability.StatusIncomplete
	}
	if jobErr.Decision.Throw {
		return observability.StatusThrown
	}
	return observability.StatusFailed
}

func (w *CamundaWorker) Close() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
