// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Decision is what the handler does with a failed job.
type Decision struct {
	// Throw raises a BPMN error instead of failing the job.
	Throw   bool
	Retries int32
	Error   *BPMNError
	Cause   *StandardError
}

// Decide fails retryable errors with a decremented retry budget capped at
// the code's retry count. Business errors, and retryable ones whose budget
// is spent, become BPMN errors so the process can route them.
func Decide(err error, jobRetries int32) Decision {
	stdErr := AsStandardError(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	d := Decision{Throw: true, Error: bpmnErr, Cause: stdErr}
	remaining := jobRetries - 1
	if bpmnErr.Retries > 0 && remaining > 0 {
		d.Throw = false
		d.Retries = remaining
		if limit := int32(bpmnErr.Retries); remaining > limit {
			d.Retries = limit
		}
	}
	return d
}

// JobError is a failure that has already been reported to the engine,
// either as a failed job or as a thrown BPMN error.
type JobError struct {
	Decision Decision
	err      error
}

func NewJobError(d Decision, err error) *JobError {
	return &JobError{Decision: d, err: err}
}

func (e *JobError) Error() string { return e.err.Error() }

func (e *JobError) Unwrap() error { return e.err }

// AsJobError reports whether err, or anything it wraps, was reported to the
// engine by HandleJobError.
func AsJobError(err error) (*JobError, bool) {
	var jobErr *JobError
	if stderrors.As(err, &jobErr) {
		return jobErr, true
	}
	return nil, false
}

// HandleJobError reports err to the engine and returns it wrapped with the
// decision that was sent.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) error {
	d := Decide(err, job.Retries)
	h.logError(job, d)

	vars := d.Error.ToErrorVariables()
	if d.Throw {
		h.throwBPMNError(ctx, client, job, d.Error, vars)
	} else {
		h.failJobWithRetries(ctx, client, job, d, vars)
	}
	return NewJobError(d, err)
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, d Decision, vars map[string]interface{}) {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(d.Retries).
		ErrorMessage(d.Cause.Error())

	if payload, err := json.Marshal(vars); err == nil {
		if withVars, err := cmd.VariablesFromString(string(payload)); err == nil {
			if _, err := withVars.Send(ctx); err != nil {
				h.logSendFailure("failed to send fail job command", job, err)
			}
			return
		}
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logSendFailure("failed to send fail job command", job, err)
	}
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, vars map[string]interface{}) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if payload, err := json.Marshal(vars); err == nil {
		if withVars, err := cmd.VariablesFromString(string(payload)); err == nil {
			if _, err := withVars.Send(ctx); err != nil {
				h.logSendFailure("failed to throw bpmn error", job, err)
			}
			return
		}
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logSendFailure("failed to throw bpmn error", job, err)
	}
}

func (h *ErrorHandler) logSendFailure(msg string, job entities.Job, err error) {
	h.logger.Error(msg, map[string]interface{}{
		"jobKey": job.Key,
		"error":  err.Error(),
	})
}

func (h *ErrorHandler) logError(job entities.Job, d Decision) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        d.Error.Code,
		"message":          d.Error.Message,
		"details":          d.Error.Details,
		"retryable":        d.Error.Retryable,
		"retries":          d.Retries,
		"thrown":           d.Throw,
		"errorCategory":    GetErrorCategory(d.Cause.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})
}
