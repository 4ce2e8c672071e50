// internal/common/errors/errors_test.go
package errors

import (
	"database/sql"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name      string
		err       *StandardError
		code      string
		retries   int
		retryable bool
		category  string
	}{
		{"investor not found", NewInvestorNotFoundError("inv-1", sql.ErrNoRows), "INVESTOR_NOT_FOUND", 0, false, "MATCHING"},
		{"invalid input", NewInvalidInputError("investorId is required"), "INVALID_INPUT", 0, false, "VALIDATION"},
		{"payload invalid", NewPayloadInvalidError("unexpected end", nil), "PAYLOAD_INVALID", 0, false, "ANALYTICS"},
		{"query failed", NewQueryExecutionFailedError("get_criteria", fmt.Errorf("conn reset")), "QUERY_EXECUTION_FAILED", 3, true, "DATABASE"},
		{"query timeout", NewQueryTimeoutError("list_candidates"), "QUERY_TIMEOUT", 2, true, "DATABASE"},
		{"search failed", NewSearchQueryFailedError("campaigns", fmt.Errorf("503")), "SEARCH_QUERY_FAILED", 3, true, "SEARCH"},
		{"search timeout", NewSearchTimeoutError("campaigns"), "SEARCH_TIMEOUT", 2, true, "SEARCH"},
		{"cache unavailable", NewCacheUnavailableError(fmt.Errorf("dial tcp")), "CACHE_UNAVAILABLE", 2, true, "CACHE"},
		{"engine unavailable", NewEngineUnavailableError("complete_job", fmt.Errorf("unavailable")), "WORKFLOW_ENGINE_UNAVAILABLE", 3, true, "WORKFLOW"},
		{"engine rejected", NewEngineRejectedError("complete_job", fmt.Errorf("not found")), "WORKFLOW_ENGINE_REJECTED", 0, false, "WORKFLOW"},
		{"internal", NewInternalError(fmt.Errorf("boom")), "INTERNAL_ERROR", 0, false, "OTHER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.code, bpmn.Code)
			assert.Equal(t, tt.retries, bpmn.Retries)
			assert.Equal(t, tt.retryable, bpmn.Retryable)
			assert.Equal(t, tt.category, bpmn.ErrorVariables["errorCategory"])
			assert.Equal(t, tt.code, bpmn.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestConvertToBPMNError_NonRetryableOverridesCode(t *testing.T) {
	stdErr := NewQueryExecutionFailedError("x", fmt.Errorf("y"))
	stdErr.Retryable = false
	assert.Equal(t, 0, ConvertToBPMNError(stdErr).Retries)
}

func TestBPMNError_ToErrorVariables(t *testing.T) {
	bpmn := ConvertToBPMNError(NewInvestorNotFoundError("inv-9", nil))
	vars := bpmn.ToErrorVariables()

	assert.Equal(t, "INVESTOR_NOT_FOUND", vars["errorCode"])
	assert.Equal(t, "inv-9", vars["investorId"])
	assert.Equal(t, false, vars["retryable"])
	assert.Contains(t, vars, "timestamp")
}

func TestAsStandardError(t *testing.T) {
	cause := NewQueryTimeoutError("get_criteria")
	wrapped := fmt.Errorf("score campaign: %w", cause)

	assert.Same(t, cause, AsStandardError(wrapped))

	plain := AsStandardError(stderrors.New("unexpected"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.False(t, plain.Retryable)
}

func TestStandardError_Unwrap(t *testing.T) {
	err := NewInvestorNotFoundError("inv-1", sql.ErrNoRows)
	assert.True(t, stderrors.Is(err, sql.ErrNoRows))
	assert.Contains(t, err.Error(), "INVESTOR_NOT_FOUND")
	assert.Contains(t, err.Error(), "investorId: inv-1")
}

// ==========================
// Job Error Decision Tests
// ==========================

func TestDecide(t *testing.T) {
	retryable := NewQueryExecutionFailedError("get_criteria", fmt.Errorf("conn reset"))
	timeout := NewSearchTimeoutError("campaigns")

	tests := []struct {
		name       string
		err        error
		jobRetries int32
		throw      bool
		retries    int32
	}{
		{"business error throws", NewInvestorNotFoundError("inv-1", nil), 3, true, 0},
		{"retryable decrements", retryable, 3, false, 2},
		{"retryable capped at code limit", retryable, 10, false, 3},
		{"timeout capped at two", timeout, 5, false, 2},
		{"last attempt throws", retryable, 1, true, 0},
		{"no retries left throws", retryable, 0, true, 0},
		{"unknown error throws", stderrors.New("boom"), 3, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.err, tt.jobRetries)
			assert.Equal(t, tt.throw, d.Throw)
			assert.Equal(t, tt.retries, d.Retries)
			require.NotNil(t, d.Error)
			require.NotNil(t, d.Cause)
		})
	}
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeQueryExecutionFailed))
	assert.True(t, IsRetryableErrorCode(ErrCodeCacheUnavailable))
	assert.False(t, IsRetryableErrorCode(ErrCodeInvestorNotFound))
	assert.False(t, IsRetryableErrorCode(ErrCodeInvalidInput))
}
