// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidJobPayload ErrorCode = "INVALID_JOB_PAYLOAD"

	ErrCodeIntentParsingFailed ErrorCode = "INTENT_PARSING_FAILED"
	ErrCodeCompletionTimeout   ErrorCode = "COMPLETION_TIMEOUT"

	ErrCodeTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeIndexNotFound     ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeResponseValidationFailed ErrorCode = "RESPONSE_VALIDATION_FAILED"

	ErrCodeBrokerUnavailable ErrorCode = "BROKER_UNAVAILABLE"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error. Retryable is
// informational: nothing in the pipeline retries on its own.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the receiver.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func NewInvalidJobPayloadError(err error) *StandardError {
	return newError(ErrCodeInvalidJobPayload, "Job variables could not be decoded", err, false)
}

func NewIntentParsingFailedError(err error) *StandardError {
	return newError(ErrCodeIntentParsingFailed, "Completion server did not produce a usable intent", err, true)
}

func NewCompletionTimeoutError(timeout time.Duration) *StandardError {
	e := newError(ErrCodeCompletionTimeout, "Completion request timed out", nil, true)
	e.Details = fmt.Sprintf("timeout: %s", timeout)
	return e
}

func NewTemplateNotFoundError(templateID string) *StandardError {
	e := newError(ErrCodeTemplateNotFound, "No query template for intent", nil, false)
	e.Details = fmt.Sprintf("templateId: %s", templateID)
	return e
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err, true)
}

func NewQueryExecutionFailedError(templateID string, err error) *StandardError {
	e := newError(ErrCodeQueryExecutionFailed, "Stats query execution error", err, true)
	return e.WithMetadata("template", templateID)
}

func NewQueryTimeoutError(templateID string) *StandardError {
	e := newError(ErrCodeQueryTimeout, "Stats query timeout", nil, true)
	e.Details = fmt.Sprintf("template: %s", templateID)
	return e
}

func NewSearchQueryFailedError(index string, err error) *StandardError {
	e := newError(ErrCodeSearchQueryFailed, "Entity search error", err, true)
	return e.WithMetadata("index", index)
}

func NewIndexNotFoundError(index string) *StandardError {
	e := newError(ErrCodeIndexNotFound, "Elasticsearch index not found", nil, false)
	e.Details = fmt.Sprintf("indexName: %s", index)
	return e
}

func NewResponseValidationFailedError(details string) *StandardError {
	e := newError(ErrCodeResponseValidationFailed, "Response failed schema validation", nil, false)
	e.Details = details
	return e
}

func NewBrokerUnavailableError(operation string, err error) *StandardError {
	e := newError(ErrCodeBrokerUnavailable, fmt.Sprintf("Zeebe operation '%s' failed", operation), err, true)
	return e
}

// QueryError classifies a database error, separating deadline expiry from
// other execution failures.
func QueryError(templateID string, err error) *StandardError {
	if stderrors.Is(err, context.DeadlineExceeded) {
		e := NewQueryTimeoutError(templateID)
		e.cause = err
		return e
	}
	return NewQueryExecutionFailedError(templateID, err)
}

// BPMNErrorMapping maps internal codes to the error codes modelled in the
// BPMN diagrams. They are identical today.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidJobPayload:        "INVALID_JOB_PAYLOAD",
	ErrCodeIntentParsingFailed:      "INTENT_PARSING_FAILED",
	ErrCodeCompletionTimeout:        "COMPLETION_TIMEOUT",
	ErrCodeTemplateNotFound:         "TEMPLATE_NOT_FOUND",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:     "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:             "QUERY_TIMEOUT",
	ErrCodeSearchQueryFailed:        "SEARCH_QUERY_FAILED",
	ErrCodeIndexNotFound:            "INDEX_NOT_FOUND",
	ErrCodeResponseValidationFailed: "RESPONSE_VALIDATION_FAILED",
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		ErrorVariables: vars,
	}
}

// AsStandardError unwraps err into a StandardError, wrapping unknown errors
// as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err, false)
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TEMPLATE"):
		return "TEMPLATE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY_"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "INTENT") || strings.Contains(codeStr, "COMPLETION"):
		return "AI"
	case strings.Contains(codeStr, "BROKER"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
