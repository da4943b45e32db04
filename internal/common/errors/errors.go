package errors

import (
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeParseError                   ErrorCode = "PARSE_ERROR"
	ErrCodePrequalInputInvalid          ErrorCode = "PREQUAL_INPUT_INVALID"
	ErrCodeSubscriptionInvalid          ErrorCode = "SUBSCRIPTION_INVALID"
	ErrCodeSubscriptionExpired          ErrorCode = "SUBSCRIPTION_EXPIRED"
	ErrCodeSubscriptionCheckFailed      ErrorCode = "SUBSCRIPTION_CHECK_FAILED"
	ErrCodeDatabaseConnectionFailed     ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed         ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout                 ErrorCode = "QUERY_TIMEOUT"
	ErrCodeDatabaseInsertFailed         ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeDuplicatePrequalification    ErrorCode = "DUPLICATE_PREQUALIFICATION"
	ErrCodeIndexWriteFailed             ErrorCode = "INDEX_WRITE_FAILED"
	ErrCodeNotificationSendFailed       ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInternal                     ErrorCode = "INTERNAL_ERROR"
	ErrCodeElasticsearchConnectionFault ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is matches any *StandardError with the same code, so callers can compare
// against a freshly built error with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata attaches key to the error's metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func (e *StandardError) WithRetryable(retryable bool) *StandardError {
	e.Retryable = retryable
	return e
}

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

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

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Failed to parse job variables", err.Error(), false)
}

// NewPrequalInputInvalidError carries the individual field errors in the
// "fieldErrors" metadata entry.
func NewPrequalInputInvalidError(fieldErrors []string) *StandardError {
	return newError(ErrCodePrequalInputInvalid, "Pre-qualification input failed validation",
		strings.Join(fieldErrors, "; "), false).
		WithMetadata("fieldErrors", fieldErrors)
}

func NewSubscriptionInvalidError(details string) *StandardError {
	return newError(ErrCodeSubscriptionInvalid, "Invalid or not found subscription", details, false)
}

func NewSubscriptionExpiredError(details string) *StandardError {
	return newError(ErrCodeSubscriptionExpired, "Subscription has expired", details, false)
}

func NewSubscriptionCheckFailedError(err error) *StandardError {
	return newError(ErrCodeSubscriptionCheckFailed, "Database error during subscription check", err.Error(), true)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true)
}

func NewQueryTimeoutError(queryType string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout", fmt.Sprintf("queryType: %s", queryType), true)
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert operation failed", err.Error(), true)
}

func NewDuplicatePrequalificationError(applicationID string) *StandardError {
	return newError(ErrCodeDuplicatePrequalification, "Pre-qualification already recorded",
		fmt.Sprintf("applicationId: %s", applicationID), false)
}

func NewIndexWriteFailedError(index string, err error) *StandardError {
	return newError(ErrCodeIndexWriteFailed, "Search index write failed",
		fmt.Sprintf("index: %s, error: %s", index, err.Error()), true)
}

func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeElasticsearchConnectionFault, "Elasticsearch connection error", err.Error(), true)
}

func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()), true)
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeParseError:                   "PARSE_ERROR",
	ErrCodePrequalInputInvalid:          "PREQUAL_INPUT_INVALID",
	ErrCodeSubscriptionInvalid:          "SUBSCRIPTION_INVALID",
	ErrCodeSubscriptionExpired:          "SUBSCRIPTION_EXPIRED",
	ErrCodeSubscriptionCheckFailed:      "SUBSCRIPTION_CHECK_FAILED",
	ErrCodeDatabaseConnectionFailed:     "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:         "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:                 "QUERY_TIMEOUT",
	ErrCodeDatabaseInsertFailed:         "DATABASE_INSERT_FAILED",
	ErrCodeDuplicatePrequalification:    "DUPLICATE_PREQUALIFICATION",
	ErrCodeIndexWriteFailed:             "INDEX_WRITE_FAILED",
	ErrCodeElasticsearchConnectionFault: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeNotificationSendFailed:       "NOTIFICATION_SEND_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSubscriptionCheckFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeIndexWriteFailed,
		ErrCodeElasticsearchConnectionFault,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeQueryTimeout:
		return 2

	default:
		return 0 // business errors
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
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
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SUBSCRIPTION"):
		return "SUBSCRIPTION"
	case strings.Contains(codeStr, "PREQUAL"):
		return "PREQUALIFICATION"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "PARSE") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
