package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
// Codes are grouped per module with a short prefix and a running number,
// e.g. "COMMON_001" or "LAB_003".
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by all layers.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeNotImplemented     ErrorCode = "COMMON_015"
)

// Short aliases used at call sites throughout the codebase.
const (
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeUnauthorized   = ErrCodeUnauthorized
	CodeForbidden      = ErrCodeForbidden
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeRateLimit      = ErrCodeTooManyRequests
	CodeNotImplemented = ErrCodeNotImplemented
	CodeUnknown        = ErrorCode("UNKNOWN")
	CodeOK             = ErrorCode("OK")

	CodeDatabaseError     = ErrCodeDatabaseError
	CodeCacheError        = ErrCodeCacheError
	CodeSearchError       = ErrCodeRecordSearchFailed
	CodeMessageQueueError = ErrCodeExternalService
	CodeStorageError      = ErrCodeExternalService
)

// Record module error codes.
const (
	ErrCodeRecordNotFound     ErrorCode = "REC_001"
	ErrCodeRecordEmptyText    ErrorCode = "REC_002"
	ErrCodeRecordPersistError ErrorCode = "REC_003"
	ErrCodeRecordSearchFailed ErrorCode = "REC_004"
	ErrCodeRecordReprocess    ErrorCode = "REC_005"
)

// Disease NER module error codes.
const (
	ErrCodeNERInferenceFailed ErrorCode = "NER_001"
	ErrCodeNERInvalidWindow   ErrorCode = "NER_002"
	ErrCodeNERBadPrediction   ErrorCode = "NER_003"
)

// Lab extraction module error codes.
const (
	ErrCodeLabPatternInvalid   ErrorCode = "LAB_001"
	ErrCodeLabEmbeddingFailed  ErrorCode = "LAB_002"
	ErrCodeLabRetrievalFailed  ErrorCode = "LAB_003"
	ErrCodeLabGenerationFailed ErrorCode = "LAB_004"
	ErrCodeLabIndexEmpty       ErrorCode = "LAB_005"
	ErrCodeLabIndexDimMismatch ErrorCode = "LAB_006"
)

// Summarizer module error codes.
const (
	ErrCodeSummaryGenerationFailed ErrorCode = "SUM_001"
	ErrCodeSummaryParseFailed      ErrorCode = "SUM_002"
)

// Screening module error codes.
const (
	ErrCodeScreeningRuleInvalid ErrorCode = "SCR_001"
	ErrCodeScreeningRuleLoad    ErrorCode = "SCR_002"
	ErrCodeScreeningNotFound    ErrorCode = "SCR_003"
)

// Model serving / external AI collaborator error codes.
const (
	ErrCodeModelNotAvailable ErrorCode = "MDL_001"
	ErrCodeModelInference    ErrorCode = "MDL_002"
	ErrCodeModelBadResponse  ErrorCode = "MDL_003"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes. Codes missing
// from the map default to 500 via HTTPStatus.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeRecordNotFound:     http.StatusNotFound,
	ErrCodeRecordEmptyText:    http.StatusBadRequest,
	ErrCodeRecordPersistError: http.StatusInternalServerError,
	ErrCodeRecordSearchFailed: http.StatusInternalServerError,
	ErrCodeRecordReprocess:    http.StatusInternalServerError,

	ErrCodeNERInferenceFailed: http.StatusInternalServerError,
	ErrCodeNERInvalidWindow:   http.StatusBadRequest,
	ErrCodeNERBadPrediction:   http.StatusInternalServerError,

	ErrCodeLabPatternInvalid:   http.StatusInternalServerError,
	ErrCodeLabEmbeddingFailed:  http.StatusInternalServerError,
	ErrCodeLabRetrievalFailed:  http.StatusInternalServerError,
	ErrCodeLabGenerationFailed: http.StatusInternalServerError,
	ErrCodeLabIndexEmpty:       http.StatusInternalServerError,
	ErrCodeLabIndexDimMismatch: http.StatusBadRequest,

	ErrCodeSummaryGenerationFailed: http.StatusInternalServerError,
	ErrCodeSummaryParseFailed:      http.StatusInternalServerError,

	ErrCodeScreeningRuleInvalid: http.StatusBadRequest,
	ErrCodeScreeningRuleLoad:    http.StatusInternalServerError,
	ErrCodeScreeningNotFound:    http.StatusNotFound,

	ErrCodeModelNotAvailable: http.StatusServiceUnavailable,
	ErrCodeModelInference:    http.StatusBadGateway,
	ErrCodeModelBadResponse:  http.StatusBadGateway,
}

// HTTPStatus returns the HTTP status code for c, defaulting to 500 when the
// code has no explicit mapping.
func HTTPStatus(c ErrorCode) int {
	if s, ok := ErrorCodeHTTPStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}
