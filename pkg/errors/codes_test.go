package errors

import (
	"net/http"
	"strings"
	"testing"
)

func TestHTTPStatusKnownCodes(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrCodeBadRequest:        http.StatusBadRequest,
		ErrCodeRecordNotFound:    http.StatusNotFound,
		ErrCodeTooManyRequests:   http.StatusTooManyRequests,
		ErrCodeModelNotAvailable: http.StatusServiceUnavailable,
		ErrCodeModelInference:    http.StatusBadGateway,
	}
	for code, want := range cases {
		if got := HTTPStatus(code); got != want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", code, got, want)
		}
	}
}

func TestHTTPStatusUnknownDefaultsTo500(t *testing.T) {
	if got := HTTPStatus(ErrorCode("NOPE_999")); got != http.StatusInternalServerError {
		t.Fatalf("HTTPStatus(unknown) = %d, want 500", got)
	}
}

func TestCodePrefixesFollowModuleConvention(t *testing.T) {
	cases := map[ErrorCode]string{
		ErrCodeRecordNotFound:          "REC_",
		ErrCodeNERInferenceFailed:      "NER_",
		ErrCodeLabRetrievalFailed:      "LAB_",
		ErrCodeSummaryGenerationFailed: "SUM_",
		ErrCodeScreeningRuleInvalid:    "SCR_",
		ErrCodeModelInference:          "MDL_",
	}
	for code, prefix := range cases {
		if !strings.HasPrefix(code.String(), prefix) {
			t.Errorf("code %s should have prefix %s", code, prefix)
		}
	}
}
