package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := New(ErrCodeRecordNotFound, "record not found")
	if err.Code != ErrCodeRecordNotFound {
		t.Fatalf("code = %s, want %s", err.Code, ErrCodeRecordNotFound)
	}
	if err.Message != "record not found" {
		t.Fatalf("message = %q", err.Message)
	}
	if err.Stack == "" {
		t.Fatal("expected a captured stack")
	}
}

func TestErrorFormat(t *testing.T) {
	err := New(CodeInvalidParam, "text must not be empty")
	want := "[COMMON_002] text must not be empty"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}

	withDetail := err.WithDetail("field=text")
	want = "[COMMON_002] text must not be empty: field=text"
	if withDetail.Error() != want {
		t.Fatalf("Error() = %q, want %q", withDetail.Error(), want)
	}
	if err.Detail != "" {
		t.Fatal("WithDetail must not mutate the receiver")
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if Wrap(nil, CodeInternal, "ignored") != nil {
		t.Fatal("Wrap(nil, ...) must return nil")
	}
}

func TestWrapPreservesCodeOnUnknown(t *testing.T) {
	inner := New(ErrCodeLabRetrievalFailed, "retrieval failed")
	outer := Wrap(inner, CodeUnknown, "extraction failed")
	if outer.Code != ErrCodeLabRetrievalFailed {
		t.Fatalf("code = %s, want %s", outer.Code, ErrCodeLabRetrievalFailed)
	}
}

func TestUnwrapChain(t *testing.T) {
	root := stderrors.New("connection refused")
	wrapped := Wrap(root, CodeDatabaseError, "query failed")
	doubly := Wrap(wrapped, ErrCodeRecordPersistError, "save failed")

	if !stderrors.Is(doubly, root) {
		t.Fatal("errors.Is must reach the root cause")
	}
	var ae *AppError
	if !stderrors.As(doubly, &ae) {
		t.Fatal("errors.As must find an AppError")
	}
}

func TestIsCodeWalksChain(t *testing.T) {
	root := New(ErrCodeModelInference, "inference failed")
	outer := fmt.Errorf("pipeline: %w", root)
	if !IsCode(outer, ErrCodeModelInference) {
		t.Fatal("IsCode must find the code through fmt.Errorf wrapping")
	}
	if IsCode(outer, ErrCodeRecordNotFound) {
		t.Fatal("IsCode must not match a different code")
	}
	if IsCode(nil, ErrCodeModelInference) {
		t.Fatal("IsCode(nil) must be false")
	}
}

func TestIsNotFoundVariants(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{NotFound("gone"), true},
		{New(ErrCodeRecordNotFound, "record gone"), true},
		{New(ErrCodeScreeningNotFound, "no screening"), true},
		{Internal("boom"), false},
		{stderrors.New("plain"), false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := IsNotFound(tc.err); got != tc.want {
			t.Errorf("IsNotFound(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestGetCode(t *testing.T) {
	if GetCode(nil) != CodeOK {
		t.Fatal("GetCode(nil) must be CodeOK")
	}
	if GetCode(stderrors.New("plain")) != CodeUnknown {
		t.Fatal("GetCode(plain) must be CodeUnknown")
	}
	err := fmt.Errorf("outer: %w", InvalidParam("bad"))
	if GetCode(err) != CodeInvalidParam {
		t.Fatalf("GetCode = %s, want %s", GetCode(err), CodeInvalidParam)
	}
}

func TestWithDetailNilSafe(t *testing.T) {
	var e *AppError
	if e.WithDetail("x") != nil {
		t.Fatal("nil receiver must stay nil")
	}
	if e.WithCause(stderrors.New("x")) != nil {
		t.Fatal("nil receiver must stay nil")
	}
}

func TestStackSkipsErrorsPackageNoise(t *testing.T) {
	err := Internal("boom")
	if !strings.Contains(err.Stack, "errors_test.go") {
		t.Fatalf("stack should contain the caller frame, got %q", err.Stack)
	}
}
