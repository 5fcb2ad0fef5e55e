package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeInvalidLocation, "location %q is empty after normalization", "!!!")
	want := `INVALID_LOCATION: location "!!!" is empty after normalization`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	cause := stderrors.New("dial tcp: timeout")
	wrapped := Wrap(ErrCodeConnection, cause, "fetching search page")
	if wrapped.Error() != "CONNECTION_ERROR: fetching search page: dial tcp: timeout" {
		t.Errorf("unexpected wrapped message: %q", wrapped.Error())
	}
	if !stderrors.Is(wrapped, cause) {
		t.Error("wrapped error should match its cause via errors.Is")
	}
}

func TestIsAndGetCode(t *testing.T) {
	err := New(ErrCodeHydrationFailed, "all detail lookups failed")

	if !Is(err, ErrCodeHydrationFailed) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeNotFound) {
		t.Error("Is should not match a different code")
	}
	if got := GetCode(err); got != ErrCodeHydrationFailed {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeHydrationFailed)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode on plain error = %q, want empty", got)
	}

	// Code survives wrapping with fmt.Errorf %w.
	outer := fmt.Errorf("search failed: %w", err)
	if !Is(outer, ErrCodeHydrationFailed) {
		t.Error("Is should unwrap through fmt.Errorf chains")
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeRateLimited, "API rate limit exceeded. Please add a GitHub API key.")
	if got := UserMessage(err); got != "API rate limit exceeded. Please add a GitHub API key." {
		t.Errorf("UserMessage = %q", got)
	}
	plain := stderrors.New("boom")
	if got := UserMessage(plain); got != "boom" {
		t.Errorf("UserMessage on plain error = %q", got)
	}
}

func TestRateLimitedError(t *testing.T) {
	reset := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var err error = &RateLimitedError{ResetAt: reset}

	if !IsRateLimited(err) {
		t.Error("IsRateLimited should detect *RateLimitedError")
	}
	if got := RateLimitReset(err); !got.Equal(reset) {
		t.Errorf("RateLimitReset = %v, want %v", got, reset)
	}
	if GetCode(err) != ErrCodeRateLimited {
		t.Errorf("GetCode = %q, want RATE_LIMITED", GetCode(err))
	}

	coded := New(ErrCodeRateLimited, "limiter denied")
	if !IsRateLimited(coded) {
		t.Error("IsRateLimited should detect coded errors too")
	}
	if !RateLimitReset(coded).IsZero() {
		t.Error("coded error carries no reset instant")
	}
}

func TestUpstreamError(t *testing.T) {
	err := &UpstreamError{Status: 502, Message: "Bad Gateway"}
	if err.Error() != "API Error (502): Bad Gateway" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if err.Code() != ErrCodeUpstream {
		t.Errorf("Code = %q", err.Code())
	}
}
