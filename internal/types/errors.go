package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for harness errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
	CONFIG_NOT_FOUND         ErrorCode = "CONFIG_NOT_FOUND"
)

// Run-state error codes
const (
	RUN_NOT_FOUND      ErrorCode = "RUN_NOT_FOUND"
	RUN_SCAN_FAILED    ErrorCode = "RUN_SCAN_FAILED"
	RUN_STALLED        ErrorCode = "RUN_STALLED"
	RUN_ALREADY_EXISTS ErrorCode = "RUN_ALREADY_EXISTS"
)

// Evaluation driver error codes
const (
	EVAL_LAUNCH_FAILED ErrorCode = "EVAL_LAUNCH_FAILED"
	EVAL_EXITED        ErrorCode = "EVAL_EXITED"
	EVAL_CANCELLED     ErrorCode = "EVAL_CANCELLED"
	EVAL_OUTPUT_FAILED ErrorCode = "EVAL_OUTPUT_FAILED"
)

// Promotion error codes
const (
	PROMOTE_SUMMARY_MISSING ErrorCode = "PROMOTE_SUMMARY_MISSING"
	PROMOTE_COPY_FAILED     ErrorCode = "PROMOTE_COPY_FAILED"
	PROMOTE_README_FAILED   ErrorCode = "PROMOTE_README_FAILED"
)

// Report error codes
const (
	REPORT_TEMPLATE_MISSING  ErrorCode = "REPORT_TEMPLATE_MISSING"
	REPORT_TOKENS_UNRESOLVED ErrorCode = "REPORT_TOKENS_UNRESOLVED"
	REPORT_TELEMETRY_EMPTY   ErrorCode = "REPORT_TELEMETRY_EMPTY"
)

// Credential check error codes
const (
	CREDS_VERIFIER_FAILED ErrorCode = "CREDS_VERIFIER_FAILED"
	CREDS_VLLM_FAILED     ErrorCode = "CREDS_VLLM_FAILED"
	CREDS_NONE_VALIDATED  ErrorCode = "CREDS_NONE_VALIDATED"
)

// HarnessError is a structured error carrying a namespaced code,
// a human-readable message, and an optional cause.
type HarnessError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *HarnessError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *HarnessError) Unwrap() error {
	return e.Cause
}

// NewError creates a HarnessError with the given code and message.
func NewError(code ErrorCode, message string) *HarnessError {
	return &HarnessError{Code: code, Message: message}
}

// NewErrorf creates a HarnessError with a formatted message.
func NewErrorf(code ErrorCode, format string, args ...any) *HarnessError {
	return &HarnessError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates a HarnessError wrapping an existing error.
func WrapError(code ErrorCode, message string, cause error) *HarnessError {
	return &HarnessError{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the ErrorCode from an error chain.
// Returns an empty code when no HarnessError is present.
func CodeOf(err error) ErrorCode {
	var he *HarnessError
	if errors.As(err, &he) {
		return he.Code
	}
	return ""
}

// IsCode reports whether the error chain contains a HarnessError
// with the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
