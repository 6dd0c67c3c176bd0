// Package internal provides shared CLI plumbing for the agent0 binary:
// exit codes, error handling, and verbose-mode helpers.
package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-ing/Agent0/internal/types"
)

// Exit code constants for the CLI
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitError indicates a general error
	ExitError = 1
	// ExitTimeout indicates the operation timed out
	ExitTimeout = 3
	// ExitCancelled indicates the operation was cancelled
	ExitCancelled = 4
	// ExitStalled indicates the monitored run stopped making progress
	ExitStalled = 5
	// ExitConfigError indicates a configuration error
	ExitConfigError = 10
	// ExitEvalFailed indicates the evaluation subprocess failed
	ExitEvalFailed = 20
	// ExitPromotionFailed indicates result promotion failed
	ExitPromotionFailed = 21
)

// CLIError represents a CLI-specific error with an exit code
type CLIError struct {
	Code    int
	Message string
	Cause   error
}

// Error implements the error interface
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// WrapError creates a new CLIError wrapping an existing error
func WrapError(code int, message string, err error) *CLIError {
	return &CLIError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// NewCLIError creates a new CLIError with the given code and message
func NewCLIError(code int, message string) *CLIError {
	return &CLIError{
		Code:    code,
		Message: message,
	}
}

// HandleError handles an error and returns the appropriate exit code.
// It also prints the error message to the command's error output.
func HandleError(cmd *cobra.Command, err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, context.Canceled) {
		cmd.PrintErrln("Operation cancelled")
		return ExitCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		cmd.PrintErrln("Operation timed out")
		return ExitTimeout
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		cmd.PrintErrln("Error:", cliErr.Message)
		if cliErr.Cause != nil {
			verboseFlag := cmd.Flag("verbose")
			if verboseFlag != nil && verboseFlag.Changed {
				cmd.PrintErrln("Cause:", cliErr.Cause)
			}
		}
		return cliErr.Code
	}

	var harnessErr *types.HarnessError
	if errors.As(err, &harnessErr) {
		cmd.PrintErrln("Error:", harnessErr.Error())
		return mapHarnessErrorToExitCode(harnessErr)
	}

	// Evaluation subprocess failures surface as exec exit errors and
	// are reported with their original exit code preserved in the
	// message.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cmd.PrintErrf("Error: evaluation exited with code %d\n", exitErr.ExitCode())
		return ExitEvalFailed
	}

	cmd.PrintErrln("Error:", err)
	return ExitError
}

// mapHarnessErrorToExitCode maps harness error codes to CLI exit codes.
func mapHarnessErrorToExitCode(err *types.HarnessError) int {
	code := string(err.Code)
	switch {
	case strings.HasPrefix(code, "CONFIG_"):
		return ExitConfigError
	case strings.HasPrefix(code, "EVAL_"):
		return ExitEvalFailed
	case strings.HasPrefix(code, "PROMOTE_"):
		return ExitPromotionFailed
	case err.Code == types.RUN_STALLED:
		return ExitStalled
	default:
		return ExitError
	}
}

// IsVerbose checks if verbose mode is enabled via environment variable
// or flag. Used by panic recovery to decide whether to print stack
// traces.
func IsVerbose() bool {
	if os.Getenv("AGENT0_VERBOSE") != "" {
		return true
	}
	for _, arg := range os.Args {
		if arg == "-v" || arg == "--verbose" {
			return true
		}
	}
	return false
}
