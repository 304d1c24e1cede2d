// Package errors provides typed errors for autopr.
//
// This package defines the error taxonomy of the pull-request workflow
// (configuration, repository access, user aborts, description generation,
// publishing, workflow steps). All error types implement the standard error
// interface and support errors.Is() and errors.As() from the standard library
// and cockroachdb/errors.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Field   string // Which config field has the issue
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
	}
	return "config error: " + e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewConfigErrorWithCause creates a new ConfigError with an underlying cause.
func NewConfigErrorWithCause(field, message string, cause error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Cause: cause}
}

// RepositoryError represents a failed or unparseable git query.
type RepositoryError struct {
	Query    string // e.g., "status", "diff", "ls-remote"
	ExitCode int    // git exit status, 0 when the command never ran
	Stderr   string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *RepositoryError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("git %s failed (exit %d): %s", e.Query, e.ExitCode, e.Message)
	}
	return fmt.Sprintf("git %s failed: %s", e.Query, e.Message)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *RepositoryError) Unwrap() error {
	return e.Cause
}

// NewRepositoryError creates a new RepositoryError.
func NewRepositoryError(query, message string) *RepositoryError {
	return &RepositoryError{Query: query, Message: message}
}

// NewRepositoryErrorWithCause creates a new RepositoryError with an underlying cause.
func NewRepositoryErrorWithCause(query, message string, cause error) *RepositoryError {
	return &RepositoryError{Query: query, Message: message, Cause: cause}
}

// AbortError is an intentional hard stop with a message meant for the user.
// It is returned up the call chain and handled once by the command layer.
type AbortError struct {
	Message string
}

// Error implements the error interface.
func (e *AbortError) Error() string {
	return e.Message
}

// NewAbortError creates a new AbortError.
func NewAbortError(message string) *AbortError {
	return &AbortError{Message: message}
}

// PublishError represents a failed push or pull request creation.
type PublishError struct {
	Operation  string // e.g., "push", "CreatePR"
	StatusCode int    // HTTP status code if applicable
	ExitCode   int    // child process exit code if applicable
	Body       string // raw response body or child stderr
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *PublishError) Error() string {
	switch {
	case e.StatusCode > 0:
		return fmt.Sprintf("publish %s failed (HTTP %d): %s", e.Operation, e.StatusCode, e.Message)
	case e.ExitCode > 0:
		return fmt.Sprintf("publish %s failed (exit %d): %s", e.Operation, e.ExitCode, e.Message)
	default:
		return fmt.Sprintf("publish %s failed: %s", e.Operation, e.Message)
	}
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *PublishError) Unwrap() error {
	return e.Cause
}

// NewPublishError creates a new PublishError.
func NewPublishError(operation, message string) *PublishError {
	return &PublishError{Operation: operation, Message: message}
}

// NewPublishErrorWithStatus creates a new PublishError for a non-2xx HTTP response.
func NewPublishErrorWithStatus(operation string, statusCode int, message, body string) *PublishError {
	return &PublishError{
		Operation:  operation,
		StatusCode: statusCode,
		Message:    message,
		Body:       body,
	}
}

// NewPublishErrorWithExit creates a new PublishError for a child process that exited non-zero.
func NewPublishErrorWithExit(operation string, exitCode int, message, stderr string) *PublishError {
	return &PublishError{
		Operation: operation,
		ExitCode:  exitCode,
		Message:   message,
		Body:      stderr,
	}
}

// NewPublishErrorWithCause creates a new PublishError with an underlying cause.
func NewPublishErrorWithCause(operation, message string, cause error) *PublishError {
	return &PublishError{Operation: operation, Message: message, Cause: cause}
}

// GenerationError represents AI provider errors.
type GenerationError struct {
	Provider   string // e.g., "anthropic", "openai"
	Operation  string // e.g., "Complete"
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("ai %s %s failed (HTTP %d): %s", e.Provider, e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ai %s %s failed: %s", e.Provider, e.Operation, e.Message)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(provider, operation, message string) *GenerationError {
	return &GenerationError{Provider: provider, Operation: operation, Message: message}
}

// NewGenerationErrorWithStatus creates a new GenerationError with HTTP status code.
func NewGenerationErrorWithStatus(provider, operation string, statusCode int, message string) *GenerationError {
	return &GenerationError{
		Provider:   provider,
		Operation:  operation,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewGenerationErrorWithCause creates a new GenerationError with an underlying cause.
func NewGenerationErrorWithCause(provider, operation, message string, cause error) *GenerationError {
	return &GenerationError{
		Provider:  provider,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// WorkflowError represents a failed step of the pull request workflow.
type WorkflowError struct {
	Step    string // e.g., "verify_clean", "generate_description", "publish"
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *WorkflowError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("workflow step %s failed: %s", e.Step, e.Message)
	}
	return "workflow error: " + e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *WorkflowError) Unwrap() error {
	return e.Cause
}

// NewWorkflowError creates a new WorkflowError.
func NewWorkflowError(step, message string) *WorkflowError {
	return &WorkflowError{Step: step, Message: message}
}

// NewWorkflowErrorWithCause creates a new WorkflowError with an underlying cause.
func NewWorkflowErrorWithCause(step, message string, cause error) *WorkflowError {
	return &WorkflowError{Step: step, Message: message, Cause: cause}
}

// IsConfigError checks if an error or any error in its chain is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsRepositoryError checks if an error or any error in its chain is a RepositoryError.
func IsRepositoryError(err error) bool {
	var repoErr *RepositoryError
	return errors.As(err, &repoErr)
}

// IsAbortError checks if an error or any error in its chain is an AbortError.
func IsAbortError(err error) bool {
	var abortErr *AbortError
	return errors.As(err, &abortErr)
}

// IsPublishError checks if an error or any error in its chain is a PublishError.
func IsPublishError(err error) bool {
	var pubErr *PublishError
	return errors.As(err, &pubErr)
}

// IsGenerationError checks if an error or any error in its chain is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// IsWorkflowError checks if an error or any error in its chain is a WorkflowError.
func IsWorkflowError(err error) bool {
	var wfErr *WorkflowError
	return errors.As(err, &wfErr)
}

// ExitCode maps an error chain to a process exit status.
//
// A nil error is 0. A failed gh child keeps its own exit code so the caller
// sees what gh reported. Everything else, including a dirty working tree, is 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var pubErr *PublishError
	if errors.As(err, &pubErr) && pubErr.Operation == "CreatePR" && pubErr.ExitCode > 0 {
		return pubErr.ExitCode
	}

	return 1
}

// Re-export commonly used functions from cockroachdb/errors for convenience.
// This allows consumers to use prerrors.Wrap() instead of importing two packages.
var (
	// New creates a new error with the given message.
	New = errors.New

	// Newf creates a new error with formatted message.
	Newf = errors.Newf

	// Wrap wraps an error with additional context.
	Wrap = errors.Wrap

	// Wrapf wraps an error with formatted additional context.
	Wrapf = errors.Wrapf

	// Is reports whether any error in err's chain matches target.
	Is = errors.Is

	// As finds the first error in err's chain that matches target.
	As = errors.As

	// Cause returns the root cause of an error.
	Cause = errors.Cause
)
