package errors

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestRepositoryError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *RepositoryError
		expected string
	}{
		{
			name: "with exit code",
			err: &RepositoryError{
				Query:    "ls-remote",
				ExitCode: 128,
				Message:  "could not read from remote",
			},
			expected: "git ls-remote failed (exit 128): could not read from remote",
		},
		{
			name: "without exit code",
			err: &RepositoryError{
				Query:   "status",
				Message: "git executable not found",
			},
			expected: "git status failed: git executable not found",
		},
		{
			name: "empty message",
			err: &RepositoryError{
				Query: "diff",
			},
			expected: "git diff failed: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Error()
			if result != tt.expected {
				t.Errorf("Error() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestPublishError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *PublishError
		expected string
	}{
		{
			name:     "http status",
			err:      NewPublishErrorWithStatus("CreatePR", 422, "Validation Failed", `{"message":"Validation Failed"}`),
			expected: "publish CreatePR failed (HTTP 422): Validation Failed",
		},
		{
			name:     "child exit code",
			err:      NewPublishErrorWithExit("CreatePR", 4, "gh pr create failed", "not logged in"),
			expected: "publish CreatePR failed (exit 4): gh pr create failed",
		},
		{
			name:     "plain",
			err:      NewPublishError("push", "remote rejected"),
			expected: "publish push failed: remote rejected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Error()
			if result != tt.expected {
				t.Errorf("Error() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestGenerationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *GenerationError
		expected string
	}{
		{
			name:     "with status",
			err:      NewGenerationErrorWithStatus("anthropic", "Complete", 401, "invalid x-api-key"),
			expected: "ai anthropic Complete failed (HTTP 401): invalid x-api-key",
		},
		{
			name:     "without status",
			err:      NewGenerationError("openai", "Complete", "empty completion"),
			expected: "ai openai Complete failed: empty completion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Error()
			if result != tt.expected {
				t.Errorf("Error() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestWorkflowError_Unwrap(t *testing.T) {
	cause := NewGenerationError("anthropic", "Complete", "timeout")
	wfErr := NewWorkflowErrorWithCause("generate_description", cause.Error(), cause)

	if wfErr.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", wfErr.Unwrap(), cause)
	}

	if !IsGenerationError(wfErr) {
		t.Error("IsGenerationError() should see through WorkflowError")
	}

	if !IsWorkflowError(errors.Wrap(wfErr, "run failed")) {
		t.Error("IsWorkflowError() should find WorkflowError in wrapped error chain")
	}

	plain := NewWorkflowError("publish", "boom")
	if plain.Unwrap() != nil {
		t.Errorf("Unwrap() = %v, want nil", plain.Unwrap())
	}
}

func TestIsHelpers(t *testing.T) {
	plainErr := errors.New("plain")

	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"config", NewConfigError("ai.api_key", "missing"), IsConfigError, true},
		{"repository", NewRepositoryError("status", "failed"), IsRepositoryError, true},
		{"abort", NewAbortError("dirty"), IsAbortError, true},
		{"publish", NewPublishError("push", "rejected"), IsPublishError, true},
		{"generation", NewGenerationError("anthropic", "Complete", "x"), IsGenerationError, true},
		{"wrapped abort", errors.Wrap(NewAbortError("dirty"), "step"), IsAbortError, true},
		{"plain is not abort", plainErr, IsAbortError, false},
		{"plain is not publish", plainErr, IsPublishError, false},
		{"nil is not config", nil, IsConfigError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("check(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "nil",
			err:  nil,
			want: 0,
		},
		{
			name: "dirty tree",
			err:  NewWorkflowErrorWithCause("verify_clean", "dirty", NewAbortError("dirty")),
			want: 1,
		},
		{
			name: "gh exit code is passed through",
			err:  NewWorkflowErrorWithCause("publish", "gh failed", NewPublishErrorWithExit("CreatePR", 4, "gh failed", "")),
			want: 4,
		},
		{
			name: "push exit code is not passed through",
			err:  NewPublishErrorWithExit("push", 128, "push failed", ""),
			want: 1,
		},
		{
			name: "http failure",
			err:  NewPublishErrorWithStatus("CreatePR", 422, "Validation Failed", ""),
			want: 1,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "abort message verbatim",
			err:      NewWorkflowErrorWithCause("verify_clean", "dirty", NewAbortError("There are uncommitted changes.")),
			contains: []string{"There are uncommitted changes."},
		},
		{
			name:     "missing api key",
			err:      NewConfigError("ai.api_key", "no API key configured"),
			contains: []string{"ai.api_key", "ANTHROPIC_KEY"},
		},
		{
			name: "publish 422 names the step and body",
			err: NewWorkflowErrorWithCause("publish", "failed",
				NewPublishErrorWithStatus("CreatePR", 422, "Validation Failed", `{"message":"Validation Failed"}`)),
			contains: []string{"'publish'", "HTTP", "Validation Failed", "already exist"},
		},
		{
			name: "repository error shows stderr",
			err: &RepositoryError{
				Query:    "diff",
				ExitCode: 128,
				Stderr:   "fatal: bad revision 'origin/master'",
				Message:  "exit status 128",
			},
			contains: []string{"'diff'", "bad revision"},
		},
		{
			name:     "plain error",
			err:      errors.New("something odd"),
			contains: []string{"something odd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatUserError(tt.err)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("FormatUserError() = %q, want it to contain %q", got, want)
				}
			}
		})
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestFormatUserError_AbortIsExact(t *testing.T) {
	msg := "There are uncommitted changes. Please commit or stash them before proceeding."
	got := FormatUserError(errors.Wrap(NewAbortError(msg), "verify_clean"))
	if got != msg {
		t.Errorf("FormatUserError() = %q, want %q", got, msg)
	}
}
