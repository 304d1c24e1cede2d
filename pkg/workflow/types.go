// Package workflow provides the pull request creation engine.
//
// The workflow runs seven steps strictly in order:
// 1. Verify clean - refuse to continue with uncommitted changes
// 2. Ensure remote - push the current branch if the remote lacks it
// 3. Collect diff - diff against the base ref
// 4. Collect commits - commit subjects in base..HEAD
// 5. Resolve issue - look up the linked issue
// 6. Generate description - one AI completion
// 7. Publish - open exactly one pull request
//
// The first failing step stops the run. Nothing is retried or resumed.
package workflow

import (
	"context"

	"thoreinstein.com/autopr/pkg/git"
	"thoreinstein.com/autopr/pkg/github"
	"thoreinstein.com/autopr/pkg/issue"
)

// Step represents a workflow step.
type Step string

const (
	// StepVerifyClean aborts on a dirty working tree.
	StepVerifyClean Step = "verify_clean"
	// StepEnsureRemote makes sure the branch exists on the remote.
	StepEnsureRemote Step = "ensure_remote"
	// StepCollectDiff reads the diff against the base ref.
	StepCollectDiff Step = "collect_diff"
	// StepCollectCommits reads commit subjects since the base ref.
	StepCollectCommits Step = "collect_commits"
	// StepResolveIssue looks up the linked issue.
	StepResolveIssue Step = "resolve_issue"
	// StepGenerate drafts the description.
	StepGenerate Step = "generate_description"
	// StepPublish creates the pull request.
	StepPublish Step = "publish"
)

// AllSteps returns all workflow steps in execution order.
func AllSteps() []Step {
	return []Step{
		StepVerifyClean,
		StepEnsureRemote,
		StepCollectDiff,
		StepCollectCommits,
		StepResolveIssue,
		StepGenerate,
		StepPublish,
	}
}

// String returns the string representation of the step.
func (s Step) String() string {
	return string(s)
}

var stepLabels = map[Step]string{
	StepVerifyClean:    "Checking working tree",
	StepEnsureRemote:   "Checking remote",
	StepCollectDiff:    "Getting git diff",
	StepCollectCommits: "Getting commit messages",
	StepResolveIssue:   "Checking linked issue",
	StepGenerate:       "Generating PR description",
	StepPublish:        "Creating pull request",
}

// Label returns the progress text shown while the step runs.
func (s Step) Label() string {
	if l, ok := stepLabels[s]; ok {
		return l
	}
	return string(s)
}

// Observer is notified as steps start and finish. Observers only report
// progress; they cannot change the outcome of a run.
type Observer interface {
	StageStarted(step Step)
	StageSucceeded(step Step)
	StageFailed(step Step, err error)
}

// RepositoryProbe is the read-only git surface the engine needs.
type RepositoryProbe interface {
	CurrentBranch(ctx context.Context) (string, error)
	Diff(ctx context.Context, baseRef string) (string, error)
	CommitSubjects(ctx context.Context, baseRef string) ([]string, error)
}

// SyncGuard enforces the working tree and remote preconditions.
type SyncGuard interface {
	EnsureClean(ctx context.Context) error
	EnsureRemoteTracking(ctx context.Context, branch string) (bool, error)
}

// DescriptionGenerator drafts a pull request body.
type DescriptionGenerator interface {
	Generate(ctx context.Context, cs git.ChangeSet, linked *issue.Issue) (string, error)
}

// Options controls what the engine submits.
type Options struct {
	Title      string // Pull request title
	Remote     string // Remote name, e.g. "origin"
	BaseBranch string // Target branch, e.g. "master"
}

// BaseRef returns the remote-tracking ref the change set is computed against.
func (o Options) BaseRef() string {
	return o.Remote + "/" + o.BaseBranch
}

// Result describes a successful run.
type Result struct {
	RunID   string
	Branch  string
	Pushed  bool
	Request github.CreatePROptions
	PR      *github.PRInfo
}

// run carries data between steps.
type run struct {
	id          string
	branch      string
	pushed      bool
	changes     git.ChangeSet
	linked      *issue.Issue
	description string
	request     github.CreatePROptions
	pr          *github.PRInfo
}
