package github

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"thoreinstein.com/autopr/pkg/config"
	prerrors "thoreinstein.com/autopr/pkg/errors"
)

// APIClient implements Publisher using the GitHub REST API.
type APIClient struct {
	client *gh.Client
	owner  string
	repo   string
	logger *slog.Logger
}

// APIClientOption is a functional option for configuring APIClient.
type APIClientOption func(*APIClient) error

// WithAPILogger sets a custom logger for the API client.
func WithAPILogger(logger *slog.Logger) APIClientOption {
	return func(c *APIClient) error {
		c.logger = logger
		return nil
	}
}

// WithBaseURL points the client at a different REST root, such as a GitHub
// Enterprise "https://host/api/v3" URL. Empty keeps api.github.com.
func WithBaseURL(baseURL string) APIClientOption {
	return func(c *APIClient) error {
		if baseURL == "" {
			return nil
		}
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return prerrors.NewConfigErrorWithCause("github.api_url", "invalid URL", err)
		}
		c.client.BaseURL = u
		return nil
	}
}

// NewAPIClient creates a GitHub API publisher for owner/repo with the given token.
func NewAPIClient(token, owner, repo string, opts ...APIClientOption) (*APIClient, error) {
	if token == "" {
		return nil, prerrors.NewConfigError("github.token", "token is required for the api publisher")
	}
	if owner == "" || repo == "" {
		return nil, prerrors.NewConfigError("github.repo", "owner and repo are required for the api publisher")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)

	client := &APIClient{
		client: gh.NewClient(tc),
		owner:  owner,
		repo:   repo,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(client); err != nil {
			return nil, err
		}
	}

	return client, nil
}

// Name returns the publisher strategy name.
func (c *APIClient) Name() string {
	return config.PublisherAPI
}

// CreatePR creates a new pull request with POST /repos/{owner}/{repo}/pulls.
func (c *APIClient) CreatePR(ctx context.Context, opts CreatePROptions) (*PRInfo, error) {
	if opts.Title == "" {
		return nil, prerrors.NewPublishError("CreatePR", "title is required")
	}

	c.logger.Debug("creating PR", "owner", c.owner, "repo", c.repo, "head", opts.HeadBranch, "base", opts.BaseBranch)

	newPR := &gh.NewPullRequest{
		Title: gh.Ptr(opts.Title),
		Head:  gh.Ptr(opts.HeadBranch),
		Base:  gh.Ptr(opts.BaseBranch),
		Body:  gh.Ptr(opts.Body),
	}

	pr, resp, err := c.client.PullRequests.Create(ctx, c.owner, c.repo, newPR)
	if err != nil {
		return nil, toPublishError("CreatePR", resp, err)
	}

	c.logger.Debug("PR created", "number", pr.GetNumber(), "url", pr.GetHTMLURL())

	return &PRInfo{
		Number:     pr.GetNumber(),
		URL:        pr.GetHTMLURL(),
		Title:      pr.GetTitle(),
		HeadBranch: pr.GetHead().GetRef(),
		BaseBranch: pr.GetBase().GetRef(),
	}, nil
}

// toPublishError converts a go-github failure into a PublishError. For HTTP
// failures the raw response body is preserved.
func toPublishError(operation string, resp *gh.Response, err error) error {
	if resp == nil || resp.StatusCode == 0 {
		return prerrors.NewPublishErrorWithCause(operation, "API request failed", err)
	}

	message := err.Error()
	var body string

	var errResp *gh.ErrorResponse
	if prerrors.As(err, &errResp) {
		message = errorResponseMessage(errResp)
		if errResp.Response != nil && errResp.Response.Body != nil {
			if data, readErr := io.ReadAll(errResp.Response.Body); readErr == nil {
				body = string(data)
			}
		}
	}

	pubErr := prerrors.NewPublishErrorWithStatus(operation, resp.StatusCode, message, body)
	pubErr.Cause = err
	return pubErr
}

// errorResponseMessage joins the top-level message with any field errors.
func errorResponseMessage(errResp *gh.ErrorResponse) string {
	parts := []string{}
	if errResp.Message != "" {
		parts = append(parts, errResp.Message)
	}
	for _, e := range errResp.Errors {
		switch {
		case e.Message != "":
			parts = append(parts, e.Message)
		case e.Field != "":
			parts = append(parts, e.Field+" "+e.Code)
		}
	}
	if len(parts) == 0 {
		return "request failed"
	}
	return strings.Join(parts, ": ")
}
