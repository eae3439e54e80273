package github

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/ksysoev/remindme-action/pkg/core"
	"golang.org/x/oauth2"
)

const perPage = 100

// ErrInvalidRepository is returned when a repository name is not owner/repo.
var ErrInvalidRepository = errors.New("repository must be in owner/repo form")

// IssuesService is the part of the GitHub issues API the client uses.
type IssuesService interface {
	Create(ctx context.Context, owner, repo string, issue *github.IssueRequest) (*github.Issue, *github.Response, error)
	ListByRepo(ctx context.Context, owner, repo string, opts *github.IssueListByRepoOptions) ([]*github.Issue, *github.Response, error)
	ListMilestones(ctx context.Context, owner, repo string, opts *github.MilestoneListOptions) ([]*github.Milestone, *github.Response, error)
}

// PullRequestsService is the part of the GitHub pull requests API the client uses.
type PullRequestsService interface {
	Get(ctx context.Context, owner, repo string, number int) (*github.PullRequest, *github.Response, error)
	ListFiles(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.CommitFile, *github.Response, error)
}

// CreatedIssue links a draft to the issue created from it.
type CreatedIssue struct {
	Draft  core.IssueDraft
	Number int
	URL    string
}

// Client handles interaction with the GitHub API
type Client struct {
	issues   IssuesService
	pulls    PullRequestsService
	owner    string
	repo     string
	config   core.Config
	warningf func(format string, args ...any)
}

// NewClient creates a new GitHub client
func NewClient(token, repoFullName string, config core.Config) (*Client, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	client := github.NewClient(tc)

	return NewClientWithServices(client.Issues, client.PullRequests, repoFullName, config)
}

// NewClientWithServices creates a client on top of the given API services.
func NewClientWithServices(issues IssuesService, pulls PullRequestsService, repoFullName string, config core.Config) (*Client, error) {
	owner, repo, ok := strings.Cut(repoFullName, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRepository, repoFullName)
	}

	return &Client{
		issues:   issues,
		pulls:    pulls,
		owner:    owner,
		repo:     repo,
		config:   config,
		warningf: func(string, ...any) {},
	}, nil
}

// SetWarningf sets the function used to report non-fatal problems.
func (c *Client) SetWarningf(fn func(format string, args ...any)) {
	if fn != nil {
		c.warningf = fn
	}
}

// ListChangedFiles returns the files a pull request adds or modifies.
// Removed files are skipped.
func (c *Client) ListChangedFiles(ctx context.Context, prNumber int) ([]string, error) {
	var files []string

	opts := &github.ListOptions{PerPage: perPage}
	for {
		page, resp, err := c.pulls.ListFiles(ctx, c.owner, c.repo, prNumber, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list files of PR #%d: %w", prNumber, err)
		}

		for _, f := range page {
			if f.GetStatus() == "removed" {
				continue
			}

			files = append(files, f.GetFilename())
		}

		if resp == nil || resp.NextPage == 0 {
			return files, nil
		}

		opts.Page = resp.NextPage
	}
}

// IsPRMergedToTargetBranch checks if a PR is merged to the target branch
func (c *Client) IsPRMergedToTargetBranch(ctx context.Context, prNumber int) (bool, error) {
	pr, _, err := c.pulls.Get(ctx, c.owner, c.repo, prNumber)
	if err != nil {
		return false, fmt.Errorf("failed to get PR #%d: %w", prNumber, err)
	}

	// Check if PR is merged and merges to the configured target branch
	return pr.GetMerged() && pr.GetBase().GetRef() == c.config.BranchName, nil
}

// CreateIssues creates GitHub issues from drafts. Drafts without a title and
// drafts whose title matches an open issue are skipped.
func (c *Client) CreateIssues(ctx context.Context, drafts []core.IssueDraft) ([]CreatedIssue, error) {
	var created []CreatedIssue

	existing, err := c.openIssueTitles(ctx)
	if err != nil {
		return nil, err
	}

	var milestones map[string]int

	for _, draft := range drafts {
		if !draft.Valid() {
			continue
		}

		title := c.issueTitle(draft)
		if existing[title] {
			continue
		}

		req := &github.IssueRequest{
			Title: &title,
			Body:  github.String(issueBody(draft)),
		}
		if len(draft.Labels) > 0 {
			req.Labels = &draft.Labels
		}
		if len(draft.Assignees) > 0 {
			req.Assignees = &draft.Assignees
		}

		if len(draft.Milestones) > 0 {
			if milestones == nil {
				if milestones, err = c.milestoneNumbers(ctx); err != nil {
					return created, err
				}
			}

			if number, ok := c.resolveMilestone(draft, milestones); ok {
				req.Milestone = &number
			}
		}

		issue, _, err := c.issues.Create(ctx, c.owner, c.repo, req)
		if err != nil {
			return created, fmt.Errorf("failed to create issue for comment in %s (line %d): %w",
				draft.FilePath, draft.LineNumber, err)
		}

		existing[title] = true
		created = append(created, CreatedIssue{
			Draft:  draft,
			Number: issue.GetNumber(),
			URL:    issue.GetHTMLURL(),
		})
	}

	return created, nil
}

func (c *Client) issueTitle(draft core.IssueDraft) string {
	if c.config.IssueTitlePrefix == "" {
		return draft.Title
	}

	return fmt.Sprintf("%s %s", c.config.IssueTitlePrefix, draft.Title)
}

func issueBody(draft core.IssueDraft) string {
	body := fmt.Sprintf("Created from TODO comment in `%s` (line %d)", draft.FilePath, draft.LineNumber)
	if draft.Body == "" {
		return body
	}

	return body + ":\n\n" + draft.Body
}

// resolveMilestone picks the first milestone of the draft that exists in the repository.
func (c *Client) resolveMilestone(draft core.IssueDraft, milestones map[string]int) (int, bool) {
	for i, title := range draft.Milestones {
		number, ok := milestones[strings.ToLower(title)]
		if !ok {
			c.warningf("milestone %q referenced in %s (line %d) does not exist", title, draft.FilePath, draft.LineNumber)
			continue
		}

		if rest := draft.Milestones[i+1:]; len(rest) > 0 {
			c.warningf("an issue takes one milestone, ignoring %s in %s (line %d)",
				strings.Join(rest, ", "), draft.FilePath, draft.LineNumber)
		}

		return number, true
	}

	return 0, false
}

func (c *Client) openIssueTitles(ctx context.Context) (map[string]bool, error) {
	titles := make(map[string]bool)

	opts := &github.IssueListByRepoOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	for {
		issues, resp, err := c.issues.ListByRepo(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list open issues: %w", err)
		}

		for _, issue := range issues {
			if issue.IsPullRequest() {
				continue
			}

			titles[issue.GetTitle()] = true
		}

		if resp == nil || resp.NextPage == 0 {
			return titles, nil
		}

		opts.Page = resp.NextPage
	}
}

func (c *Client) milestoneNumbers(ctx context.Context) (map[string]int, error) {
	numbers := make(map[string]int)

	opts := &github.MilestoneListOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	for {
		milestones, resp, err := c.issues.ListMilestones(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list milestones: %w", err)
		}

		for _, m := range milestones {
			key := strings.ToLower(m.GetTitle())
			if _, ok := numbers[key]; !ok {
				numbers[key] = m.GetNumber()
			}
		}

		if resp == nil || resp.NextPage == 0 {
			return numbers, nil
		}

		opts.Page = resp.NextPage
	}
}
