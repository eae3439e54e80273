package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ksysoev/remindme-action/pkg/core"
	"github.com/ksysoev/remindme-action/pkg/github"
	"github.com/sethvargo/go-githubactions"
)

// ErrMissingPRNumber is returned when the event carries no pull request number.
var ErrMissingPRNumber = errors.New("could not determine pull request number")

func main() {
	action := githubactions.New()
	ctx := context.Background()

	action.Infof("RemindMe - Track TODOs as GitHub Issues")

	config, err := loadConfig(action)
	if err != nil {
		action.Fatalf("Invalid configuration: %v", err)
	}

	ghctx, err := action.Context()
	if err != nil {
		action.Fatalf("Failed to read GitHub context: %v", err)
	}

	if ghctx.Repository == "" {
		action.Fatalf("GITHUB_REPOSITORY environment variable is not set")
	}

	if ghctx.Workspace == "" {
		action.Fatalf("GITHUB_WORKSPACE environment variable is not set")
	}

	client, err := github.NewClient(config.GitHubToken, ghctx.Repository, config)
	if err != nil {
		action.Fatalf("Failed to initialize GitHub client: %v", err)
	}
	client.SetWarningf(action.Warningf)

	opts := core.ScanOptions{
		PayloadAnchor:  config.PayloadAnchor,
		MaxConcurrency: config.MaxConcurrency,
	}

	var drafts []core.IssueDraft

	switch ghctx.EventName {
	case "pull_request", "pull_request_target":
		prNumber, err := extractPRNumber(ghctx)
		if err != nil {
			action.Fatalf("Failed to extract PR number: %v", err)
		}

		if config.MergedOnly {
			isMerged, err := client.IsPRMergedToTargetBranch(ctx, prNumber)
			if err != nil {
				action.Fatalf("Failed to check if PR is merged: %v", err)
			}

			if !isMerged {
				action.Infof("PR #%d is not merged to %s branch yet. Skipping issue creation.", prNumber, config.BranchName)
				return
			}
		}

		files, err := client.ListChangedFiles(ctx, prNumber)
		if err != nil {
			action.Fatalf("Failed to list changed files: %v", err)
		}

		supported := supportedFiles(files)
		action.Infof("PR #%d changes %d files, %d supported", prNumber, len(files), len(supported))

		drafts, err = core.ScanFiles(ctx, ghctx.Workspace, supported, opts)
		if err != nil {
			action.Fatalf("Failed to scan changed files: %v", err)
		}
	case "workflow_dispatch", "push", "schedule":
		excludeDirs := []string{
			filepath.Join(ghctx.Workspace, ".git"),
			filepath.Join(ghctx.Workspace, "node_modules"),
			filepath.Join(ghctx.Workspace, "vendor"),
		}

		action.Infof("Scanning for TODO comments in workspace: %s", ghctx.Workspace)

		drafts, err = core.ScanDirectory(ctx, ghctx.Workspace, excludeDirs, opts)
		if err != nil {
			action.Fatalf("Failed to scan directory: %v", err)
		}
	default:
		action.Fatalf("This action only works on pull_request, push, schedule or workflow_dispatch events, got: %s", ghctx.EventName)
	}

	action.Infof("Found %d TODO comments", len(drafts))
	logDrafts(action, drafts)

	if config.DryRun {
		action.Infof("Dry run enabled. Skipping issue creation.")
		setIssueOutputs(action, nil)
		return
	}

	created, err := client.CreateIssues(ctx, drafts)
	for _, issue := range created {
		action.Infof("Created issue #%d for %s (line %d): %s", issue.Number, issue.Draft.FilePath, issue.Draft.LineNumber, issue.URL)
	}

	setIssueOutputs(action, created)

	if err != nil {
		action.Fatalf("Failed to create issues: %v", err)
	}

	action.Infof("Created %d issues from TODO comments", len(created))
}

func loadConfig(action *githubactions.Action) (core.Config, error) {
	// Action inputs win over environment variables
	input := func(name, env string) string {
		if v := action.GetInput(name); v != "" {
			return v
		}
		return action.Getenv(env)
	}

	config := core.Config{
		GitHubToken:      input("token", "REMINDME_GITHUB_TOKEN"),
		BranchName:       input("branch_name", "REMINDME_BRANCH_NAME"),
		IssueTitlePrefix: input("issue_title_prefix", "REMINDME_ISSUE_PREFIX"),
	}

	if config.GitHubToken == "" {
		config.GitHubToken = action.GetInput("github_token")
	}

	if config.GitHubToken == "" {
		return config, errors.New("token input is required")
	}

	if config.BranchName == "" {
		config.BranchName = "main"
	}

	anchor, err := core.ParsePayloadAnchor(input("payload_anchor", "REMINDME_PAYLOAD_ANCHOR"))
	if err != nil {
		return config, err
	}
	config.PayloadAnchor = anchor

	if config.DryRun, err = parseBool(input("dry_run", "REMINDME_DRY_RUN")); err != nil {
		return config, fmt.Errorf("invalid dry_run: %w", err)
	}

	if config.MergedOnly, err = parseBool(input("merged_only", "REMINDME_MERGED_ONLY")); err != nil {
		return config, fmt.Errorf("invalid merged_only: %w", err)
	}

	if v := input("max_concurrency", "REMINDME_MAX_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return config, fmt.Errorf("invalid max_concurrency %q", v)
		}
		config.MaxConcurrency = n
	}

	return config, nil
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}

	return strconv.ParseBool(s)
}

// extractPRNumber extracts the PR number from the event payload, falling
// back to GITHUB_REF (refs/pull/{number}/merge).
func extractPRNumber(ghctx *githubactions.GitHubContext) (int, error) {
	if n, ok := ghctx.Event["number"].(float64); ok {
		return int(n), nil
	}

	if pr, ok := ghctx.Event["pull_request"].(map[string]any); ok {
		if n, ok := pr["number"].(float64); ok {
			return int(n), nil
		}
	}

	pullPrefix := "refs/pull/"
	if strings.HasPrefix(ghctx.Ref, pullPrefix) {
		numStr, _, _ := strings.Cut(strings.TrimPrefix(ghctx.Ref, pullPrefix), "/")
		return strconv.Atoi(numStr)
	}

	return 0, fmt.Errorf("%w from ref %q", ErrMissingPRNumber, ghctx.Ref)
}

func supportedFiles(files []string) []string {
	var supported []string
	for _, f := range files {
		if core.IsSupported(f) {
			supported = append(supported, f)
		}
	}

	return supported
}

func logDrafts(action *githubactions.Action, drafts []core.IssueDraft) {
	if len(drafts) == 0 {
		return
	}

	action.Group("TODO comments")
	defer action.EndGroup()

	for _, d := range drafts {
		action.Infof("%s:%d %q labels=%v assignees=%v milestones=%v",
			d.FilePath, d.LineNumber, d.Title, d.Labels, d.Assignees, d.Milestones)
	}
}

// setIssueOutputs sets every output declared in action.yml.
func setIssueOutputs(action *githubactions.Action, created []github.CreatedIssue) {
	action.SetOutput("issues_created", strconv.Itoa(len(created)))
	action.SetOutput("issue_urls", issueURLs(created))
}

func issueURLs(created []github.CreatedIssue) string {
	urls := make([]string, 0, len(created))
	for _, issue := range created {
		urls = append(urls, issue.URL)
	}

	return strings.Join(urls, "\n")
}
