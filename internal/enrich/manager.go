// Package enrich augments stale-branch candidates with GitHub state:
// open pull requests and branch protection rules. Every lookup degrades
// gracefully -- enrichment failures never block analysis.
package enrich

import (
	"log/slog"
	"time"

	"github.com/agrahamlincoln/sentei/internal/github"
	"github.com/agrahamlincoln/sentei/internal/parallel"
)

// GitResolver defines the git operation needed to locate the GitHub
// repository behind a local checkout.
type GitResolver interface {
	RemoteURL(repoPath, remote string) (string, error)
}

// BranchChecker defines the GitHub API operations used for enrichment.
type BranchChecker interface {
	BranchPRState(owner, repo, branch string) (github.PRState, error)
	IsBranchProtected(owner, repo, branch string) (bool, error)
}

// Info is the enrichment result for a single branch. The zero value is
// the degraded "unknown" answer.
type Info struct {
	HasOpenPR bool
	Protected bool
}

// Manager enriches branches in bounded batches to limit API rate-limit
// exposure, pausing between batches as backpressure.
type Manager struct {
	git       GitResolver
	checker   BranchChecker
	batchSize int
	pause     time.Duration
}

// NewManager creates a Manager. If checker is nil, EnrichBranches returns
// zero-value Info for every branch.
func NewManager(git GitResolver, checker BranchChecker, batchSize int, pause time.Duration) *Manager {
	return &Manager{git: git, checker: checker, batchSize: batchSize, pause: pause}
}

// Disabled returns a Manager that performs no lookups. Intended for
// tests and for runs with enrichment switched off.
func Disabled() *Manager {
	return &Manager{}
}

// EnrichBranches returns one Info per branch, in branch order. When the
// repository has no resolvable GitHub remote, or no checker is configured,
// all results are zero-valued.
func (m *Manager) EnrichBranches(repoPath string, branches []string) []Info {
	infos := make([]Info, len(branches))
	if m.checker == nil || len(branches) == 0 {
		return infos
	}

	owner, repo, ok := m.resolveGitHubRepo(repoPath)
	if !ok {
		return infos
	}

	return parallel.RunBatched(branches, m.batchSize, m.pause, func(branch string) Info {
		return m.enrichBranch(owner, repo, branch)
	})
}

// enrichBranch performs the API lookups for one branch. Any error is
// logged and degrades that field to false.
func (m *Manager) enrichBranch(owner, repo, branch string) Info {
	var info Info

	state, err := m.checker.BranchPRState(owner, repo, branch)
	if err != nil {
		slog.Debug("PR state check failed, assuming no open PR",
			"repo", owner+"/"+repo, "branch", branch, "error", err)
	} else {
		info.HasOpenPR = state == github.PRStateOpen
	}

	protected, err := m.checker.IsBranchProtected(owner, repo, branch)
	if err != nil {
		slog.Debug("protection check failed, assuming unprotected",
			"repo", owner+"/"+repo, "branch", branch, "error", err)
	} else {
		info.Protected = protected
	}

	return info
}

// resolveGitHubRepo resolves the origin remote URL and parses the GitHub
// owner/repo. Returns ok=false for non-GitHub remotes or when the remote
// URL cannot be determined.
func (m *Manager) resolveGitHubRepo(repoPath string) (owner, repo string, ok bool) {
	remoteURL, err := m.git.RemoteURL(repoPath, "origin")
	if err != nil {
		slog.Debug("could not get remote URL, skipping enrichment",
			"repo", repoPath, "error", err)
		return "", "", false
	}
	owner, repo, ok = github.ParseGitHubRemote(remoteURL)
	if !ok {
		slog.Debug("non-GitHub remote, skipping enrichment",
			"repo", repoPath, "url", remoteURL)
	}
	return owner, repo, ok
}
