// Package gitio adapts the pkg/git shell-out functions to the narrow
// gateway interfaces the analysis and cleanup packages define.
package gitio

import (
	"time"

	"github.com/agrahamlincoln/sentei/pkg/git"
)

// Gateway implements every consumer-side git interface in this module:
// compare.Gateway, stale.Gateway, cleanup.PlannerGateway,
// cleanup.ExecutorGateway, and enrich.GitResolver.
type Gateway struct{}

// AheadBehind counts commits exclusive to each side of source...target.
func (Gateway) AheadBehind(repoPath, source, target string) (int, int, error) {
	return git.AheadBehind(repoPath, source, target)
}

// MergeBase returns the common ancestor of two refs, or "" for unrelated histories.
func (Gateway) MergeBase(repoPath, refA, refB string) (string, error) {
	return git.MergeBase(repoPath, refA, refB)
}

// NameStatusDiff returns the changed files between two refs.
func (Gateway) NameStatusDiff(repoPath, refA, refB string) ([]git.FileChange, error) {
	return git.NameStatusDiff(repoPath, refA, refB)
}

// Numstat returns per-file line counts between two refs.
func (Gateway) Numstat(repoPath, refA, refB string) ([]git.NumstatEntry, error) {
	return git.Numstat(repoPath, refA, refB)
}

// UnifiedDiff returns the unified diff text for a single path.
func (Gateway) UnifiedDiff(repoPath, refA, refB, path string) (string, error) {
	return git.UnifiedDiff(repoPath, refA, refB, path)
}

// Authors returns distinct commit author emails in refA..refB.
func (Gateway) Authors(repoPath, refA, refB string) ([]string, error) {
	return git.Authors(repoPath, refA, refB)
}

// CommitTime returns the tip commit timestamp of a ref.
func (Gateway) CommitTime(repoPath, ref string) (time.Time, error) {
	return git.CommitTime(repoPath, ref)
}

// CurrentBranch returns the checked-out branch name.
func (Gateway) CurrentBranch(repoPath string) (string, error) {
	return git.CurrentBranch(repoPath)
}

// DefaultBranch returns the repository's default branch name.
func (Gateway) DefaultBranch(repoPath string) (string, error) {
	return git.DefaultBranch(repoPath)
}

// ListBranches returns all local branch names.
func (Gateway) ListBranches(repoPath string) ([]string, error) {
	return git.ListBranches(repoPath)
}

// LastCommit returns metadata for the latest commit on a ref.
func (Gateway) LastCommit(repoPath, ref string) (git.CommitInfo, error) {
	return git.LastCommit(repoPath, ref)
}

// CommitCount returns the number of commits reachable from a ref.
func (Gateway) CommitCount(repoPath, ref string) (int, error) {
	return git.CommitCount(repoPath, ref)
}

// HasRemote reports whether the named remote exists.
func (Gateway) HasRemote(repoPath, remote string) bool {
	return git.HasRemote(repoPath, remote)
}

// HasRemoteBranch reports whether the branch exists on the remote.
func (Gateway) HasRemoteBranch(repoPath, remote, branch string) (bool, error) {
	return git.HasRemoteBranch(repoPath, remote, branch)
}

// RemoteURL returns the fetch URL of the named remote.
func (Gateway) RemoteURL(repoPath, remote string) (string, error) {
	return git.RemoteURL(repoPath, remote)
}

// ChangedFiles lists paths with uncommitted working-tree changes.
func (Gateway) ChangedFiles(repoPath string) ([]string, error) {
	return git.ChangedFiles(repoPath)
}

// DeleteLocalBranch removes a local branch.
func (Gateway) DeleteLocalBranch(repoPath, branch string, force bool) error {
	return git.DeleteLocalBranch(repoPath, branch, force)
}

// DeleteRemoteBranch removes a branch on the remote.
func (Gateway) DeleteRemoteBranch(repoPath, remote, branch string) error {
	return git.DeleteRemoteBranch(repoPath, remote, branch)
}

// CreateTag creates a lightweight tag at the given ref.
func (Gateway) CreateTag(repoPath, tag, ref string) error {
	return git.CreateTag(repoPath, tag, ref)
}

// CreateBranchAt creates a branch pinned to a ref without checkout.
func (Gateway) CreateBranchAt(repoPath, branch, ref string) error {
	return git.CreateBranchAt(repoPath, branch, ref)
}
