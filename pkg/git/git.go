// Package git provides functions for interacting with a git repository
// by shelling out to the git CLI.
package git

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// run executes a git command in the given directory and returns its output.
func run(repoPath string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = repoPath
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out)), nil
}

// IsRepo returns true if the given path is inside a git repository.
func IsRepo(path string) bool {
	cmd := exec.Command("git", "-C", path, "rev-parse", "--git-dir")
	return cmd.Run() == nil
}

// CurrentBranch returns the name of the currently checked-out branch.
func CurrentBranch(repoPath string) (string, error) {
	return run(repoPath, "branch", "--show-current")
}

// DefaultBranch returns the default branch name (main or master) by checking
// what the origin HEAD points to, falling back to a local heuristic.
func DefaultBranch(repoPath string) (string, error) {
	// Try the remote HEAD symref first.
	out, err := run(repoPath, "symbolic-ref", "refs/remotes/origin/HEAD", "--short")
	if err == nil {
		// Output is like "origin/main" -- strip the remote prefix.
		parts := strings.SplitN(out, "/", 2)
		if len(parts) == 2 {
			return parts[1], nil
		}
		return out, nil
	}

	// Fallback: check if "main" or "master" exists locally.
	branches, err := ListBranches(repoPath)
	if err != nil {
		return "", err
	}
	for _, b := range branches {
		if b == "main" {
			return "main", nil
		}
	}
	for _, b := range branches {
		if b == "master" {
			return "master", nil
		}
	}
	return "", fmt.Errorf("could not determine default branch for %s", repoPath)
}

// ListBranches returns all local branch names.
func ListBranches(repoPath string) ([]string, error) {
	out, err := run(repoPath, "branch", "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}
	return splitNonEmpty(out), nil
}

// AheadBehind returns how many commits source has that target lacks (ahead)
// and how many commits target has that source lacks (behind).
func AheadBehind(repoPath, source, target string) (ahead, behind int, err error) {
	out, err := run(repoPath, "rev-list", "--left-right", "--count",
		source+"..."+target)
	if err != nil {
		return 0, 0, err
	}
	// Output is "ahead<TAB>behind": the left count is commits only in
	// source, the right count commits only in target.
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q", out)
	}
	ahead, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("parsing ahead count %q: %w", fields[0], err)
	}
	behind, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("parsing behind count %q: %w", fields[1], err)
	}
	return ahead, behind, nil
}

// MergeBase returns the most recent common ancestor of the two refs.
// Returns an empty string (and no error) for unrelated histories.
func MergeBase(repoPath, refA, refB string) (string, error) {
	cmd := exec.Command("git", "merge-base", refA, refB)
	cmd.Dir = repoPath
	out, err := cmd.Output()
	if err != nil {
		// Unrelated histories make merge-base exit 1 with no output.
		// Treat that as "no ancestor" rather than a failure.
		if ee, ok := err.(*exec.ExitError); ok && ee.ExitCode() == 1 {
			return "", nil
		}
		return "", fmt.Errorf("git merge-base %s %s: %w", refA, refB, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// FileChange describes one entry from a name-status diff.
type FileChange struct {
	StatusCode string // "A", "M", "D", or "R<similarity>"
	Path       string
	OldPath    string // set for renames
}

// NameStatusDiff returns the changed files between two refs with rename
// detection enabled. Rename entries carry both old and new paths.
func NameStatusDiff(repoPath, refA, refB string) ([]FileChange, error) {
	out, err := run(repoPath, "diff", "--name-status", "-M", refA, refB)
	if err != nil {
		return nil, err
	}

	var changes []FileChange
	for _, line := range splitNonEmpty(out) {
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		fc := FileChange{StatusCode: fields[0]}
		if strings.HasPrefix(fc.StatusCode, "R") && len(fields) >= 3 {
			fc.OldPath = fields[1]
			fc.Path = fields[2]
		} else {
			fc.Path = fields[1]
		}
		changes = append(changes, fc)
	}
	return changes, nil
}

// NumstatEntry holds per-file line counts from git diff --numstat.
// Binary files report Binary=true with zero counts, because git prints
// "-" in both numeric columns for them.
type NumstatEntry struct {
	Path      string
	Additions int
	Deletions int
	Binary    bool
}

// Numstat returns per-file addition/deletion counts between two refs.
// Each output line is "additions<TAB>deletions<TAB>path".
func Numstat(repoPath, refA, refB string) ([]NumstatEntry, error) {
	out, err := run(repoPath, "diff", "--numstat", "-M", refA, refB)
	if err != nil {
		return nil, err
	}

	var entries []NumstatEntry
	for _, line := range splitNonEmpty(out) {
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			continue
		}
		entry := NumstatEntry{Path: fields[len(fields)-1]}
		if fields[0] == "-" && fields[1] == "-" {
			entry.Binary = true
		} else {
			entry.Additions, _ = strconv.Atoi(fields[0])
			entry.Deletions, _ = strconv.Atoi(fields[1])
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// UnifiedDiff returns the unified diff text for a single path between two refs.
func UnifiedDiff(repoPath, refA, refB, path string) (string, error) {
	return run(repoPath, "diff", refA, refB, "--", path)
}

// Authors returns the distinct commit author emails in the range refA..refB,
// in first-seen order.
func Authors(repoPath, refA, refB string) ([]string, error) {
	out, err := run(repoPath, "log", "--format=%ae", refA+".."+refB)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var authors []string
	for _, a := range splitNonEmpty(out) {
		if !seen[a] {
			seen[a] = true
			authors = append(authors, a)
		}
	}
	return authors, nil
}

// CommitTime returns the committer timestamp of the tip commit of a ref.
func CommitTime(repoPath, ref string) (time.Time, error) {
	out, err := run(repoPath, "log", "-1", "--format=%cI", ref)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, out)
}

// CommitInfo holds metadata about a single commit.
type CommitInfo struct {
	Hash   string
	Date   time.Time
	Author string
}

// LastCommit returns metadata for the latest commit on the given ref.
func LastCommit(repoPath, ref string) (CommitInfo, error) {
	out, err := run(repoPath, "log", "-1", "--format=%H%x00%aI%x00%an", ref)
	if err != nil {
		return CommitInfo{}, err
	}
	fields := strings.Split(out, "\x00")
	if len(fields) != 3 {
		return CommitInfo{}, fmt.Errorf("unexpected log output %q", out)
	}
	date, err := time.Parse(time.RFC3339, fields[1])
	if err != nil {
		return CommitInfo{}, fmt.Errorf("parsing commit date %q: %w", fields[1], err)
	}
	return CommitInfo{Hash: fields[0], Date: date, Author: fields[2]}, nil
}

// CommitCount returns the total number of commits reachable from a ref.
func CommitCount(repoPath, ref string) (int, error) {
	out, err := run(repoPath, "rev-list", "--count", ref)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(out)
}

// HasRemote returns true if the given remote exists.
func HasRemote(repoPath, remote string) bool {
	_, err := run(repoPath, "remote", "get-url", remote)
	return err == nil
}

// HasRemoteBranch returns true if the branch exists on the given remote,
// checked against the local remote-tracking refs.
func HasRemoteBranch(repoPath, remote, branch string) (bool, error) {
	out, err := run(repoPath, "branch", "-r", "--format=%(refname:short)")
	if err != nil {
		return false, err
	}
	want := remote + "/" + branch
	for _, b := range splitNonEmpty(out) {
		if b == want {
			return true, nil
		}
	}
	return false, nil
}

// RemoteURL returns the fetch URL of the given remote (usually "origin").
func RemoteURL(repoPath, remote string) (string, error) {
	return run(repoPath, "remote", "get-url", remote)
}

// ChangedFiles returns the paths with uncommitted changes in the working tree.
func ChangedFiles(repoPath string) ([]string, error) {
	out, err := run(repoPath, "status", "--porcelain")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, line := range splitNonEmpty(out) {
		// Porcelain records are "XY path". splitNonEmpty already trimmed
		// the leading status columns' whitespace, so take the last field.
		if i := strings.IndexByte(line, ' '); i >= 0 {
			files = append(files, strings.TrimSpace(line[i+1:]))
		}
	}
	return files, nil
}

// DeleteLocalBranch deletes a local branch. If force is true, uses -D instead of -d.
func DeleteLocalBranch(repoPath, branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	_, err := run(repoPath, "branch", flag, branch)
	return err
}

// DeleteRemoteBranch deletes a branch on the given remote.
func DeleteRemoteBranch(repoPath, remote, branch string) error {
	_, err := run(repoPath, "push", remote, "--delete", branch)
	return err
}

// CreateTag creates a lightweight tag pointing at the given ref.
func CreateTag(repoPath, tag, ref string) error {
	_, err := run(repoPath, "tag", tag, ref)
	return err
}

// CreateBranchAt creates a branch pinned to the given ref without checking
// it out. Used for backup references before destructive operations.
func CreateBranchAt(repoPath, branch, ref string) error {
	_, err := run(repoPath, "branch", branch, ref)
	return err
}

// Checkout switches the working tree to the given ref.
func Checkout(repoPath, ref string) error {
	_, err := run(repoPath, "checkout", ref)
	return err
}

// splitNonEmpty splits a newline-separated string and returns non-empty lines.
func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var result []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}
	return result
}
