// Package main provides the sentei CLI tool for branch analysis and cleanup.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"

	"github.com/agrahamlincoln/sentei/internal/config"
	"github.com/agrahamlincoln/sentei/internal/metrics"
	"github.com/agrahamlincoln/sentei/pkg/git"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI defines the top-level command structure for sentei.
type CLI struct {
	DryRun  bool   `name:"dry-run" short:"n" help:"Show what would be done without making changes."`
	Verbose bool   `name:"verbose" short:"v" help:"Verbose output."`
	Repo    string `name:"repo" short:"r" help:"Path to the git repository." default:"." env:"SENTEI_REPO"`

	Compare CompareCmd `cmd:"" help:"Compare a branch against a target branch."`
	Stale   StaleCmd   `cmd:"" help:"Find stale branches and optionally clean them up."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// repoPath resolves the --repo flag to an absolute path and verifies it
// is a git repository.
func (c *CLI) repoPath() (string, error) {
	path := config.ExpandHome(c.Repo)
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving repository path: %w", err)
	}
	if !git.IsRepo(abs) {
		return "", fmt.Errorf("%s is not a git repository", abs)
	}
	return abs, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func formatAge(t time.Time) string {
	if t.IsZero() {
		return "unknown date"
	}
	days := int(time.Since(t).Hours() / 24)
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "1 day ago"
	case days < 30:
		return fmt.Sprintf("%d days ago", days)
	case days < 365:
		months := days / 30
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	default:
		years := days / 365
		if years == 1 {
			return "1 year ago"
		}
		return fmt.Sprintf("%d years ago", years)
	}
}

// branchFingerprint returns a stable fingerprint for a branch using the
// repo's remote URL when available, falling back to the repo path.
func branchFingerprint(repoPath, branch string) string {
	remote, err := git.RemoteURL(repoPath, "origin")
	if err != nil || remote == "" {
		remote = repoPath
	}
	return metrics.Fingerprint(remote, branch)
}

// VersionCmd shows version information.
type VersionCmd struct{}

// Run executes the version command.
func (c *VersionCmd) Run() error {
	fmt.Printf("sentei %s (commit: %s, built: %s)\n", version, commit, date)
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("sentei"),
		kong.Description(`sentei (剪定) - "pruning"

A branch analysis tool for git repositories. Compare branches to gauge
how hard a merge will be, find branches that have gone stale, and clean
them up behind a battery of safety checks.`),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)},
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
	// Explicitly exit with 0 on success so tests can verify exit behavior.
	os.Exit(0)
}
