// Package stale classifies branches by staleness and cleanup risk from
// commit history, tracking state, and optional GitHub enrichment.
package stale

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/agrahamlincoln/sentei/internal/enrich"
	"github.com/agrahamlincoln/sentei/internal/parallel"
	"github.com/agrahamlincoln/sentei/pkg/git"
)

// Risk buckets a candidate for cleanup decisions.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Tracking describes a branch's relationship to its remote counterpart.
type Tracking struct {
	HasRemote  bool
	RemoteName string
	Ahead      int // commits not pushed to the remote
	Behind     int
}

// Recommendation is the analyzer's cleanup advice for one candidate.
type Recommendation struct {
	ShouldCleanup bool
	Reason        string
	Precautions   []string
	Priority      int // 1 (low) to 10 (urgent)
}

// Candidate is a stale branch with its classification.
type Candidate struct {
	Name              string
	LastCommitDate    time.Time
	LastCommitHash    string
	LastCommitAuthor  string
	DaysSinceActivity int
	CommitCount       int
	HasOpenPR         bool
	Protected         bool
	Tracking          Tracking
	Risk              Risk
	Recommendation    Recommendation
}

// Config controls staleness detection.
type Config struct {
	StaleDays       int
	VeryStaleDays   int
	MinimumCommits  int
	ExcludePatterns []string
	Remote          string
	Workers         int
}

// Report is the full result of a stale-branch analysis.
type Report struct {
	Candidates  []Candidate
	RiskSummary map[Risk]int
	Config      Config
}

// Gateway defines the git read operations staleness analysis needs.
type Gateway interface {
	CurrentBranch(repoPath string) (string, error)
	ListBranches(repoPath string) ([]string, error)
	LastCommit(repoPath, ref string) (git.CommitInfo, error)
	CommitCount(repoPath, ref string) (int, error)
	HasRemote(repoPath, remote string) bool
	HasRemoteBranch(repoPath, remote, branch string) (bool, error)
	AheadBehind(repoPath, source, target string) (ahead, behind int, err error)
}

// Enricher supplies per-branch GitHub state. enrich.Disabled() satisfies
// it with zero values.
type Enricher interface {
	EnrichBranches(repoPath string, branches []string) []enrich.Info
}

// Analyzer classifies stale branches in a repository.
type Analyzer struct {
	git      Gateway
	enricher Enricher
	now      func() time.Time
}

// NewAnalyzer creates an Analyzer. A nil enricher disables enrichment.
func NewAnalyzer(g Gateway, enricher Enricher) *Analyzer {
	if enricher == nil {
		enricher = enrich.Disabled()
	}
	return &Analyzer{git: g, enricher: enricher, now: time.Now}
}

// Analyze scans local branches and returns classified stale candidates.
// It never fails outward: per-branch gateway errors skip that branch and
// a listing failure yields an empty report.
func (a *Analyzer) Analyze(repoPath string, cfg Config) Report {
	report := Report{
		RiskSummary: map[Risk]int{RiskLow: 0, RiskMedium: 0, RiskHigh: 0},
		Config:      cfg,
	}

	current, err := a.git.CurrentBranch(repoPath)
	if err != nil {
		slog.Warn("could not determine current branch", "repo", repoPath, "error", err)
		return report
	}
	branches, err := a.git.ListBranches(repoPath)
	if err != nil {
		slog.Warn("could not list branches", "repo", repoPath, "error", err)
		return report
	}

	var eligible []string
	for _, branch := range branches {
		if branch == current || isExcluded(branch, cfg.ExcludePatterns) {
			continue
		}
		eligible = append(eligible, branch)
	}

	// Per-branch history reads are independent, so fan out.
	collected := parallel.Run(eligible, cfg.Workers, func(branch string) *Candidate {
		return a.collect(repoPath, branch, cfg)
	}, nil)

	var stale []Candidate
	for _, c := range collected {
		if c != nil {
			stale = append(stale, *c)
		}
	}
	// Completion order is nondeterministic; settle on oldest-first.
	sort.Slice(stale, func(i, j int) bool {
		if stale[i].DaysSinceActivity != stale[j].DaysSinceActivity {
			return stale[i].DaysSinceActivity > stale[j].DaysSinceActivity
		}
		return stale[i].Name < stale[j].Name
	})

	names := make([]string, len(stale))
	for i, c := range stale {
		names[i] = c.Name
	}
	infos := a.enricher.EnrichBranches(repoPath, names)

	for i := range stale {
		stale[i].HasOpenPR = infos[i].HasOpenPR
		stale[i].Protected = infos[i].Protected
		classify(&stale[i], cfg)
		report.RiskSummary[stale[i].Risk]++
	}
	report.Candidates = stale
	return report
}

// collect gathers history and tracking data for one branch, returning nil
// when the branch is not stale or its history cannot be read.
func (a *Analyzer) collect(repoPath, branch string, cfg Config) *Candidate {
	last, err := a.git.LastCommit(repoPath, branch)
	if err != nil {
		// No commit history means nothing to judge staleness by.
		slog.Warn("could not read branch history, skipping",
			"branch", branch, "error", err)
		return nil
	}
	count, err := a.git.CommitCount(repoPath, branch)
	if err != nil {
		slog.Warn("could not count commits, skipping", "branch", branch, "error", err)
		return nil
	}
	if count == 0 {
		return nil
	}

	days := int(a.now().Sub(last.Date).Hours() / 24)
	if days <= cfg.StaleDays || count < cfg.MinimumCommits {
		return nil
	}

	c := &Candidate{
		Name:              branch,
		LastCommitDate:    last.Date,
		LastCommitHash:    last.Hash,
		LastCommitAuthor:  last.Author,
		DaysSinceActivity: days,
		CommitCount:       count,
	}

	remote := cfg.Remote
	if remote == "" {
		remote = "origin"
	}
	if a.git.HasRemote(repoPath, remote) {
		hasBranch, err := a.git.HasRemoteBranch(repoPath, remote, branch)
		if err != nil {
			slog.Debug("could not check remote branch", "branch", branch, "error", err)
		}
		if hasBranch {
			c.Tracking = Tracking{HasRemote: true, RemoteName: remote}
			ahead, behind, err := a.git.AheadBehind(repoPath, branch, remote+"/"+branch)
			if err != nil {
				slog.Debug("could not compare against remote branch",
					"branch", branch, "error", err)
			} else {
				c.Tracking.Ahead = ahead
				c.Tracking.Behind = behind
			}
		}
	}
	return c
}

// classify derives risk and recommendation for a collected candidate.
// Enrichment flags dominate, then unpushed work, then plain age.
func classify(c *Candidate, cfg Config) {
	switch {
	case c.HasOpenPR:
		c.Risk = RiskHigh
		c.Recommendation = Recommendation{
			Reason:      "branch has an open pull request",
			Precautions: []string{"close or merge the pull request first"},
			Priority:    1,
		}
	case c.Protected:
		c.Risk = RiskHigh
		c.Recommendation = Recommendation{
			Reason:      "branch is protected on the remote",
			Precautions: []string{"remove the protection rule before cleanup"},
			Priority:    1,
		}
	case c.Tracking.HasRemote && c.Tracking.Ahead > 0:
		c.Risk = RiskHigh
		c.Recommendation = Recommendation{
			Reason: fmt.Sprintf("%d commit(s) not pushed to %s",
				c.Tracking.Ahead, c.Tracking.RemoteName),
			Precautions: []string{"push or back up the unpushed commits first"},
			Priority:    1,
		}
	default:
		if c.DaysSinceActivity <= cfg.VeryStaleDays {
			c.Risk = RiskLow
		} else {
			c.Risk = RiskMedium
		}
		rec := Recommendation{
			ShouldCleanup: true,
			Reason:        fmt.Sprintf("no activity for %d days", c.DaysSinceActivity),
			Priority:      cleanupPriority(c.DaysSinceActivity, c.CommitCount),
		}
		if !c.Tracking.HasRemote {
			rec.Precautions = append(rec.Precautions,
				"no remote copy exists; consider archiving instead of deleting")
		}
		c.Recommendation = rec
	}
}

// cleanupPriority grows with age and shrinks with the amount of work on
// the branch, clamped to [1, 10].
func cleanupPriority(days, commits int) int {
	p := 1 + days/30 - commits/50
	if p < 1 {
		return 1
	}
	if p > 10 {
		return 10
	}
	return p
}

func isExcluded(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == name {
			return true
		}
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
