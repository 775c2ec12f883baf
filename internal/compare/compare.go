// Package compare implements branch-to-branch comparison: ahead/behind
// counts, structured per-file diffs, and merge-complexity scoring.
package compare

import (
	"log/slog"
	"time"

	"github.com/agrahamlincoln/sentei/pkg/git"
)

// Gateway defines the git read operations the comparison engine needs.
type Gateway interface {
	AheadBehind(repoPath, source, target string) (ahead, behind int, err error)
	MergeBase(repoPath, refA, refB string) (string, error)
	NameStatusDiff(repoPath, refA, refB string) ([]git.FileChange, error)
	Numstat(repoPath, refA, refB string) ([]git.NumstatEntry, error)
	UnifiedDiff(repoPath, refA, refB, path string) (string, error)
	Authors(repoPath, refA, refB string) ([]string, error)
	CommitTime(repoPath, ref string) (time.Time, error)
}

// Summary aggregates per-file counts for a comparison.
type Summary struct {
	TotalFiles     int
	TotalAdditions int
	TotalDeletions int
	BinaryFiles    int
}

// Comparison is the full result of comparing a source branch against a target.
type Comparison struct {
	Source         string
	Target         string
	CommonAncestor string // empty for unrelated histories
	Ahead          int
	Behind         int
	Diverged       bool
	Files          []FileDiff
	Summary        Summary
	Complexity     Assessment
}

// Engine orchestrates branch comparison through a git gateway.
type Engine struct {
	git Gateway
}

// NewEngine creates a comparison engine backed by the given gateway.
func NewEngine(g Gateway) *Engine {
	return &Engine{git: g}
}

// Compare analyzes source against target and never fails outward: any
// gateway error degrades to a well-formed result that preserves the
// branch names and whatever counts were already computed.
func (e *Engine) Compare(repoPath, source, target string) Comparison {
	c := Comparison{
		Source:     source,
		Target:     target,
		Complexity: Assess(Factors{}),
	}

	if source == target {
		return c
	}

	ahead, behind, err := e.git.AheadBehind(repoPath, source, target)
	if err != nil {
		slog.Warn("could not count ahead/behind commits",
			"source", source, "target", target, "error", err)
		return c
	}
	c.Ahead = ahead
	c.Behind = behind
	c.Diverged = ahead > 0 && behind > 0

	// A missing ancestor means unrelated histories; diff against the
	// target directly and keep the full counts.
	ancestor, err := e.git.MergeBase(repoPath, source, target)
	if err != nil {
		slog.Debug("merge-base lookup failed, treating histories as unrelated",
			"source", source, "target", target, "error", err)
		ancestor = ""
	}
	c.CommonAncestor = ancestor

	base := ancestor
	if base == "" {
		base = target
	}

	files, summary, ok := e.collectFiles(repoPath, base, source)
	if !ok {
		return c
	}
	c.Files = files
	c.Summary = summary

	// A failure past this point still degrades to the empty-files,
	// zeroed-summary shape so the result never pairs populated file
	// data with an unscored complexity.
	authors, err := e.git.Authors(repoPath, target, source)
	if err != nil {
		slog.Warn("could not list authors in range",
			"source", source, "target", target, "error", err)
		c.Files = nil
		c.Summary = Summary{}
		return c
	}

	spanDays, err := e.tipGapDays(repoPath, source, target)
	if err != nil {
		slog.Warn("could not compute branch tip time span",
			"source", source, "target", target, "error", err)
		c.Files = nil
		c.Summary = Summary{}
		return c
	}

	c.Complexity = Assess(Factors{
		FilesChanged:    summary.TotalFiles,
		TotalChurn:      summary.TotalAdditions + summary.TotalDeletions,
		AuthorDiversity: len(authors),
		BinaryFiles:     summary.BinaryFiles,
		TimeSpanDays:    spanDays,
		CommitDistance:  ahead + behind,
	})
	return c
}

// collectFiles builds the per-file diffs between base and source. Returns
// ok=false when a gateway call fails, leaving the caller's result degraded
// but well-formed.
func (e *Engine) collectFiles(repoPath, base, source string) ([]FileDiff, Summary, bool) {
	changes, err := e.git.NameStatusDiff(repoPath, base, source)
	if err != nil {
		slog.Warn("could not diff branches", "base", base, "source", source, "error", err)
		return nil, Summary{}, false
	}

	numstat, err := e.git.Numstat(repoPath, base, source)
	if err != nil {
		slog.Warn("could not collect diff stats", "base", base, "source", source, "error", err)
		return nil, Summary{}, false
	}
	binary := make(map[string]bool, len(numstat))
	for _, n := range numstat {
		binary[n.Path] = n.Binary
	}

	var files []FileDiff
	var summary Summary
	for _, change := range changes {
		status, similarity := ParseStatusCode(change.StatusCode)
		fd := FileDiff{
			Path:            change.Path,
			OldPath:         change.OldPath,
			Status:          status,
			SimilarityIndex: similarity,
			IsBinary:        binary[change.Path],
		}

		if !fd.IsBinary {
			text, err := e.git.UnifiedDiff(repoPath, base, source, change.Path)
			if err != nil {
				slog.Warn("could not fetch unified diff",
					"path", change.Path, "error", err)
				return nil, Summary{}, false
			}
			fd.Hunks = ParseHunks(text)
			fd.Additions, fd.Deletions = CountChanges(fd.Hunks)
		}

		files = append(files, fd)
		summary.TotalFiles++
		summary.TotalAdditions += fd.Additions
		summary.TotalDeletions += fd.Deletions
		if fd.IsBinary {
			summary.BinaryFiles++
		}
	}
	return files, summary, true
}

// tipGapDays returns the absolute difference between the two branch tips'
// commit timestamps, in whole days.
func (e *Engine) tipGapDays(repoPath, source, target string) (int, error) {
	sourceTip, err := e.git.CommitTime(repoPath, source)
	if err != nil {
		return 0, err
	}
	targetTip, err := e.git.CommitTime(repoPath, target)
	if err != nil {
		return 0, err
	}
	gap := sourceTip.Sub(targetTip)
	if gap < 0 {
		gap = -gap
	}
	return int(gap.Hours() / 24), nil
}
