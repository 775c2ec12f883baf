package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fatih/color"

	"github.com/agrahamlincoln/sentei/internal/compare"
	"github.com/agrahamlincoln/sentei/internal/gitio"
	"github.com/agrahamlincoln/sentei/internal/metrics"
)

// CompareCmd compares a source branch against a target branch.
type CompareCmd struct {
	Source   string `arg:"" help:"Branch to compare."`
	Target   string `arg:"" optional:"" help:"Branch to compare against. Defaults to the repository's default branch."`
	MaxFiles int    `name:"max-files" default:"20" help:"Maximum number of changed files to list individually."`
}

// Run executes the compare command.
func (c *CompareCmd) Run(globals *CLI) error {
	if globals.Verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Metrics are best-effort local telemetry for improving sentei.
	// Logging errors are intentionally discarded because metrics must never
	// interrupt the user's workflow or cause a command to fail.
	ml := metrics.NewOrNil()
	defer func() { _ = ml.Close() }()

	var flags []string
	if globals.Verbose {
		flags = append(flags, "--verbose")
	}
	_ = ml.LogCommand("compare", flags)

	repoPath, err := globals.repoPath()
	if err != nil {
		return err
	}

	gw := gitio.Gateway{}

	target := c.Target
	if target == "" {
		target, err = gw.DefaultBranch(repoPath)
		if err != nil {
			return fmt.Errorf("resolving default branch: %w", err)
		}
		slog.Debug("using default branch as target", "target", target)
	}

	start := time.Now()
	result := compare.NewEngine(gw).Compare(repoPath, c.Source, target)
	_ = ml.LogPerf(1, int(time.Since(start).Milliseconds()))

	printComparison(result, c.MaxFiles)
	return nil
}

func printComparison(r compare.Comparison, maxFiles int) {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)

	fmt.Printf("\n%s\n\n", bold.Sprintf("Comparing %s against %s", r.Source, r.Target))

	divergence := ""
	if r.Diverged {
		divergence = " (diverged)"
	}
	fmt.Printf("  ahead %d, behind %d%s\n", r.Ahead, r.Behind, divergence)

	if r.Source == r.Target {
		fmt.Println("  branches are identical")
		fmt.Println()
		return
	}
	if r.CommonAncestor != "" {
		fmt.Printf("  merge base: %s\n", dim.Sprint(truncate(r.CommonAncestor, 12)))
	} else {
		fmt.Println("  no common ancestor (unrelated histories)")
	}
	fmt.Println()

	if len(r.Files) > 0 {
		binary := ""
		if r.Summary.BinaryFiles > 0 {
			binary = fmt.Sprintf(", %d binary", r.Summary.BinaryFiles)
		}
		fmt.Printf("%s %s\n", bold.Sprintf("Files changed (%d):", r.Summary.TotalFiles),
			dim.Sprintf("+%d/-%d%s", r.Summary.TotalAdditions, r.Summary.TotalDeletions, binary))

		shown := r.Files
		if len(shown) > maxFiles {
			shown = shown[:maxFiles]
		}
		for _, f := range shown {
			printFileDiff(f, dim)
		}
		if hidden := len(r.Files) - len(shown); hidden > 0 {
			fmt.Printf("  %s\n", dim.Sprintf("... and %d more", hidden))
		}
		fmt.Println()
	}

	printComplexity(r.Complexity)
}

func printFileDiff(f compare.FileDiff, dim *color.Color) {
	counts := fmt.Sprintf("+%d/-%d", f.Additions, f.Deletions)
	if f.IsBinary {
		counts = "binary"
	}
	name := f.Path
	if f.Status == compare.StatusRenamed {
		name = fmt.Sprintf("%s -> %s (%d%%)", f.OldPath, f.Path, f.SimilarityIndex)
	}
	fmt.Printf("  %s %s  %s\n", statusGlyph(f.Status), name, dim.Sprint(counts))
}

func statusGlyph(s compare.FileStatus) string {
	switch s {
	case compare.StatusAdded:
		return "A"
	case compare.StatusModified:
		return "M"
	case compare.StatusDeleted:
		return "D"
	case compare.StatusRenamed:
		return "R"
	}
	return "?"
}

func printComplexity(a compare.Assessment) {
	bold := color.New(color.Bold)
	fmt.Printf("%s %s %s\n", bold.Sprint("Merge complexity:"),
		categoryColor(a.Category).Sprint(string(a.Category)),
		color.New(color.FgHiBlack).Sprintf("(score %.1f)", a.Score))
	for _, rec := range a.Recommendations {
		fmt.Printf("  - %s\n", rec)
	}
	fmt.Println()
}

func categoryColor(c compare.Category) *color.Color {
	switch c {
	case compare.CategoryTrivial:
		return color.New(color.FgGreen)
	case compare.CategoryModerate:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}
