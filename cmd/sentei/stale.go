package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/fatih/color"

	"github.com/agrahamlincoln/sentei/internal/cleanup"
	"github.com/agrahamlincoln/sentei/internal/config"
	"github.com/agrahamlincoln/sentei/internal/enrich"
	"github.com/agrahamlincoln/sentei/internal/github"
	"github.com/agrahamlincoln/sentei/internal/gitio"
	"github.com/agrahamlincoln/sentei/internal/metrics"
	"github.com/agrahamlincoln/sentei/internal/stale"
)

// StaleCmd finds stale branches and optionally cleans them up.
type StaleCmd struct {
	Execute      bool `help:"Clean up selected branches after confirmation instead of only reporting."`
	Force        bool `help:"Proceed even when critical safety checks fail."`
	Archive      bool `help:"Archive branches (tag, then delete) instead of plain deletion."`
	DeleteRemote bool `name:"delete-remote" help:"Also delete the remote branch where one exists."`
	NoBackup     bool `name:"no-backup" help:"Skip creating backup refs before deletion."`
	StaleDays    int  `name:"stale-days" help:"Days of inactivity before a branch is considered stale (0 uses config)."`
}

// Run executes the stale command.
func (c *StaleCmd) Run(globals *CLI) error {
	if globals.Verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Metrics logging errors are discarded; see comment in CompareCmd.Run.
	ml := metrics.NewOrNil()
	defer func() { _ = ml.Close() }()
	_ = ml.LogCommand("stale", c.metricsFlags(globals))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	repoPath, err := globals.repoPath()
	if err != nil {
		return err
	}

	staleDays := c.StaleDays
	if staleDays <= 0 {
		staleDays = cfg.StaleDays
	}
	staleCfg := stale.Config{
		StaleDays:       staleDays,
		VeryStaleDays:   max(cfg.VeryStaleDays, staleDays),
		MinimumCommits:  cfg.MinimumCommits,
		ExcludePatterns: cfg.ExcludePatterns,
		Remote:          cfg.Remote,
		Workers:         cfg.Workers,
	}

	gw := gitio.Gateway{}
	analyzer := stale.NewAnalyzer(gw, buildEnricher(cfg, gw))

	slog.Debug("analyzing branches", "repo", repoPath, "staleDays", staleDays)
	start := time.Now()
	report := analyzer.Analyze(repoPath, staleCfg)
	_ = ml.LogPerf(len(report.Candidates), int(time.Since(start).Milliseconds()))

	if len(report.Candidates) == 0 {
		fmt.Println("No stale branches found.")
		return nil
	}

	printStaleReport(report)

	planner := cleanup.NewPlanner(gw)
	opts := cleanup.Options{
		DryRun:        globals.DryRun || !c.Execute,
		DeleteRemote:  c.DeleteRemote,
		Archive:       c.Archive,
		Force:         c.Force,
		CreateBackups: cfg.Backups && !c.NoBackup,
		Remote:        cfg.Remote,
	}

	if opts.DryRun {
		plan := planner.CreatePlan(repoPath, report.Candidates, opts)
		printPlan(plan, opts)
		return nil
	}

	selected, err := promptForCleanup(report.Candidates)
	if err != nil {
		return err
	}
	logSuggestions(ml, repoPath, report.Candidates, selected)
	if len(selected) == 0 {
		fmt.Println("No branches selected for cleanup.")
		return nil
	}

	plan := planner.CreatePlan(repoPath, selected, opts)
	printPlan(plan, opts)

	if failed := failedCriticalChecks(plan); len(failed) > 0 && !c.Force {
		return fmt.Errorf("critical safety checks failed (%s); rerun with --force to override",
			strings.Join(failed, ", "))
	}

	confirmed, err := confirmExecution(plan)
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	results, err := cleanup.NewExecutor(gw).Execute(repoPath, plan, opts)
	if err != nil {
		return err
	}
	return printResults(results)
}

func (c *StaleCmd) metricsFlags(globals *CLI) []string {
	var flags []string
	if globals.DryRun {
		flags = append(flags, "--dry-run")
	}
	if globals.Verbose {
		flags = append(flags, "--verbose")
	}
	if c.Execute {
		flags = append(flags, "--execute")
	}
	if c.Force {
		flags = append(flags, "--force")
	}
	if c.Archive {
		flags = append(flags, "--archive")
	}
	if c.DeleteRemote {
		flags = append(flags, "--delete-remote")
	}
	if c.StaleDays > 0 {
		flags = append(flags, fmt.Sprintf("--stale-days=%d", c.StaleDays))
	}
	return flags
}

// buildEnricher wires GitHub enrichment when it is enabled in config.
func buildEnricher(cfg config.Config, gw gitio.Gateway) *enrich.Manager {
	if !cfg.Enrich.Enabled {
		return enrich.Disabled()
	}
	return enrich.NewManager(gw, github.NewClient(cfg.GithubToken),
		cfg.Enrich.BatchSize, time.Duration(cfg.Enrich.PauseMs)*time.Millisecond)
}

// groupByRisk splits candidates into high, medium, and low risk tiers,
// preserving the analyzer's ordering within each tier.
func groupByRisk(candidates []stale.Candidate) (high, medium, low []stale.Candidate) {
	for _, c := range candidates {
		switch c.Risk {
		case stale.RiskHigh:
			high = append(high, c)
		case stale.RiskMedium:
			medium = append(medium, c)
		default:
			low = append(low, c)
		}
	}
	return high, medium, low
}

func printStaleReport(report stale.Report) {
	bold := color.New(color.Bold)

	fmt.Printf("\n%s\n", bold.Sprintf("Found %d stale branch(es):", len(report.Candidates)))

	high, medium, low := groupByRisk(report.Candidates)
	printRiskTier("High risk", color.New(color.FgRed), high)
	printRiskTier("Medium risk", color.New(color.FgYellow), medium)
	printRiskTier("Low risk", color.New(color.FgGreen), low)
	fmt.Println()
}

func printRiskTier(title string, tint *color.Color, candidates []stale.Candidate) {
	if len(candidates) == 0 {
		return
	}
	dim := color.New(color.FgHiBlack)
	fmt.Printf("\n  %s\n", tint.Sprintf("%s (%d):", title, len(candidates)))
	for _, c := range candidates {
		fmt.Printf("    %s  %s  %s\n",
			c.Name,
			dim.Sprintf("(%s, %d commit(s))", formatAge(c.LastCommitDate), c.CommitCount),
			dim.Sprint(candidateNotes(c)))
		fmt.Printf("      %s\n", dim.Sprint(c.Recommendation.Reason))
		for _, p := range c.Recommendation.Precautions {
			fmt.Printf("      %s\n", dim.Sprintf("! %s", p))
		}
	}
}

// candidateNotes summarizes the state flags that drove classification.
func candidateNotes(c stale.Candidate) string {
	var notes []string
	if c.HasOpenPR {
		notes = append(notes, "open PR")
	}
	if c.Protected {
		notes = append(notes, "protected")
	}
	if c.Tracking.HasRemote {
		if c.Tracking.Ahead > 0 {
			notes = append(notes, fmt.Sprintf("%d unpushed", c.Tracking.Ahead))
		} else {
			notes = append(notes, "remote")
		}
	} else {
		notes = append(notes, "local only")
	}
	if len(notes) == 0 {
		return ""
	}
	return "[" + strings.Join(notes, ", ") + "]"
}

func promptForCleanup(candidates []stale.Candidate) ([]stale.Candidate, error) {
	var cleanable []stale.Candidate
	for _, c := range candidates {
		if c.Recommendation.ShouldCleanup && c.Risk != stale.RiskHigh {
			cleanable = append(cleanable, c)
		}
	}
	if len(cleanable) == 0 {
		return nil, nil
	}

	options := make([]huh.Option[int], len(cleanable))
	for i, c := range cleanable {
		label := fmt.Sprintf("%s (%s, priority %d)",
			c.Name, formatAge(c.LastCommitDate), c.Recommendation.Priority)
		options[i] = huh.NewOption(label, i)
	}

	var selectedIndices []int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title("Select branches to clean up").
				Options(options...).
				Value(&selectedIndices),
		),
	)
	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("prompt failed: %w", err)
	}

	selected := make([]stale.Candidate, len(selectedIndices))
	for i, idx := range selectedIndices {
		selected[i] = cleanable[idx]
	}
	return selected, nil
}

// logSuggestions records one suggestion event per cleanable candidate,
// marking whether the user accepted it.
func logSuggestions(ml *metrics.Logger, repoPath string, candidates, selected []stale.Candidate) {
	selectedSet := make(map[string]bool, len(selected))
	for _, s := range selected {
		selectedSet[s.Name] = true
	}
	for _, c := range candidates {
		if !c.Recommendation.ShouldCleanup || c.Risk == stale.RiskHigh {
			continue
		}
		fp := branchFingerprint(repoPath, c.Name)
		_ = ml.LogSuggestion("cleanup_stale_branch", fp, selectedSet[c.Name], c.DaysSinceActivity)
	}
}

func printPlan(plan cleanup.Plan, opts cleanup.Options) {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)

	title := "Cleanup plan"
	if opts.DryRun {
		title = "Cleanup plan (dry-run)"
	}
	fmt.Printf("%s\n", bold.Sprintf("%s: %d branch(es), overall risk %s, ~%s",
		title, plan.TotalBranches, plan.OverallRisk, plan.EstimatedDuration))

	for _, op := range plan.Operations {
		fmt.Printf("  %s %s\n", opLabel(op.Type), op.Branch)
	}
	if plan.TotalBranches == 0 {
		fmt.Printf("  %s\n", dim.Sprint("nothing to do (no low/medium-risk cleanup candidates)"))
	}

	fmt.Printf("\n%s\n", bold.Sprint("Safety checks:"))
	for _, check := range plan.SafetyChecks {
		printSafetyCheck(check)
	}
	fmt.Println()
}

func printSafetyCheck(check cleanup.SafetyCheck) {
	status := color.New(color.FgGreen).Sprint("pass")
	if !check.Passed {
		if check.Critical {
			status = color.New(color.FgRed).Sprint("FAIL")
		} else {
			status = color.New(color.FgYellow).Sprint("warn")
		}
	}
	fmt.Printf("  [%s] %s: %s\n", status, check.Name, check.Description)
}

func opLabel(t cleanup.OpType) string {
	switch t {
	case cleanup.OpDeleteRemote:
		return "delete remote"
	case cleanup.OpArchive:
		return "archive"
	default:
		return "delete local"
	}
}

func failedCriticalChecks(plan cleanup.Plan) []string {
	var failed []string
	for _, check := range plan.SafetyChecks {
		if check.Critical && !check.Passed {
			failed = append(failed, check.Name)
		}
	}
	return failed
}

func confirmExecution(plan cleanup.Plan) (bool, error) {
	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Proceed with cleanup of %d branch(es)?", plan.TotalBranches)).
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return confirmed, nil
}

func printResults(results []cleanup.Result) error {
	bold := color.New(color.Bold)

	succeeded := 0
	var failures []string
	for _, res := range results {
		for _, action := range res.ActionsTaken {
			fmt.Printf("  %s\n", action)
		}
		if res.Success {
			succeeded++
			continue
		}
		fmt.Printf("  failed to clean up %s: %v\n", res.Operation.Branch, res.Err)
		failures = append(failures, res.Operation.Branch)
	}

	fmt.Println()
	if succeeded > 0 {
		fmt.Println(bold.Sprintf("Cleaned up %d branch(es).", succeeded))
	}
	if len(failures) > 0 {
		return fmt.Errorf("failed to clean up %d branch(es): %s",
			len(failures), strings.Join(failures, ", "))
	}
	return nil
}
