// Package cleanup turns classified stale-branch candidates into a
// safety-checked plan and executes it under a gating discipline.
package cleanup

import (
	"fmt"
	"time"

	"github.com/agrahamlincoln/sentei/internal/stale"
)

// OpType identifies the kind of cleanup operation.
type OpType string

const (
	OpDeleteLocal  OpType = "delete-local"
	OpDeleteRemote OpType = "delete-remote"
	OpArchive      OpType = "archive"
)

// Operation is one planned branch cleanup action.
type Operation struct {
	Type      OpType
	Branch    string
	DryRun    bool
	Timestamp time.Time
}

// SafetyCheck is a precondition evaluated before destructive operations.
// Critical checks block execution unless explicitly overridden.
type SafetyCheck struct {
	Name        string
	Description string
	Passed      bool
	Critical    bool
}

// Plan is an ordered, safety-checked set of cleanup operations.
type Plan struct {
	Operations        []Operation
	TotalBranches     int
	OverallRisk       stale.Risk
	EstimatedDuration time.Duration
	SafetyChecks      []SafetyCheck
}

// Options controls planning and execution behavior.
type Options struct {
	DryRun        bool
	DeleteRemote  bool
	Archive       bool
	Force         bool
	CreateBackups bool
	Remote        string
}

// Each operation shells out to git once or twice; a couple of seconds is
// a generous per-operation estimate for progress display.
const perOperationCost = 2 * time.Second

// PlannerGateway defines the repository state reads planning needs.
type PlannerGateway interface {
	ChangedFiles(repoPath string) ([]string, error)
	CurrentBranch(repoPath string) (string, error)
	DefaultBranch(repoPath string) (string, error)
}

// Planner builds cleanup plans from analyzed candidates.
type Planner struct {
	git PlannerGateway
	now func() time.Time
}

// NewPlanner creates a Planner backed by the given gateway.
func NewPlanner(g PlannerGateway) *Planner {
	return &Planner{git: g, now: time.Now}
}

// CreatePlan retains candidates recommended for cleanup, picks an
// operation type per candidate, and evaluates the safety-check battery
// against the repository's current state.
func (p *Planner) CreatePlan(repoPath string, candidates []stale.Candidate, opts Options) Plan {
	var ops []Operation
	overall := stale.RiskLow
	for _, c := range candidates {
		if !c.Recommendation.ShouldCleanup || c.Risk == stale.RiskHigh {
			continue
		}
		ops = append(ops, Operation{
			Type:      operationType(c, opts),
			Branch:    c.Name,
			DryRun:    opts.DryRun,
			Timestamp: p.now(),
		})
		if riskRank(c.Risk) > riskRank(overall) {
			overall = c.Risk
		}
	}

	return Plan{
		Operations:        ops,
		TotalBranches:     len(ops),
		OverallRisk:       overall,
		EstimatedDuration: time.Duration(len(ops)) * perOperationCost,
		SafetyChecks:      p.safetyChecks(repoPath, ops, opts),
	}
}

// operationType picks the cleanup action for a candidate: remote deletion
// when requested and possible, archival when requested, local deletion
// otherwise.
func operationType(c stale.Candidate, opts Options) OpType {
	if opts.DeleteRemote && c.Tracking.HasRemote {
		return OpDeleteRemote
	}
	if opts.Archive {
		return OpArchive
	}
	return OpDeleteLocal
}

// safetyChecks evaluates the fixed battery against current repository
// state. Every check reports independently; gateway failures fail the
// check rather than the planner.
func (p *Planner) safetyChecks(repoPath string, ops []Operation, opts Options) []SafetyCheck {
	planned := make(map[string]bool, len(ops))
	for _, op := range ops {
		planned[op.Branch] = true
	}

	changed, err := p.git.ChangedFiles(repoPath)
	treeDesc := "the working tree has no uncommitted changes"
	if err == nil && len(changed) > 0 {
		treeDesc = fmt.Sprintf("the working tree has no uncommitted changes (%d file(s) dirty)",
			len(changed))
	}
	checks := []SafetyCheck{{
		Name:        "working-tree-clean",
		Description: treeDesc,
		Passed:      err == nil && len(changed) == 0,
		Critical:    true,
	}}

	current, err := p.git.CurrentBranch(repoPath)
	checks = append(checks, SafetyCheck{
		Name:        "current-branch-not-planned",
		Description: "no planned branch is currently checked out",
		Passed:      err == nil && !planned[current],
		Critical:    true,
	})

	def, err := p.git.DefaultBranch(repoPath)
	checks = append(checks, SafetyCheck{
		Name:        "default-branch-not-planned",
		Description: "the default branch is not scheduled for deletion",
		Passed:      err == nil && !planned[def],
		Critical:    true,
	})

	checks = append(checks, SafetyCheck{
		Name:        "backups-enabled",
		Description: "backup references will be created before deletion",
		Passed:      opts.CreateBackups,
		Critical:    false,
	})

	return checks
}

func riskRank(r stale.Risk) int {
	switch r {
	case stale.RiskHigh:
		return 2
	case stale.RiskMedium:
		return 1
	default:
		return 0
	}
}
