package cleanup

import (
	"strings"
	"testing"
	"time"

	"github.com/agrahamlincoln/sentei/internal/stale"
)

type fakePlannerGateway struct {
	changed []string
	current string
	def     string
}

func (f fakePlannerGateway) ChangedFiles(repoPath string) ([]string, error) {
	return f.changed, nil
}

func (f fakePlannerGateway) CurrentBranch(repoPath string) (string, error) {
	return f.current, nil
}

func (f fakePlannerGateway) DefaultBranch(repoPath string) (string, error) {
	return f.def, nil
}

func candidate(name string, risk stale.Risk, shouldCleanup, hasRemote bool) stale.Candidate {
	return stale.Candidate{
		Name:     name,
		Risk:     risk,
		Tracking: stale.Tracking{HasRemote: hasRemote, RemoteName: "origin"},
		Recommendation: stale.Recommendation{
			ShouldCleanup: shouldCleanup,
			Reason:        "test candidate",
		},
	}
}

func cleanGateway() fakePlannerGateway {
	return fakePlannerGateway{current: "main", def: "main"}
}

func TestCreatePlan_FiltersCandidates(t *testing.T) {
	planner := NewPlanner(cleanGateway())

	candidates := []stale.Candidate{
		candidate("feature/keep-me", stale.RiskLow, false, false),
		candidate("feature/go", stale.RiskLow, true, false),
		candidate("feature/risky", stale.RiskHigh, true, false),
	}

	plan := planner.CreatePlan("/repo", candidates, Options{})

	if len(plan.Operations) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(plan.Operations))
	}
	if plan.Operations[0].Branch != "feature/go" {
		t.Errorf("expected feature/go, got %q", plan.Operations[0].Branch)
	}
	if plan.TotalBranches != 1 {
		t.Errorf("expected totalBranches=1, got %d", plan.TotalBranches)
	}
}

func TestCreatePlan_EmptyPlanIsLowRisk(t *testing.T) {
	planner := NewPlanner(cleanGateway())

	plan := planner.CreatePlan("/repo", nil, Options{})

	if len(plan.Operations) != 0 {
		t.Fatalf("expected no operations, got %d", len(plan.Operations))
	}
	if plan.OverallRisk != stale.RiskLow {
		t.Errorf("expected low overall risk for empty plan, got %s", plan.OverallRisk)
	}
	if plan.EstimatedDuration != 0 {
		t.Errorf("expected zero duration, got %v", plan.EstimatedDuration)
	}
}

func TestCreatePlan_OverallRiskIsMax(t *testing.T) {
	planner := NewPlanner(cleanGateway())

	candidates := []stale.Candidate{
		candidate("a", stale.RiskLow, true, false),
		candidate("b", stale.RiskMedium, true, false),
		candidate("c", stale.RiskLow, true, false),
	}

	plan := planner.CreatePlan("/repo", candidates, Options{})
	if plan.OverallRisk != stale.RiskMedium {
		t.Errorf("expected medium overall risk, got %s", plan.OverallRisk)
	}
}

func TestCreatePlan_OperationTypeSelection(t *testing.T) {
	planner := NewPlanner(cleanGateway())

	tests := []struct {
		name      string
		opts      Options
		hasRemote bool
		want      OpType
	}{
		{"local by default", Options{}, false, OpDeleteLocal},
		{"remote wins when tracked", Options{DeleteRemote: true}, true, OpDeleteRemote},
		{"remote requested but untracked", Options{DeleteRemote: true}, false, OpDeleteLocal},
		{"archive", Options{Archive: true}, false, OpArchive},
		{"remote beats archive", Options{DeleteRemote: true, Archive: true}, true, OpDeleteRemote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cands := []stale.Candidate{candidate("x", stale.RiskLow, true, tt.hasRemote)}
			plan := planner.CreatePlan("/repo", cands, tt.opts)
			if len(plan.Operations) != 1 {
				t.Fatalf("expected 1 operation, got %d", len(plan.Operations))
			}
			if plan.Operations[0].Type != tt.want {
				t.Errorf("expected %s, got %s", tt.want, plan.Operations[0].Type)
			}
		})
	}
}

func TestCreatePlan_DryRunPropagates(t *testing.T) {
	planner := NewPlanner(cleanGateway())

	cands := []stale.Candidate{candidate("x", stale.RiskLow, true, false)}
	plan := planner.CreatePlan("/repo", cands, Options{DryRun: true})

	if !plan.Operations[0].DryRun {
		t.Error("expected dryRun to propagate to operations")
	}
	if plan.Operations[0].Timestamp.IsZero() {
		t.Error("expected operation timestamp to be set")
	}
}

func TestCreatePlan_SafetyChecks(t *testing.T) {
	cands := []stale.Candidate{candidate("feature/x", stale.RiskLow, true, false)}

	planner := NewPlanner(fakePlannerGateway{
		changed: []string{"wip.go", "notes.txt"},
		current: "feature/x",
		def:     "main",
	})
	plan := planner.CreatePlan("/repo", cands, Options{CreateBackups: true})

	byName := make(map[string]SafetyCheck)
	for _, c := range plan.SafetyChecks {
		byName[c.Name] = c
	}

	if c := byName["working-tree-clean"]; c.Passed || !c.Critical {
		t.Errorf("dirty tree: expected failed critical check, got %+v", c)
	}
	if c := byName["working-tree-clean"]; !strings.Contains(c.Description, "2 file(s) dirty") {
		t.Errorf("dirty tree: expected description to count dirty files, got %q", c.Description)
	}
	if c := byName["current-branch-not-planned"]; c.Passed || !c.Critical {
		t.Errorf("planned current branch: expected failed critical check, got %+v", c)
	}
	if c := byName["default-branch-not-planned"]; !c.Passed {
		t.Errorf("default branch unplanned: expected pass, got %+v", c)
	}
	if c := byName["backups-enabled"]; !c.Passed || c.Critical {
		t.Errorf("backups enabled: expected non-critical pass, got %+v", c)
	}
}

func TestCreatePlan_DurationScalesWithOperations(t *testing.T) {
	planner := NewPlanner(cleanGateway())

	cands := []stale.Candidate{
		candidate("a", stale.RiskLow, true, false),
		candidate("b", stale.RiskLow, true, false),
		candidate("c", stale.RiskLow, true, false),
	}
	plan := planner.CreatePlan("/repo", cands, Options{})

	if plan.EstimatedDuration != 3*perOperationCost {
		t.Errorf("expected %v, got %v", 3*perOperationCost, plan.EstimatedDuration)
	}
	if plan.EstimatedDuration <= time.Duration(0) {
		t.Error("expected positive duration")
	}
}
