package stale

import (
	"errors"
	"testing"
	"time"

	"github.com/agrahamlincoln/sentei/internal/enrich"
	"github.com/agrahamlincoln/sentei/pkg/git"
)

type fakeBranch struct {
	last      git.CommitInfo
	count     int
	noHistory bool
	onRemote  bool
	ahead     int
	behind    int
}

type fakeGateway struct {
	current   string
	branches  []string
	data      map[string]fakeBranch
	hasRemote bool
}

func (f *fakeGateway) CurrentBranch(repoPath string) (string, error) {
	return f.current, nil
}

func (f *fakeGateway) ListBranches(repoPath string) ([]string, error) {
	return f.branches, nil
}

func (f *fakeGateway) LastCommit(repoPath, ref string) (git.CommitInfo, error) {
	b, ok := f.data[ref]
	if !ok || b.noHistory {
		return git.CommitInfo{}, errors.New("no commits")
	}
	return b.last, nil
}

func (f *fakeGateway) CommitCount(repoPath, ref string) (int, error) {
	return f.data[ref].count, nil
}

func (f *fakeGateway) HasRemote(repoPath, remote string) bool {
	return f.hasRemote
}

func (f *fakeGateway) HasRemoteBranch(repoPath, remote, branch string) (bool, error) {
	return f.data[branch].onRemote, nil
}

func (f *fakeGateway) AheadBehind(repoPath, source, target string) (int, int, error) {
	b := f.data[source]
	return b.ahead, b.behind, nil
}

// fixedEnricher marks specific branches with PR/protection state.
type fixedEnricher struct {
	openPR    map[string]bool
	protected map[string]bool
}

func (f fixedEnricher) EnrichBranches(repoPath string, branches []string) []enrich.Info {
	infos := make([]enrich.Info, len(branches))
	for i, b := range branches {
		infos[i] = enrich.Info{HasOpenPR: f.openPR[b], Protected: f.protected[b]}
	}
	return infos
}

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(d int) time.Time {
	return testNow.Add(-time.Duration(d) * 24 * time.Hour)
}

func testConfig() Config {
	return Config{
		StaleDays:       30,
		VeryStaleDays:   90,
		MinimumCommits:  1,
		ExcludePatterns: []string{"main", "release/*"},
		Remote:          "origin",
		Workers:         1,
	}
}

func newTestAnalyzer(g Gateway, e Enricher) *Analyzer {
	a := NewAnalyzer(g, e)
	a.now = func() time.Time { return testNow }
	return a
}

func TestAnalyze_FreshBranchesNotStale(t *testing.T) {
	gw := &fakeGateway{
		current:  "main",
		branches: []string{"main", "feature/fresh"},
		data: map[string]fakeBranch{
			"feature/fresh": {last: git.CommitInfo{Hash: "a1", Date: daysAgo(5)}, count: 3},
		},
	}

	report := newTestAnalyzer(gw, nil).Analyze("/repo", testConfig())
	if len(report.Candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(report.Candidates))
	}
}

func TestAnalyze_StaleBranchClassified(t *testing.T) {
	gw := &fakeGateway{
		current:  "main",
		branches: []string{"main", "feature/old"},
		data: map[string]fakeBranch{
			"feature/old": {
				last:  git.CommitInfo{Hash: "b2", Date: daysAgo(45), Author: "Ada"},
				count: 4,
			},
		},
	}

	report := newTestAnalyzer(gw, nil).Analyze("/repo", testConfig())
	if len(report.Candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(report.Candidates))
	}

	c := report.Candidates[0]
	if c.Name != "feature/old" {
		t.Errorf("expected feature/old, got %q", c.Name)
	}
	if c.DaysSinceActivity != 45 {
		t.Errorf("expected 45 days, got %d", c.DaysSinceActivity)
	}
	if c.LastCommitHash != "b2" || c.LastCommitAuthor != "Ada" {
		t.Errorf("commit metadata not carried: %+v", c)
	}
	if c.Risk != RiskLow {
		t.Errorf("expected low risk at 45 days, got %s", c.Risk)
	}
	if !c.Recommendation.ShouldCleanup {
		t.Error("expected shouldCleanup=true")
	}
	if report.RiskSummary[RiskLow] != 1 {
		t.Errorf("expected riskSummary[low]=1, got %d", report.RiskSummary[RiskLow])
	}
}

func TestAnalyze_ExcludedNamesNeverIncluded(t *testing.T) {
	gw := &fakeGateway{
		current:  "feature/wip",
		branches: []string{"main", "release/2.0", "feature/wip", "feature/ancient"},
		data: map[string]fakeBranch{
			"main":            {last: git.CommitInfo{Date: daysAgo(400)}, count: 100},
			"release/2.0":     {last: git.CommitInfo{Date: daysAgo(300)}, count: 50},
			"feature/wip":     {last: git.CommitInfo{Date: daysAgo(200)}, count: 5},
			"feature/ancient": {last: git.CommitInfo{Date: daysAgo(500)}, count: 2},
		},
	}

	report := newTestAnalyzer(gw, nil).Analyze("/repo", testConfig())
	if len(report.Candidates) != 1 {
		t.Fatalf("expected only feature/ancient, got %d candidates", len(report.Candidates))
	}
	if report.Candidates[0].Name != "feature/ancient" {
		t.Errorf("expected feature/ancient, got %q", report.Candidates[0].Name)
	}
}

func TestAnalyze_MinimumCommitsFloor(t *testing.T) {
	cfg := testConfig()
	cfg.MinimumCommits = 3

	gw := &fakeGateway{
		current:  "main",
		branches: []string{"feature/tiny", "feature/real"},
		data: map[string]fakeBranch{
			"feature/tiny": {last: git.CommitInfo{Date: daysAgo(100)}, count: 2},
			"feature/real": {last: git.CommitInfo{Date: daysAgo(100)}, count: 3},
		},
	}

	report := newTestAnalyzer(gw, nil).Analyze("/repo", cfg)
	if len(report.Candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(report.Candidates))
	}
	if report.Candidates[0].Name != "feature/real" {
		t.Errorf("expected feature/real, got %q", report.Candidates[0].Name)
	}
}

func TestAnalyze_NoHistorySkipped(t *testing.T) {
	gw := &fakeGateway{
		current:  "main",
		branches: []string{"feature/orphan"},
		data: map[string]fakeBranch{
			"feature/orphan": {noHistory: true},
		},
	}

	report := newTestAnalyzer(gw, nil).Analyze("/repo", testConfig())
	if len(report.Candidates) != 0 {
		t.Errorf("expected no candidates for history-less branch, got %d", len(report.Candidates))
	}
}

func TestAnalyze_UnpushedCommitsForceHighRisk(t *testing.T) {
	gw := &fakeGateway{
		current:   "main",
		branches:  []string{"feature/local-work"},
		hasRemote: true,
		data: map[string]fakeBranch{
			"feature/local-work": {
				last:     git.CommitInfo{Date: daysAgo(200)},
				count:    10,
				onRemote: true,
				ahead:    3,
			},
		},
	}

	report := newTestAnalyzer(gw, nil).Analyze("/repo", testConfig())
	if len(report.Candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(report.Candidates))
	}

	c := report.Candidates[0]
	if c.Risk != RiskHigh {
		t.Errorf("expected high risk for unpushed commits, got %s", c.Risk)
	}
	if c.Recommendation.ShouldCleanup {
		t.Error("unpushed commits must not be recommended for cleanup")
	}
	if c.Tracking.Ahead != 3 {
		t.Errorf("expected tracking.ahead=3, got %d", c.Tracking.Ahead)
	}
}

func TestAnalyze_OpenPRAndProtectionForceHighRisk(t *testing.T) {
	gw := &fakeGateway{
		current:  "main",
		branches: []string{"feature/pr", "feature/guarded"},
		data: map[string]fakeBranch{
			"feature/pr":      {last: git.CommitInfo{Date: daysAgo(500)}, count: 2},
			"feature/guarded": {last: git.CommitInfo{Date: daysAgo(500)}, count: 2},
		},
	}
	enricher := fixedEnricher{
		openPR:    map[string]bool{"feature/pr": true},
		protected: map[string]bool{"feature/guarded": true},
	}

	report := newTestAnalyzer(gw, enricher).Analyze("/repo", testConfig())
	if len(report.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(report.Candidates))
	}
	for _, c := range report.Candidates {
		if c.Risk != RiskHigh {
			t.Errorf("%s: expected high risk regardless of age, got %s", c.Name, c.Risk)
		}
		if c.Recommendation.ShouldCleanup {
			t.Errorf("%s: must not be recommended for cleanup", c.Name)
		}
	}
	if report.RiskSummary[RiskHigh] != 2 {
		t.Errorf("expected riskSummary[high]=2, got %d", report.RiskSummary[RiskHigh])
	}
}

func TestAnalyze_VeryStaleBecomesMediumRisk(t *testing.T) {
	gw := &fakeGateway{
		current:  "main",
		branches: []string{"feature/old", "feature/older"},
		data: map[string]fakeBranch{
			"feature/old":   {last: git.CommitInfo{Date: daysAgo(60)}, count: 3},
			"feature/older": {last: git.CommitInfo{Date: daysAgo(120)}, count: 3},
		},
	}

	report := newTestAnalyzer(gw, nil).Analyze("/repo", testConfig())
	if len(report.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(report.Candidates))
	}

	// Oldest first.
	if report.Candidates[0].Name != "feature/older" {
		t.Fatalf("expected oldest first, got %q", report.Candidates[0].Name)
	}
	if report.Candidates[0].Risk != RiskMedium {
		t.Errorf("expected medium at 120 days, got %s", report.Candidates[0].Risk)
	}
	if report.Candidates[1].Risk != RiskLow {
		t.Errorf("expected low at 60 days, got %s", report.Candidates[1].Risk)
	}
}

func TestCleanupPriority(t *testing.T) {
	tests := []struct {
		days, commits, want int
	}{
		{31, 1, 2},
		{400, 1, 10},
		{31, 500, 1},
		{200, 100, 5},
	}
	for _, tt := range tests {
		if got := cleanupPriority(tt.days, tt.commits); got != tt.want {
			t.Errorf("cleanupPriority(%d, %d) = %d, want %d", tt.days, tt.commits, got, tt.want)
		}
	}
}

func TestCleanupPriority_MoreAgeNeverLowersPriority(t *testing.T) {
	for days := 31; days < 400; days += 30 {
		if cleanupPriority(days+30, 10) < cleanupPriority(days, 10) {
			t.Fatalf("priority dropped between %d and %d days", days, days+30)
		}
	}
}
