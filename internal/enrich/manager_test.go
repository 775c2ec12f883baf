package enrich

import (
	"errors"
	"testing"

	"github.com/agrahamlincoln/sentei/internal/github"
)

type fakeResolver struct {
	url string
	err error
}

func (f fakeResolver) RemoteURL(repoPath, remote string) (string, error) {
	return f.url, f.err
}

type fakeChecker struct {
	states    map[string]github.PRState
	protected map[string]bool
	failAll   bool
}

func (f fakeChecker) BranchPRState(owner, repo, branch string) (github.PRState, error) {
	if f.failAll {
		return github.PRStateNone, errors.New("api unavailable")
	}
	state, ok := f.states[branch]
	if !ok {
		return github.PRStateNone, nil
	}
	return state, nil
}

func (f fakeChecker) IsBranchProtected(owner, repo, branch string) (bool, error) {
	if f.failAll {
		return false, errors.New("api unavailable")
	}
	return f.protected[branch], nil
}

func TestEnrichBranches_PreservesOrder(t *testing.T) {
	m := NewManager(
		fakeResolver{url: "git@github.com:owner/repo.git"},
		fakeChecker{
			states:    map[string]github.PRState{"feature/b": github.PRStateOpen},
			protected: map[string]bool{"release/1.0": true},
		},
		2, 0,
	)

	branches := []string{"feature/a", "feature/b", "release/1.0", "feature/c"}
	infos := m.EnrichBranches("/repo", branches)

	if len(infos) != 4 {
		t.Fatalf("expected 4 infos, got %d", len(infos))
	}
	if infos[0].HasOpenPR || infos[0].Protected {
		t.Errorf("feature/a should be unenriched, got %+v", infos[0])
	}
	if !infos[1].HasOpenPR {
		t.Error("feature/b should have an open PR")
	}
	if !infos[2].Protected {
		t.Error("release/1.0 should be protected")
	}
}

func TestEnrichBranches_NonGitHubRemote(t *testing.T) {
	m := NewManager(
		fakeResolver{url: "git@gitlab.com:owner/repo.git"},
		fakeChecker{states: map[string]github.PRState{"x": github.PRStateOpen}},
		5, 0,
	)

	infos := m.EnrichBranches("/repo", []string{"x"})
	if infos[0].HasOpenPR {
		t.Error("non-GitHub remote should skip enrichment")
	}
}

func TestEnrichBranches_NoRemote(t *testing.T) {
	m := NewManager(
		fakeResolver{err: errors.New("no such remote")},
		fakeChecker{},
		5, 0,
	)

	infos := m.EnrichBranches("/repo", []string{"a", "b"})
	for i, info := range infos {
		if info.HasOpenPR || info.Protected {
			t.Errorf("info[%d]: expected zero value, got %+v", i, info)
		}
	}
}

func TestEnrichBranches_APIFailureDegrades(t *testing.T) {
	m := NewManager(
		fakeResolver{url: "https://github.com/owner/repo"},
		fakeChecker{failAll: true},
		5, 0,
	)

	infos := m.EnrichBranches("/repo", []string{"feature/x"})
	if infos[0].HasOpenPR || infos[0].Protected {
		t.Errorf("API failures must degrade to false, got %+v", infos[0])
	}
}

func TestEnrichBranches_Disabled(t *testing.T) {
	infos := Disabled().EnrichBranches("/repo", []string{"a"})
	if len(infos) != 1 {
		t.Fatalf("expected 1 info, got %d", len(infos))
	}
	if infos[0] != (Info{}) {
		t.Errorf("expected zero value, got %+v", infos[0])
	}
}
