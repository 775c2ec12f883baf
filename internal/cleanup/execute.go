package cleanup

import (
	"fmt"
	"log/slog"
	"strings"
)

// BackupRefPrefix is where backup branches are created before deletion.
const BackupRefPrefix = "sentei/backup/"

// ExecutorGateway defines the git write operations plan execution needs.
type ExecutorGateway interface {
	DeleteLocalBranch(repoPath, branch string, force bool) error
	DeleteRemoteBranch(repoPath, remote, branch string) error
	CreateTag(repoPath, tag, ref string) error
	CreateBranchAt(repoPath, branch, ref string) error
}

// Result records the outcome of one executed operation.
type Result struct {
	Operation    Operation
	Success      bool
	ActionsTaken []string
	Err          error
}

// Executor runs cleanup plans. Operations execute strictly in plan order
// because branch deletion mutates shared repository state.
type Executor struct {
	git ExecutorGateway
}

// NewExecutor creates an Executor backed by the given gateway.
func NewExecutor(g ExecutorGateway) *Executor {
	return &Executor{git: g}
}

// Execute runs every operation in the plan, in order. The only fatal
// condition is a failed critical safety check without the force override,
// which aborts before any mutation. Individual operation failures are
// recorded and do not halt the remaining operations.
func (e *Executor) Execute(repoPath string, plan Plan, opts Options) ([]Result, error) {
	if failed := failedCritical(plan.SafetyChecks); len(failed) > 0 && !opts.Force {
		return nil, fmt.Errorf("critical safety checks failed: %s", strings.Join(failed, ", "))
	}

	remote := opts.Remote
	if remote == "" {
		remote = "origin"
	}

	results := make([]Result, 0, len(plan.Operations))
	for _, op := range plan.Operations {
		results = append(results, e.execute(repoPath, op, opts, remote))
	}
	return results, nil
}

func (e *Executor) execute(repoPath string, op Operation, opts Options, remote string) Result {
	r := Result{Operation: op}

	if op.DryRun {
		r.Success = true
		r.ActionsTaken = append(r.ActionsTaken,
			fmt.Sprintf("[dry-run] would %s branch %s", describeOp(op.Type), op.Branch))
		return r
	}

	if opts.CreateBackups {
		backup := BackupRefPrefix + op.Branch
		if err := e.git.CreateBranchAt(repoPath, backup, op.Branch); err != nil {
			r.Err = fmt.Errorf("creating backup for %s: %w", op.Branch, err)
			return r
		}
		r.ActionsTaken = append(r.ActionsTaken, "created backup branch "+backup)
	}

	switch op.Type {
	case OpDeleteLocal:
		if err := e.git.DeleteLocalBranch(repoPath, op.Branch, true); err != nil {
			r.Err = fmt.Errorf("deleting local branch %s: %w", op.Branch, err)
			return r
		}
		r.ActionsTaken = append(r.ActionsTaken, "deleted local branch "+op.Branch)

	case OpDeleteRemote:
		if err := e.git.DeleteRemoteBranch(repoPath, remote, op.Branch); err != nil {
			r.Err = fmt.Errorf("deleting remote branch %s on %s: %w", op.Branch, remote, err)
			return r
		}
		r.ActionsTaken = append(r.ActionsTaken,
			fmt.Sprintf("deleted branch %s on remote %s", op.Branch, remote))

	case OpArchive:
		tag := "archive/" + op.Branch
		if err := e.git.CreateTag(repoPath, tag, op.Branch); err != nil {
			r.Err = fmt.Errorf("tagging %s as %s: %w", op.Branch, tag, err)
			return r
		}
		r.ActionsTaken = append(r.ActionsTaken, "created tag "+tag)
		if err := e.git.DeleteLocalBranch(repoPath, op.Branch, true); err != nil {
			r.Err = fmt.Errorf("deleting archived branch %s: %w", op.Branch, err)
			return r
		}
		r.ActionsTaken = append(r.ActionsTaken, "deleted local branch "+op.Branch)

	default:
		r.Err = fmt.Errorf("unknown operation type %q for branch %s", op.Type, op.Branch)
		return r
	}

	slog.Debug("cleanup operation finished", "type", op.Type, "branch", op.Branch)
	r.Success = true
	return r
}

func describeOp(t OpType) string {
	switch t {
	case OpDeleteRemote:
		return "delete remote"
	case OpArchive:
		return "archive"
	default:
		return "delete local"
	}
}

func failedCritical(checks []SafetyCheck) []string {
	var failed []string
	for _, c := range checks {
		if c.Critical && !c.Passed {
			failed = append(failed, c.Name)
		}
	}
	return failed
}
