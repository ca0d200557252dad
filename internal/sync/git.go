package sync

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/alfredjeanlab/rolodex/internal/export"
)

// GitDestination commits artifacts into a directory of a local clone and
// pushes them to origin.
type GitDestination struct {
	repo   string
	dir    string
	branch string
}

// NewGitDestination writes into dir (relative to the clone at repo) and
// pushes branch.
func NewGitDestination(repo, dir, branch string) *GitDestination {
	return &GitDestination{repo: repo, dir: dir, branch: branch}
}

func (d *GitDestination) Name() string { return "git" }

// Deliver writes the artifact and pushes a commit when its content changed.
// An unchanged snapshot creates no commit.
func (d *GitDestination) Deliver(ctx context.Context, a export.Artifact) error {
	if err := d.git(ctx, "checkout", d.branch); err != nil {
		return err
	}
	// Fails harmlessly while the remote has no such branch.
	_ = d.git(ctx, "pull", "--ff-only", "origin", d.branch)

	rel := filepath.Join(d.dir, filepath.Base(a.Name))
	if err := writeFileAtomic(filepath.Join(d.repo, rel), a.Data); err != nil {
		return err
	}
	if err := d.git(ctx, "add", "--", rel); err != nil {
		return err
	}

	changed, err := d.hasStagedChanges(ctx)
	if err != nil || !changed {
		return err
	}
	if err := d.git(ctx, "commit", "-m", "rolodex snapshot: "+a.Name); err != nil {
		return err
	}
	return d.git(ctx, "push", "origin", d.branch)
}

func (d *GitDestination) hasStagedChanges(ctx context.Context) (bool, error) {
	err := d.git(ctx, "diff", "--cached", "--quiet")
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return false, nil
	case errors.As(err, &exitErr) && exitErr.ExitCode() == 1:
		return true, nil
	}
	return false, err
}

// gitError is a failed git invocation with its combined output.
type gitError struct {
	args   []string
	output string
	err    error
}

func (e *gitError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.args, " "), e.err)
	if e.output != "" {
		msg += ": " + e.output
	}
	return msg
}

func (e *gitError) Unwrap() error { return e.err }

func (d *GitDestination) git(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = d.repo
	out, err := cmd.CombinedOutput()
	if err != nil {
		return &gitError{args: args, output: strings.TrimSpace(string(out)), err: err}
	}
	return nil
}
