// Package gitops performs the git operations the setup workflow needs:
// cloning template and project repositories, seeding them with pipeline
// code, and pushing only when the working tree actually changed.
package gitops

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes a git invocation in a working directory and returns its
// combined output.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// ExecRunner runs git through the local binary.
type ExecRunner struct{}

// Run executes git with the given arguments. Command output is folded into
// the returned error so callers can log a single line.
func (ExecRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	text := strings.TrimSpace(string(out))
	if err != nil {
		return text, fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, redact(text))
	}
	return text, nil
}

// redact strips credential-bearing URLs from git output before it lands in
// errors or logs.
func redact(s string) string {
	if idx := strings.Index(s, "x-access-token:"); idx >= 0 {
		end := strings.IndexByte(s[idx:], '@')
		if end > 0 {
			return s[:idx] + "***" + s[idx+end:]
		}
	}
	return s
}
