// Package git wraps the git invocation used by the precommit diff
// resolver: reading the currently staged changes.
package git

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/reviewbridge/reviewbridge/internal/apperr"
)

// Client is the external collaborator the precommit handler's diff resolver
// depends on.
type Client interface {
	// StagedDiff returns the output of `git diff --cached` at path. An
	// empty result is not an error: the caller decides what an empty
	// staged diff means.
	StagedDiff(path string) (string, error)
}

// RealClient shells out to the git binary.
type RealClient struct{}

// NewClient returns a RealClient.
func NewClient() *RealClient {
	return &RealClient{}
}

func gitCmd(path string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", path}, args...)
	out, err := exec.Command("git", fullArgs...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", apperr.New(apperr.GitError, "git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", apperr.Wrap(apperr.GitError, err, fmt.Sprintf("git %s: %v", strings.Join(args, " "), err))
	}
	return string(out), nil
}

// StagedDiff returns `git diff --cached` output at path, unmodified
// (including trailing whitespace) so the chunker's exact-reproduction
// invariant sees the same bytes git produced.
func (c *RealClient) StagedDiff(path string) (string, error) {
	return gitCmd(path, "diff", "--cached")
}
