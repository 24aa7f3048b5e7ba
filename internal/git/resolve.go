package git

import (
	"errors"
)

// ErrNoStagedChanges is the resolver's empty-diff sentinel. It is not part
// of the closed error taxonomy: the precommit handler treats it specially,
// differently on the tool-call and CLI surfaces.
var ErrNoStagedChanges = errors.New("NO_STAGED_CHANGES: no staged changes found")

// ResolveOptions carries the precommit request's diff-source arguments.
type ResolveOptions struct {
	Diff     *string // explicit diff; nil means "not supplied"
	AutoDiff *bool   // nil means "default true"
}

func autoDiffEnabled(opts ResolveOptions) bool {
	return opts.AutoDiff == nil || *opts.AutoDiff
}

// Resolve applies the diff resolver contract: an explicit diff wins even
// when empty; otherwise, when auto_diff is not explicitly false, git
// supplies the staged diff, and an empty result becomes
// ErrNoStagedChanges.
func Resolve(client Client, repoPath string, opts ResolveOptions) (string, error) {
	if opts.Diff != nil {
		return *opts.Diff, nil
	}
	if !autoDiffEnabled(opts) {
		return "", errors.New("auto_diff disabled and no diff provided")
	}

	diff, err := client.StagedDiff(repoPath)
	if err != nil {
		return "", err
	}
	if diff == "" {
		return "", ErrNoStagedChanges
	}
	return diff, nil
}
