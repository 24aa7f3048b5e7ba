package git

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	diff string
	err  error
}

func (f fakeClient) StagedDiff(string) (string, error) { return f.diff, f.err }

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

func TestResolve_ExplicitDiffWinsEvenWhenEmpty(t *testing.T) {
	got, err := Resolve(fakeClient{diff: "should be ignored"}, "/repo", ResolveOptions{Diff: strp("")})
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestResolve_AutoDiffFallsBackToGit(t *testing.T) {
	got, err := Resolve(fakeClient{diff: "diff --git a/x b/x\n"}, "/repo", ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, "diff --git a/x b/x\n", got)
}

func TestResolve_EmptyStagedDiffIsSentinel(t *testing.T) {
	_, err := Resolve(fakeClient{diff: ""}, "/repo", ResolveOptions{})
	require.ErrorIs(t, err, ErrNoStagedChanges)
}

func TestResolve_AutoDiffDisabledNoExplicitDiff(t *testing.T) {
	_, err := Resolve(fakeClient{diff: "x"}, "/repo", ResolveOptions{AutoDiff: boolp(false)})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoStagedChanges))
}

func TestResolve_GitErrorPropagates(t *testing.T) {
	sentinel := errors.New("GIT_ERROR: not a repository")
	_, err := Resolve(fakeClient{err: sentinel}, "/repo", ResolveOptions{})
	require.ErrorIs(t, err, sentinel)
}
