package apperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Cancellation(t *testing.T) {
	err := Classify(errors.New("request aborted by caller"), "claude-sonnet-4-5")
	require.NotNil(t, err)
	assert.Equal(t, CodexTimeout, err.Code)
}

func TestClassify_Auth(t *testing.T) {
	err := Classify(errors.New("invalid api_key provided"), "claude-sonnet-4-5")
	require.NotNil(t, err)
	assert.Equal(t, AuthError, err.Code)
}

func TestClassify_ModelExtractsName(t *testing.T) {
	err := Classify(errors.New(`model 'claude-9000' not found`), "claude-sonnet-4-5")
	require.NotNil(t, err)
	assert.Equal(t, ModelError, err.Code)
	assert.Contains(t, err.Message, "claude-9000")
}

func TestClassify_RateLimited(t *testing.T) {
	err := Classify(errors.New("429 too many requests"), "claude-sonnet-4-5")
	require.NotNil(t, err)
	assert.Equal(t, RateLimited, err.Code)
}

func TestClassify_Network(t *testing.T) {
	err := Classify(errors.New("dial tcp: ECONNREFUSED"), "claude-sonnet-4-5")
	require.NotNil(t, err)
	assert.Equal(t, NetworkError, err.Code)
}

func TestClassify_Unknown(t *testing.T) {
	err := Classify(errors.New("something odd happened"), "claude-sonnet-4-5")
	require.NotNil(t, err)
	assert.Equal(t, UnknownError, err.Code)
}

func TestClassify_PassesThroughExisting(t *testing.T) {
	orig := New(GitError, "ref is unsafe")
	err := Classify(orig, "claude-sonnet-4-5")
	assert.Same(t, orig, err)
}

func TestErrorString(t *testing.T) {
	err := New(SessionNotFound, "no such session: %s", "abc")
	assert.Equal(t, "SESSION_NOT_FOUND: no such session: abc", err.Error())
}
