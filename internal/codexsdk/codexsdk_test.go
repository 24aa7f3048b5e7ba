package codexsdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewbridge/reviewbridge/internal/apperr"
)

func TestNewClient_MissingAPIKey(t *testing.T) {
	_, err := NewClient("", "claude-sonnet-4-5")
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.AuthError, e.Code)
}

func TestResumeThread_Miss(t *testing.T) {
	c, err := NewClient("sk-test", "claude-sonnet-4-5")
	require.NoError(t, err)

	_, err = c.ResumeThread("does-not-exist", ThreadOptions{})
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.SessionNotFound, e.Code)
}

func TestStartThenResumeThread(t *testing.T) {
	c, err := NewClient("sk-test", "claude-sonnet-4-5")
	require.NoError(t, err)

	th, err := c.StartThread(ThreadOptions{Model: "claude-sonnet-4-5", SandboxMode: "read-only"})
	require.NoError(t, err)
	require.NotEmpty(t, th.ID())

	resumed, err := c.ResumeThread(th.ID(), ThreadOptions{})
	require.NoError(t, err)
	assert.Equal(t, th.ID(), resumed.ID())
}

func TestStripFencing(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFencing("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFencing(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, stripFencing("```\n{\"a\":1}\n```"))
}
