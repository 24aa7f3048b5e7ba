package cliio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadArg_FilePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.txt")
	require.NoError(t, os.WriteFile(path, []byte("build auth"), 0644))

	got, err := ReadArg(path)
	require.NoError(t, err)
	assert.Equal(t, "build auth", got)
}

func TestReadArg_MissingFile(t *testing.T) {
	_, err := ReadArg("/nonexistent/path/plan.txt")
	require.Error(t, err)
}

func TestReadWithIdleTimeout_ShortCircuitsOnSlowReader(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	got, err := readWithIdleTimeout(r, 30)
	require.Error(t, err)
	assert.Empty(t, got)
	_ = w.Close()
}

func TestStdinLatch_SecondConsumeFails(t *testing.T) {
	ResetLatch()
	defer ResetLatch()

	mu.Lock()
	consumed = true
	mu.Unlock()

	_, err := ReadArg("-")
	require.Error(t, err)
}
