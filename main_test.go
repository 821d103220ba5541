package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	assert.Equal(t, "metanet dev\n", execute(t, "version"))
}

func TestCacheClearUsesConfiguredBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".metanet")
	out := execute(t, "--config-dir", dir, "cache", "clear")
	assert.Equal(t, "Cleared the sqlite cache\n", out)
	assert.FileExists(t, filepath.Join(dir, "cache.db"))
	assert.FileExists(t, filepath.Join(dir, "metanet.log"))
}

func TestRootRejectsArguments(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"unexpected"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}
