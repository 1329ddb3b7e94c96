package iofs_test

import (
	"os"
	"testing"

	"github.com/gamedex/gdb/internal/iofs"
	"github.com/gamedex/gdb/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirs(t *testing.T) {
	home := t.TempDir()

	require.NoError(t, iofs.EnsureDirs(home))
	info, err := os.Stat(config.ConfigDir(home))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Idempotent.
	assert.NoError(t, iofs.EnsureDirs(home))
}

func TestEnsureConfigFile(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, iofs.EnsureDirs(home))

	require.NoError(t, iofs.EnsureConfigFile(home))
	data, err := os.ReadFile(config.ConfigFilePath(home))
	require.NoError(t, err)
	assert.Equal(t, iofs.ConfigYAML, string(data))
	assert.Contains(t, string(data), "database:")

	// An existing file is never overwritten.
	custom := []byte("# customized\n")
	require.NoError(t,
		os.WriteFile(config.ConfigFilePath(home), custom, 0644))
	require.NoError(t, iofs.EnsureConfigFile(home))
	data, err = os.ReadFile(config.ConfigFilePath(home))
	require.NoError(t, err)
	assert.Equal(t, custom, data)
}
