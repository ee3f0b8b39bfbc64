package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileConfigEmptyPathReturnsZeroValue(t *testing.T) {
	cfg, err := loadFileConfig("")
	require.NoError(t, err)
	assert.Equal(t, fileConfig{}, cfg)
}

func TestLoadFileConfigDecodesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scriptengine.toml")
	content := `
timeoutSeconds = 5
maxRecursionDepth = 3
maxImportedScripts = 20
cacheMaxAgeSeconds = 60
cacheMaxSize = 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := loadFileConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.TimeoutSeconds)
	assert.Equal(t, 3, cfg.MaxRecursionDepth)
	assert.Equal(t, 20, cfg.MaxImportedScripts)
}

func TestFileConfigToLimitsAppliesOverridesOverDefaults(t *testing.T) {
	cfg := fileConfig{TimeoutSeconds: 5, MaxRecursionDepth: 3}
	limits := cfg.toLimits()
	assert.Equal(t, 5*time.Second, limits.Timeout())
	assert.Equal(t, 3, limits.MaxRecursionDepth())
}

func TestFileConfigToCachePolicyAppliesOverrides(t *testing.T) {
	cfg := fileConfig{CacheMaxAgeSeconds: 30, CacheMaxSize: 7}
	policy := cfg.toCachePolicy()
	assert.Equal(t, 30*time.Second, policy.MaxAge)
	assert.Equal(t, 7, policy.MaxSize)
}
