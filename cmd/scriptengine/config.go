package main

import (
	"fmt"
	"os"
	"time"

	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/relaygrid/scriptengine/internal/cache"
	"github.com/relaygrid/scriptengine/internal/limits"
)

// fileConfig is the shape of the optional TOML config file accepted by
// --config: default execution limits and cache policy. Fields left at zero
// keep the library defaults.
type fileConfig struct {
	TimeoutSeconds     int   `toml:"timeoutSeconds"`
	MaxRecursionDepth  int   `toml:"maxRecursionDepth"`
	MaxImportedScripts int   `toml:"maxImportedScripts"`
	MaxMemoryBytes     int64 `toml:"maxMemoryBytes"`
	CacheMaxAgeSeconds int   `toml:"cacheMaxAgeSeconds"`
	CacheMaxSize       int   `toml:"cacheMaxSize"`
}

// loadFileConfig reads and decodes a TOML config file from path. An empty
// path returns a zero fileConfig with no error.
func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := gotoml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// toLimits builds a *limits.Limits from the file config, falling back to
// limits.Defaults() for any field left at its zero value.
func (c fileConfig) toLimits() *limits.Limits {
	d := limits.Defaults()
	timeout := d.Timeout()
	if c.TimeoutSeconds > 0 {
		timeout = time.Duration(c.TimeoutSeconds) * time.Second
	}
	depth := d.MaxRecursionDepth()
	if c.MaxRecursionDepth > 0 {
		depth = c.MaxRecursionDepth
	}
	imports := d.MaxImportedScripts()
	if c.MaxImportedScripts > 0 {
		imports = c.MaxImportedScripts
	}
	memory := d.MaxMemory()
	if c.MaxMemoryBytes > 0 {
		memory = c.MaxMemoryBytes
	}
	return limits.New(timeout, depth, imports, memory)
}

func (c fileConfig) toCachePolicy() cache.Policy {
	policy := cache.DefaultPolicy()
	if c.CacheMaxAgeSeconds > 0 {
		policy.MaxAge = time.Duration(c.CacheMaxAgeSeconds) * time.Second
	}
	if c.CacheMaxSize > 0 {
		policy.MaxSize = c.CacheMaxSize
	}
	return policy
}
