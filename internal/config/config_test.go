package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envBaseURL, "")
	t.Setenv(envDebug, "")

	cfg, err := Load("", dir, false)
	require.NoError(t, err)
	require.Equal(t, defaultBaseURL, cfg.BaseURL)
	require.Equal(t, dir, cfg.DataDir)
	require.False(t, cfg.Debug)
}

func TestLoadExplicitOverridesEnv(t *testing.T) {
	t.Setenv(envBaseURL, "http://env.example.com")

	cfg, err := Load("http://flag.example.com", t.TempDir(), false)
	require.NoError(t, err)
	require.Equal(t, "http://flag.example.com", cfg.BaseURL)
}

func TestLoadEnvFallback(t *testing.T) {
	t.Setenv(envBaseURL, "http://env.example.com")
	t.Setenv(envDebug, "true")

	cfg, err := Load("", t.TempDir(), false)
	require.NoError(t, err)
	require.Equal(t, "http://env.example.com", cfg.BaseURL)
	require.True(t, cfg.Debug)
}

func TestLogFilePath(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load("", dir, false)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "logs", "bazichat.log"), cfg.LogFile())
}
