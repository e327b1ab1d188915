package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetMissingKey(t *testing.T) {
	t.Parallel()

	store := New(t.TempDir())
	var v string
	found, err := store.Get("nope", &v)
	require.NoError(t, err)
	require.False(t, found)
}

func TestSetGetRoundTrip(t *testing.T) {
	t.Parallel()

	store := New(t.TempDir())
	require.NoError(t, store.Set(KeyAuthToken, "tok-123"))

	var token string
	found, err := store.Get(KeyAuthToken, &token)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "tok-123", token)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	store := New(t.TempDir())
	require.NoError(t, store.Set(KeyAuthToken, "tok"))
	require.NoError(t, store.Delete(KeyAuthToken))
	require.NoError(t, store.Delete(KeyAuthToken)) // 键不存在时为空操作

	var v string
	found, err := store.Get(KeyAuthToken, &v)
	require.NoError(t, err)
	require.False(t, found)
}

func TestClearPreservesSettings(t *testing.T) {
	t.Parallel()

	store := New(t.TempDir())
	require.NoError(t, store.Set(KeyAuthToken, "tok"))
	require.NoError(t, store.Set(KeyUserInfo, map[string]any{"id": "u1"}))
	require.NoError(t, store.Set(KeySettings, map[string]any{"ai_style": "简洁"}))

	require.NoError(t, store.Clear())

	var v any
	found, err := store.Get(KeyAuthToken, &v)
	require.NoError(t, err)
	require.False(t, found)
	found, err = store.Get(KeyUserInfo, &v)
	require.NoError(t, err)
	require.False(t, found)

	// 设置不随账号清除
	var settings map[string]any
	found, err = store.Get(KeySettings, &settings)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "简洁", settings["ai_style"])
}

func TestClearCorruptStateFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, stateFileName), []byte("not-json"), 0o600))

	store := New(dir)
	require.NoError(t, store.Clear())

	var v string
	found, err := store.Get(KeyAuthToken, &v)
	require.NoError(t, err)
	require.False(t, found)
}

func TestStateFilePermissions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := New(dir)
	require.NoError(t, store.Set(KeyAuthToken, "secret"))

	info, err := os.Stat(filepath.Join(dir, stateFileName))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
