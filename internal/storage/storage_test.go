package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.GetItem(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetItem(ctx, "menu", `{"menus":[]}`))
	got, err := s.GetItem(ctx, "menu")
	require.NoError(t, err)
	assert.Equal(t, `{"menus":[]}`, got)

	require.NoError(t, s.SetItem(ctx, "menu", "replaced"))
	got, err = s.GetItem(ctx, "menu")
	require.NoError(t, err)
	assert.Equal(t, "replaced", got)

	require.NoError(t, s.RemoveItem(ctx, "menu"))
	_, err = s.GetItem(ctx, "menu")
	require.ErrorIs(t, err, ErrNotFound)

	// Removing twice must stay quiet.
	require.NoError(t, s.RemoveItem(ctx, "menu"))
}

func TestMemory(t *testing.T) {
	exerciseStorage(t, NewMemory())
}

func TestMemory_ZeroValueUsable(t *testing.T) {
	var m Memory
	require.NoError(t, m.SetItem(context.Background(), "k", "v"))
	assert.Equal(t, 1, m.Len())
}

func TestFile(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "nested", "store"))
	require.NoError(t, err)
	exerciseStorage(t, f)
}

func TestFile_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, f.SetItem(context.Background(), "erp_menu_cache", "x"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "erp_menu_cache", entries[0].Name())
}

func TestFile_RejectsPathKeys(t *testing.T) {
	f, err := NewFile(t.TempDir())
	require.NoError(t, err)
	for _, key := range []string{"", "  ", "../escape", `a\b`, ".."} {
		assert.Error(t, f.SetItem(context.Background(), key, "v"), "key %q", key)
	}
}

func TestNewFile_EmptyDirErrors(t *testing.T) {
	_, err := NewFile("   ")
	assert.Error(t, err)
}

func setupTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr
}

func TestRedis(t *testing.T) {
	mr := setupTestRedis(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewRedis(client, "erpdesk:")
	t.Cleanup(func() { _ = r.Close() })

	exerciseStorage(t, r)
}

func TestRedis_PrefixesKeys(t *testing.T) {
	mr := setupTestRedis(t)
	r, err := DialRedis(context.Background(), mr.Addr(), 0, "erpdesk:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	require.NoError(t, r.SetItem(context.Background(), "erp_menu_cache", "payload"))

	got, err := mr.Get("erpdesk:erp_menu_cache")
	require.NoError(t, err)
	assert.Equal(t, "payload", got)
	assert.False(t, mr.Exists("erp_menu_cache"))
}

func TestRedis_ServerErrorIsNotNotFound(t *testing.T) {
	mr := setupTestRedis(t)
	r, err := DialRedis(context.Background(), mr.Addr(), 0, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	mr.SetError("LOADING server is loading")
	_, err = r.GetItem(context.Background(), "menu")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	mr.SetError("")
}

func TestDialRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := DialRedis(ctx, "127.0.0.1:1", 0, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping redis 127.0.0.1:1")
}
