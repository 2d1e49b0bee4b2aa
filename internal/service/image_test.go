package service

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chenyahui/gin-cache/persist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalImageStoreCreatesFolders(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")

	_, err := NewLocalImageStore(root, "profile")
	require.NoError(t, err)

	assert.DirExists(t, filepath.Join(root, "profile"))
}

func TestLocalImageStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalImageStore(t.TempDir(), "profile")
	require.NoError(t, err)

	name, err := s.Save(ctx, []byte("image bytes"), "image/png")
	require.NoError(t, err)
	assert.Len(t, name, 32)

	r, err := s.Open(ctx, name)
	require.NoError(t, err)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "image bytes", string(data))

	require.NoError(t, s.Delete(ctx, name))

	_, err = s.Open(ctx, name)
	assert.ErrorIs(t, err, ErrImageNotFound)

	// Deleting twice is fine
	assert.NoError(t, s.Delete(ctx, name))
}

func TestLocalImageStoreRejectsForeignNames(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	s, err := NewLocalImageStore(root, "profile")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("secret"), 0o644))

	for _, name := range []string{"../secret.txt", "secret.txt", "", ".."} {
		_, err := s.Open(ctx, name)
		assert.ErrorIs(t, err, ErrImageNotFound, name)
	}

	require.NoError(t, s.Delete(ctx, "../secret.txt"))
	assert.FileExists(t, filepath.Join(root, "secret.txt"))
}

func TestCachedImageStoreEvictsOnDelete(t *testing.T) {
	ctx := context.Background()
	local, err := NewLocalImageStore(t.TempDir(), "profile")
	require.NoError(t, err)

	store := persist.NewMemoryStore(time.Minute)
	s := &CachedImageStore{ImageStore: local, Cache: store}

	name, err := s.Save(ctx, []byte("image bytes"), "image/png")
	require.NoError(t, err)
	require.NoError(t, store.Set(ImageCacheKey(name), "cached", time.Hour))

	require.NoError(t, s.Delete(ctx, name))

	var v string
	assert.ErrorIs(t, store.Get(ImageCacheKey(name), &v), persist.ErrCacheMiss)

	_, err = s.Open(ctx, name)
	assert.ErrorIs(t, err, ErrImageNotFound)

	// Nothing cached, nothing stored
	assert.NoError(t, s.Delete(ctx, name))
}
