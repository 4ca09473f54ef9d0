package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalAssetHostSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	host, err := NewLocalAssetHost(dir, "/media/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := host.Save(ctx, "posts/cover.png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "/media/posts/cover.png", url)

	_, err = os.Stat(filepath.Join(dir, "posts", "cover.png"))
	require.NoError(t, err)

	require.NoError(t, host.Delete(ctx, "posts/cover.png"))
	_, err = os.Stat(filepath.Join(dir, "posts", "cover.png"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, host.Delete(ctx, "posts/cover.png"), "deleting twice is fine")
}

func TestLocalAssetHostRejectsEscapes(t *testing.T) {
	host, err := NewLocalAssetHost(t.TempDir(), "")
	require.NoError(t, err)
	ctx := context.Background()

	for _, id := range []string{"", "../secret", "a/../../b", "/"} {
		assert.Error(t, host.Delete(ctx, id), id)
	}
}

func TestLocalAssetHostHonoursCancellation(t *testing.T) {
	host, err := NewLocalAssetHost(t.TempDir(), "")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, host.Delete(ctx, "x.png"), context.Canceled)
}
