package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBlacklist(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	content := strings.Join([]string{
		"# IPsum Threat Intelligence Feed",
		"",
		"185.220.101.1\t7",
		"  45.155.205.233   3  ",
		"1.2.3.4",
	}, "\n")

	n, err := LoadBlacklist(ctx, store, strings.NewReader(content), "ipsum")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	entries, err := store.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.2.3.4", "185.220.101.1", "45.155.205.233"}, entries["ipsum"])
}

func TestLoadBlacklistFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "blacklist.txt")
	require.NoError(t, os.WriteFile(path, []byte("8.8.8.8\n"), 0644))

	store := NewMemoryStore()
	n, err := LoadBlacklistFile(ctx, store, path, "file")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	listed, err := store.Contains(ctx, "8.8.8.8")
	require.NoError(t, err)
	assert.True(t, listed)
}

func TestLoadBlacklistFileMissing(t *testing.T) {
	_, err := LoadBlacklistFile(context.Background(), NewMemoryStore(), filepath.Join(t.TempDir(), "none.txt"), "file")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
