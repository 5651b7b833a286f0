package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiskStorePut(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir)

	err := store.Put(context.Background(), "images/1/originals/abc.png", strings.NewReader("payload"), "image/png")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "images", "1", "originals", "abc.png"))
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))
}

func TestDiskStorePutRejectsTraversal(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	err := store.Put(context.Background(), "../escape.png", strings.NewReader("x"), "image/png")
	require.Error(t, err)
}
