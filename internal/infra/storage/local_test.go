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

func TestLocalStore_Save(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir)
	require.NoError(t, err)
	s.newID = func() string { return "fixed" }

	url, err := s.Save(context.Background(), "cover photo.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/fixed_cover_photo.png", url)

	b, err := os.ReadFile(filepath.Join(dir, "fixed_cover_photo.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(b))
}

func TestLocalStore_Save_CanceledContext(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Save(ctx, "a.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "evil.png", SanitizeFilename(`C:\tmp\evil.png`))
	assert.Equal(t, "hidden", SanitizeFilename(".hidden"))
	assert.Equal(t, "file", SanitizeFilename("日本語"))
	assert.Equal(t, "my_file-1.jpg", SanitizeFilename("my file-1.jpg"))
}

func TestLocalStore_Remove(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir)
	require.NoError(t, err)

	url, err := s.Save(context.Background(), "a.png", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, s.Remove(context.Background(), url))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// 2回目は何もしない
	assert.NoError(t, s.Remove(context.Background(), url))

	assert.Error(t, s.Remove(context.Background(), "/uploads/../secret"))
	assert.Error(t, s.Remove(context.Background(), "https://cdn.example.com/a.png"))
}
