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

func TestLocalStorage_UploadAndDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewLocalStorage(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	key, err := s.Upload(ctx, strings.NewReader("hello"), "leaves/a.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "leaves/a.pdf", key)

	content, err := os.ReadFile(filepath.Join(dir, "leaves", "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	url, err := s.GetURL(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/leaves/a.pdf", url)

	require.NoError(t, s.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(dir, "leaves", "a.pdf"))
	assert.True(t, os.IsNotExist(err))

	// Deleting again is a no-op
	assert.NoError(t, s.Delete(ctx, key))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	_, err = s.Upload(ctx, strings.NewReader("x"), "../escape.txt", "text/plain")
	assert.ErrorIs(t, err, ErrInvalidPath)

	err = s.Delete(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = s.GetURL(ctx, ".")
	assert.ErrorIs(t, err, ErrInvalidPath)
}
