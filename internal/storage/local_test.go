package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_Roundtrip(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	userID := uuid.New()

	key, err := ls.Store(ctx, userID, "notes week 1.txt", strings.NewReader("lecture notes"), "text/plain")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, userID.String()+"/"))
	assert.NotContains(t, key, " ")

	exists, err := ls.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	reader, err := ls.Retrieve(ctx, key)
	require.NoError(t, err)
	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	assert.Equal(t, "lecture notes", string(content))

	require.NoError(t, ls.Delete(ctx, key))

	exists, err = ls.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = ls.Retrieve(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = ls.Retrieve(context.Background(), "../../etc/passwd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path traversal")
}

func TestLocalStorage_DeleteMissingIsNoop(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, ls.Delete(context.Background(), "nothing/here.txt"))
}
