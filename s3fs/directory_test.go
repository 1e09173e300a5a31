package s3fs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xirelogy/magpie-s3-filesystem/data"
)

func TestCreateDirectory(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	require.True(t, env.fs.CreateDirectory(ctx, "a/b"))

	info, err := env.store.HeadObject(ctx, testBucket, "a/b/")
	require.NoError(t, err)
	assert.Zero(t, info.Size)
	assert.Empty(t, info.ContentType)
}

func TestCreateDirectory_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	assert.True(t, env.fs.CreateDirectory(ctx, "dir"))
	assert.True(t, env.fs.CreateDirectory(ctx, "dir/"))
	assert.True(t, env.fs.CreateDirectory(ctx, "/dir//"))

	assert.Equal(t, 1, env.store.Len(testBucket))
	assert.True(t, env.fs.IsDirectoryExist(ctx, "dir"))
}

func TestCreateDirectory_Root(t *testing.T) {
	env := newTestEnv(t)

	assert.True(t, env.fs.CreateDirectory(t.Context(), "/"))
	assert.Zero(t, env.client.Count("put"))
}

func TestCreateDirectory_Failures(t *testing.T) {
	t.Run("InvalidPath", func(t *testing.T) {
		env := newTestEnv(t)

		assert.False(t, env.fs.CreateDirectory(t.Context(), "../escape"))
		assert.Empty(t, env.client.Calls())
	})

	t.Run("NoBucket", func(t *testing.T) {
		env := newTestEnvAt(t, NewLocationBuilder("localhost").Build(), nil)

		assert.False(t, env.fs.CreateDirectory(t.Context(), "a"))
		assert.Empty(t, env.client.Calls())
	})

	t.Run("Transport", func(t *testing.T) {
		env := newTestEnv(t)
		env.client.fail("put", errors.New("connection reset"))

		assert.False(t, env.fs.CreateDirectory(t.Context(), "a"))
		assert.True(t, containsWarning(env.logs.String()))
	})
}

func TestDeleteDirectory(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	require.True(t, env.fs.CreateDirectory(ctx, "a"))
	require.NoError(t, env.fs.WriteFile(ctx, "a/x", data.NewBinaryContent([]byte("x"), "")))
	require.NoError(t, env.fs.WriteFile(ctx, "a/y", data.NewBinaryContent([]byte("y"), "")))
	require.NoError(t, env.fs.WriteFile(ctx, "a/sub/z", data.NewBinaryContent([]byte("z"), "")))
	require.NoError(t, env.fs.WriteFile(ctx, "ab", data.NewBinaryContent([]byte("sibling"), "")))

	assert.True(t, env.fs.DeleteDirectory(ctx, "a", false))

	assert.False(t, env.fs.IsFileExist(ctx, "a/x"))
	assert.False(t, env.fs.IsFileExist(ctx, "a/y"))
	assert.False(t, env.fs.IsFileExist(ctx, "a/sub/z"))
	assert.False(t, env.fs.IsDirectoryExist(ctx, "a"))
	assert.True(t, env.fs.IsFileExist(ctx, "ab"))
}

func TestDeleteDirectory_EmptyFlagStillRecursive(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	require.NoError(t, env.fs.WriteFile(ctx, "a/x", data.NewBinaryContent([]byte("x"), "")))
	require.NoError(t, env.fs.WriteFile(ctx, "a/sub/z", data.NewBinaryContent([]byte("z"), "")))

	assert.True(t, env.fs.DeleteDirectory(ctx, "a", true))

	assert.False(t, env.fs.IsFileExist(ctx, "a/x"))
	assert.False(t, env.fs.IsFileExist(ctx, "a/sub/z"))
	assert.False(t, env.fs.IsDirectoryExist(ctx, "a"))
	assert.Equal(t, 1, env.client.Count("delete-prefix"))
}

func TestDeleteDirectory_Missing(t *testing.T) {
	env := newTestEnv(t)

	assert.False(t, env.fs.DeleteDirectory(t.Context(), "missing", true))
	assert.Equal(t, 1, env.client.Count("list"))
	assert.Zero(t, env.client.Count("delete-prefix"))
	assert.Zero(t, env.client.Count("delete"))
}

func TestDeleteDirectory_Root(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	require.NoError(t, env.fs.WriteFile(ctx, "keep.txt", data.NewBinaryContent([]byte("x"), "")))
	env.client.Reset()

	assert.False(t, env.fs.DeleteDirectory(ctx, "/", false))
	assert.Empty(t, env.client.Calls())
	assert.True(t, env.fs.IsFileExist(ctx, "keep.txt"))
}

func TestDeleteDirectory_TransportFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	require.True(t, env.fs.CreateDirectory(ctx, "a"))
	env.client.fail("delete-prefix", errors.New("quota exceeded"))

	assert.False(t, env.fs.DeleteDirectory(ctx, "a", false))
	assert.Contains(t, env.logs.String(), "quota exceeded")
	assert.True(t, env.fs.IsDirectoryExist(ctx, "a"))
}
