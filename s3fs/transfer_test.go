package s3fs

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xirelogy/magpie-s3-filesystem/backend"
	"github.com/xirelogy/magpie-s3-filesystem/backend/memory"
	"github.com/xirelogy/magpie-s3-filesystem/data"
	ferrors "github.com/xirelogy/magpie-s3-filesystem/data/errors"
)

func TestFileLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	assert.False(t, env.fs.IsFileExist(ctx, "notes/today.txt"))

	require.NoError(t, env.fs.WriteFile(ctx, "notes/today.txt", data.NewBinaryContent([]byte("buy milk"), "")))
	assert.True(t, env.fs.IsFileExist(ctx, "notes/today.txt"))

	assert.True(t, env.fs.DeleteFile(ctx, "notes/today.txt"))
	assert.False(t, env.fs.IsFileExist(ctx, "notes/today.txt"))

	// Second delete finds nothing
	assert.False(t, env.fs.DeleteFile(ctx, "notes/today.txt"))
}

func TestReadFile_RoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		payload     []byte
		contentType string
	}{
		{name: "Explicit", path: "a/b.bin", payload: []byte{0x00, 0x10, 0xff}, contentType: "application/x-custom"},
		{name: "Empty", path: "empty.txt", payload: []byte{}, contentType: "text/plain"},
		{name: "Nested", path: "/deep/er/still/file.json", payload: []byte(`{"k":"v"}`), contentType: "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := t.Context()

			require.NoError(t, env.fs.WriteFile(ctx, tt.path, data.NewBinaryContent(tt.payload, tt.contentType)))

			content, err := env.fs.ReadFile(ctx, tt.path)
			require.NoError(t, err)

			assert.Equal(t, tt.payload, content.Data)
			assert.Equal(t, tt.contentType, content.ContentType)
			assert.Equal(t, int64(len(tt.payload)), content.Size())
		})
	}
}

func TestReadFile_Overwrite(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	require.NoError(t, env.fs.WriteFile(ctx, "f", data.NewBinaryContent([]byte("first"), "text/plain")))
	require.NoError(t, env.fs.WriteFile(ctx, "f", data.NewBinaryContent([]byte("second"), "text/csv")))

	content, err := env.fs.ReadFile(ctx, "f")
	require.NoError(t, err)
	assert.Equal(t, "second", string(content.Data))
	assert.Equal(t, "text/csv", content.ContentType)
}

func TestReadFile_Failures(t *testing.T) {
	t.Run("Missing", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.fs.ReadFile(t.Context(), "missing.txt")
		require.ErrorIs(t, err, ferrors.ErrStreamRead)
		assert.True(t, backend.IsNotFound(err))
	})

	t.Run("NilBody", func(t *testing.T) {
		env := newTestEnv(t)
		env.client.nilBody = true

		_, err := env.fs.ReadFile(t.Context(), "any.txt")
		require.ErrorIs(t, err, ferrors.ErrStreamRead)
	})

	t.Run("NoBucket", func(t *testing.T) {
		env := newTestEnvAt(t, NewLocationBuilder("localhost").Build(), nil)

		_, err := env.fs.ReadFile(t.Context(), "a.txt")
		require.ErrorIs(t, err, ferrors.ErrStreamRead)
		assert.ErrorIs(t, err, ErrNoBucket)
		assert.Empty(t, env.client.Calls())
	})

	t.Run("Root", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.fs.ReadFile(t.Context(), "/")
		require.ErrorIs(t, err, ferrors.ErrInvalidPath)
		assert.Empty(t, env.client.Calls())
	})
}

func TestWriteFile_SniffsContentType(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		payload []byte
		want    string
	}{
		{name: "Extension", path: "x.json", payload: []byte(`{"a":1}`), want: data.ContentTypeApplicationJson},
		{name: "Signature", path: "image", payload: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00"), want: data.ContentTypeImagePNG},
		{name: "Fallback", path: "blob.unknownext", payload: []byte{0x00, 0x01, 0x02, 0x03, 0xfe, 0xff}, want: data.ContentTypeTextPlain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := t.Context()

			require.NoError(t, env.fs.WriteFile(ctx, tt.path, data.NewBinaryContent(tt.payload, "")))

			info, err := env.store.HeadObject(ctx, testBucket, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, info.ContentType)
		})
	}
}

func TestWriteFile_CustomSniffer(t *testing.T) {
	env := newTestEnv(t, WithMimeSniffer(func(key string, payload []byte) string {
		return "application/x-fixed"
	}))
	ctx := t.Context()

	require.NoError(t, env.fs.WriteFile(ctx, "a.json", data.NewBinaryContent([]byte("{}"), "")))

	content, err := env.fs.ReadFile(ctx, "a.json")
	require.NoError(t, err)
	assert.Equal(t, "application/x-fixed", content.ContentType)

	// An explicit hint bypasses the sniffer
	require.NoError(t, env.fs.WriteFile(ctx, "b.json", data.NewBinaryContent([]byte("{}"), "application/json")))

	content, err = env.fs.ReadFile(ctx, "b.json")
	require.NoError(t, err)
	assert.Equal(t, "application/json", content.ContentType)
}

func TestWriteFile_MarkerPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	require.NoError(t, env.fs.WriteFile(ctx, "dir/", nil))

	info, err := env.store.HeadObject(ctx, testBucket, "dir/")
	require.NoError(t, err)
	assert.Empty(t, info.ContentType)
	assert.Zero(t, info.Size)
	assert.True(t, env.fs.IsDirectoryExist(ctx, "dir"))
}

func TestWriteFile_InvalidPath(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"../x", "a/../../x", "/", "", "a\\b", "a/\xff.txt"} {
		err := env.fs.WriteFile(t.Context(), path, data.NewBinaryContent([]byte("x"), ""))
		assert.ErrorIs(t, err, ferrors.ErrInvalidPath, path)
	}

	assert.Empty(t, env.client.Calls())
}

func TestWriteFile_MutationGuard(t *testing.T) {
	var kill data.Switch
	env := newTestEnv(t, WithMutationGuard(kill.Guard()))
	ctx := t.Context()

	kill.Deny()

	err := env.fs.WriteFile(ctx, "a.txt", data.NewBinaryContent([]byte("x"), ""))
	require.ErrorIs(t, err, ferrors.ErrPersistence)
	assert.ErrorIs(t, err, ErrMutationDenied)
	assert.Zero(t, env.client.Count("put"))

	kill.Allow()

	require.NoError(t, env.fs.WriteFile(ctx, "a.txt", data.NewBinaryContent([]byte("x"), "")))
	assert.Equal(t, 1, env.client.Count("put"))
}

func TestWriteFile_NoBucket(t *testing.T) {
	env := newTestEnvAt(t, NewLocationBuilder("localhost").Build(), nil)

	err := env.fs.WriteFile(t.Context(), "a.txt", data.NewBinaryContent([]byte("x"), ""))
	require.ErrorIs(t, err, ferrors.ErrPersistence)
	assert.ErrorIs(t, err, ErrNoBucket)
	assert.Empty(t, env.client.Calls())
}

func TestWriteFile_TransportFailures(t *testing.T) {
	t.Run("Multipart", func(t *testing.T) {
		fault := errors.New("part rejected")
		location := NewLocationBuilder("localhost").WithBucket(testBucket).Build()
		env := newTestEnvAt(t, location, []memory.MemoryOption{
			memory.WithPartSize(4),
			memory.WithPartFault(func(uploadID string, part int) error {
				if part == 2 {
					return fault
				}
				return nil
			}),
		})

		err := env.fs.WriteFile(t.Context(), "big.bin", data.NewBinaryContent([]byte("0123456789"), ""))
		require.ErrorIs(t, err, ferrors.ErrStreamWrite)
		assert.ErrorIs(t, err, fault)
		assert.False(t, env.fs.IsFileExist(t.Context(), "big.bin"))
	})

	t.Run("SinglePut", func(t *testing.T) {
		env := newTestEnv(t)
		env.client.fail("put", backend.Failed("put", "a.txt", fmt.Errorf("disk full")))

		err := env.fs.WriteFile(t.Context(), "a.txt", data.NewBinaryContent([]byte("x"), ""))
		require.ErrorIs(t, err, ferrors.ErrPersistence)
		assert.NotErrorIs(t, err, ferrors.ErrStreamWrite)
	})
}

func TestDeleteFile_Failures(t *testing.T) {
	t.Run("InvalidPath", func(t *testing.T) {
		env := newTestEnv(t)

		assert.False(t, env.fs.DeleteFile(t.Context(), "../x"))
		assert.Empty(t, env.client.Calls())
	})

	t.Run("Transport", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := t.Context()

		require.NoError(t, env.fs.WriteFile(ctx, "a.txt", data.NewBinaryContent([]byte("x"), "")))
		env.client.fail("delete", errors.New("throttled"))

		assert.False(t, env.fs.DeleteFile(ctx, "a.txt"))
		assert.True(t, containsWarning(env.logs.String()))
	})

	t.Run("Unconfirmed", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := t.Context()

		require.NoError(t, env.fs.WriteFile(ctx, "a.txt", data.NewBinaryContent([]byte("x"), "")))
		env.client.dropDeletes = true
		env.client.Reset()

		assert.False(t, env.fs.DeleteFile(ctx, "a.txt"))
		assert.Equal(t, []string{"head", "delete", "head"}, env.client.Calls())
	})
}

func TestWriteFile_ObjectSizeLimit(t *testing.T) {
	store := memory.NewMemoryBackend()
	require.NoError(t, store.Open(t.Context()))

	client := &recordingClient{
		ObjectClient:  store,
		failures:      make(map[string]error),
		maxObjectSize: 4,
	}
	fs := NewWithClient(NewLocationBuilder("localhost").WithBucket(testBucket).Build(), client)

	err := fs.WriteFile(t.Context(), "big.txt", data.NewBinaryContent([]byte("12345"), ""))
	require.ErrorIs(t, err, ferrors.ErrPersistence)
	assert.ErrorIs(t, err, backend.ErrTooLarge)
	assert.Zero(t, client.Count("put"))

	require.NoError(t, fs.WriteFile(t.Context(), "small.txt", data.NewBinaryContent([]byte("1234"), "")))
}

func TestWriteFile_EncodedSizeLimit(t *testing.T) {
	env := newTestEnv(t)
	env.client.fail("put", backend.TooLarge("put", "big.txt", 600*1024, 512*1024))

	// Without an advertised limit the transport decides
	err := env.fs.WriteFile(t.Context(), "big.txt", data.NewBinaryContent(bytes.Repeat([]byte("a"), 1024*1024), ""))
	require.ErrorIs(t, err, ferrors.ErrPersistence)
	assert.ErrorIs(t, err, backend.ErrTooLarge)
	assert.Equal(t, 1, env.client.Count("put"))
}
