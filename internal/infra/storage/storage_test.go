package storage

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStorageRoundTrip(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	obj, err := s.Put(ctx, "health/1/a.json", []byte(`{"steps":1}`), "application/json")
	require.NoError(t, err)
	require.Equal(t, int64(11), obj.Size)
	require.NotEmpty(t, obj.ETag)

	reader, err := s.Get(ctx, "health/1/a.json")
	require.NoError(t, err)
	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.JSONEq(t, `{"steps":1}`, string(body))

	require.NoError(t, s.Delete(ctx, "health/1/a.json"))
	_, err = s.Get(ctx, "health/1/a.json")
	require.Error(t, err)
}

func TestSanitizeEndpoint(t *testing.T) {
	require.Equal(t, "minio:9000", sanitizeEndpoint("http://minio:9000"))
	require.Equal(t, "acct.r2.cloudflarestorage.com", sanitizeEndpoint(" https://acct.r2.cloudflarestorage.com/bucket "))
	require.Equal(t, "localhost:9000", sanitizeEndpoint("localhost:9000"))
}

func TestNewMinioStorageRequiresBucket(t *testing.T) {
	_, err := NewMinioStorage(MinioConfig{Endpoint: "localhost:9000"}, nil)
	require.Error(t, err)

	s, err := NewMinioStorage(MinioConfig{Endpoint: "http://localhost:9000", Bucket: "health", AccessKey: "a", SecretKey: "b"}, nil)
	require.NoError(t, err)
	require.Equal(t, "health", s.bucket)
}
