package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/modelmart/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		cfg := &config.StorageConfig{
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		}
		_, err := NewS3ObjectStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing access key returns error", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "test-bucket",
			SecretAccessKey: "test-secret",
		}
		_, err := NewS3ObjectStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key is required")
	})

	t.Run("missing secret key returns error", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:      "test-bucket",
			AccessKeyID: "test-key",
		}
		_, err := NewS3ObjectStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key is required")
	})

	t.Run("valid config creates storage", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			Region:          "us-east-1",
			Endpoint:        "http://localhost:9000",
			UsePathStyle:    true,
		}
		storage, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		require.NotNil(t, storage)
		assert.Equal(t, "test-bucket", storage.GetBucket())
		assert.Equal(t, 15*time.Minute, storage.presignExpiration)
	})

	t.Run("endpoint without scheme gets https prefix", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			Endpoint:        "minio.internal:9000",
		}
		storage, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, "https://minio.internal:9000", storage.endpoint)
	})

	t.Run("empty endpoint means AWS", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		}
		storage, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		require.NotNil(t, storage)
		assert.Empty(t, storage.endpoint)
	})
}

func TestS3ObjectStorageOptions(t *testing.T) {
	baseConfig := &config.StorageConfig{
		Bucket:          "test-bucket",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Endpoint:        "http://localhost:9000",
	}

	t.Run("WithLogger sets custom logger", func(t *testing.T) {
		logger := zaptest.NewLogger(t)
		storage, err := NewS3ObjectStorage(baseConfig, WithLogger(logger))
		require.NoError(t, err)
		assert.NotNil(t, storage.logger)
	})

	t.Run("WithPresignExpiration sets custom duration", func(t *testing.T) {
		storage, err := NewS3ObjectStorage(baseConfig, WithPresignExpiration(1*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1*time.Hour, storage.presignExpiration)
	})
}

func TestS3ObjectStorage_GenerateUploadURL(t *testing.T) {
	cfg := &config.StorageConfig{
		Bucket:          "test-bucket",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Endpoint:        "http://localhost:9000",
		UsePathStyle:    true,
	}
	storage, err := NewS3ObjectStorage(cfg)
	require.NoError(t, err)

	t.Run("empty storage key returns error", func(t *testing.T) {
		url, _, err := storage.GenerateUploadURL(context.Background(), "", "image/jpeg", 15*time.Minute)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage key is required")
		assert.Empty(t, url)
	})

	t.Run("generates valid presigned URL", func(t *testing.T) {
		url, expiresAt, err := storage.GenerateUploadURL(context.Background(), "models/dev/key.jpg", "image/jpeg", 15*time.Minute)
		require.NoError(t, err)
		assert.NotEmpty(t, url)
		assert.True(t, strings.Contains(url, "localhost:9000"))
		assert.True(t, strings.Contains(url, "test-bucket"))
		assert.True(t, strings.Contains(url, "models/dev/key.jpg") || strings.Contains(url, "models%2Fdev%2Fkey.jpg"))
		assert.True(t, expiresAt.After(time.Now()))
		assert.True(t, expiresAt.Before(time.Now().Add(16*time.Minute)))
	})

	t.Run("uses default expiration when not provided", func(t *testing.T) {
		url, expiresAt, err := storage.GenerateUploadURL(context.Background(), "models/dev/key.jpg", "image/jpeg", 0)
		require.NoError(t, err)
		assert.NotEmpty(t, url)
		assert.True(t, expiresAt.After(time.Now()))
	})
}

func TestS3ObjectStorage_PublicURL(t *testing.T) {
	t.Run("prefers configured public base URL", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			Endpoint:        "http://localhost:9000",
			UsePathStyle:    true,
			PublicBaseURL:   "https://cdn.modelmart.dev/",
		}
		storage, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.modelmart.dev/models/dev/key.jpg", storage.PublicURL("models/dev/key.jpg"))
	})

	t.Run("path style endpoint URL", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			Endpoint:        "http://localhost:9000",
			UsePathStyle:    true,
		}
		storage, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9000/test-bucket/models/dev/key.jpg", storage.PublicURL("models/dev/key.jpg"))
	})

	t.Run("virtual host style endpoint URL", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			Endpoint:        "https://s3.eu-west-1.amazonaws.com",
		}
		storage, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, "https://test-bucket.s3.eu-west-1.amazonaws.com/models/dev/key.jpg", storage.PublicURL("models/dev/key.jpg"))
	})

	t.Run("no endpoint falls back to AWS default", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		}
		storage, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, "https://test-bucket.s3.amazonaws.com/models/dev/key.jpg", storage.PublicURL("models/dev/key.jpg"))
	})

	t.Run("empty key returns empty string", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		}
		storage, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		assert.Empty(t, storage.PublicURL(""))
	})
}

func TestS3ObjectStorage_DeleteObject_ValidationOnly(t *testing.T) {
	cfg := &config.StorageConfig{
		Bucket:          "test-bucket",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Endpoint:        "http://localhost:9000",
	}
	storage, err := NewS3ObjectStorage(cfg)
	require.NoError(t, err)

	t.Run("empty storage key returns error", func(t *testing.T) {
		err := storage.DeleteObject(context.Background(), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage key is required")
	})
}

func TestS3ObjectStorage_ObjectExists_ValidationOnly(t *testing.T) {
	cfg := &config.StorageConfig{
		Bucket:          "test-bucket",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Endpoint:        "http://localhost:9000",
	}
	storage, err := NewS3ObjectStorage(cfg)
	require.NoError(t, err)

	t.Run("empty storage key returns error", func(t *testing.T) {
		exists, err := storage.ObjectExists(context.Background(), "")
		require.Error(t, err)
		assert.False(t, exists)
		assert.Contains(t, err.Error(), "storage key is required")
	})
}

func TestStubObjectStorage(t *testing.T) {
	stub := NewStubObjectStorage()

	t.Run("upload URL embeds the key", func(t *testing.T) {
		url, expiresAt, err := stub.GenerateUploadURL(context.Background(), "models/dev/key.png", "image/png", 15*time.Minute)
		require.NoError(t, err)
		assert.Contains(t, url, "models/dev/key.png")
		assert.True(t, expiresAt.After(time.Now()))
	})

	t.Run("public URL joins base and key", func(t *testing.T) {
		assert.Equal(t, "https://storage.example.com/models/dev/key.png", stub.PublicURL("models/dev/key.png"))
	})

	t.Run("delete requires a key", func(t *testing.T) {
		require.Error(t, stub.DeleteObject(context.Background(), ""))
		require.NoError(t, stub.DeleteObject(context.Background(), "models/dev/key.png"))
	})
}
