package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tesoreria/backend/internal/infrastructure/config"
)

func TestNewS3DocumentArchive_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3DocumentArchive(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		cfg := &config.StorageConfig{
			AccessKey: "test-key",
			SecretKey: "test-secret",
		}
		_, err := NewS3DocumentArchive(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing access key returns error", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:    "test-bucket",
			SecretKey: "test-secret",
		}
		_, err := NewS3DocumentArchive(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key is required")
	})

	t.Run("missing secret key returns error", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:    "test-bucket",
			AccessKey: "test-key",
		}
		_, err := NewS3DocumentArchive(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key is required")
	})

	t.Run("valid config creates archive", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:            "test-bucket",
			AccessKey:         "test-key",
			SecretKey:         "test-secret",
			Region:            "us-east-1",
			Endpoint:          "http://localhost:9000",
			UsePathStyle:      true,
			PresignExpiration: 15 * time.Minute,
		}
		archive, err := NewS3DocumentArchive(cfg, WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		require.NotNil(t, archive)
		assert.Equal(t, "test-bucket", archive.GetBucket())
		assert.Equal(t, 15*time.Minute, archive.presignExpiration)
	})

	t.Run("endpoint without protocol gets a scheme", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:    "test-bucket",
			AccessKey: "test-key",
			SecretKey: "test-secret",
			Endpoint:  "minio.internal:9000",
			UseSSL:    true,
		}
		archive, err := NewS3DocumentArchive(cfg)
		require.NoError(t, err)
		require.NotNil(t, archive)
	})

	t.Run("presign expiration defaults when unset", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:    "test-bucket",
			AccessKey: "test-key",
			SecretKey: "test-secret",
		}
		archive, err := NewS3DocumentArchive(cfg)
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, archive.presignExpiration)
	})

	t.Run("presign expiration option overrides config", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:            "test-bucket",
			AccessKey:         "test-key",
			SecretKey:         "test-secret",
			PresignExpiration: 15 * time.Minute,
		}
		archive, err := NewS3DocumentArchive(cfg, WithPresignExpiration(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, archive.presignExpiration)
	})
}

func TestObjectKey(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025/03/recibo_F-2025-0001.pdf", objectKey("recibo_F-2025-0001.pdf", now))

	december := time.Date(2024, time.December, 31, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "2024/12/corte_2024-12-01_a_2024-12-31.pdf", objectKey("corte_2024-12-01_a_2024-12-31.pdf", december))
}

func TestValidFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{"simple pdf name", "recibo_F-2025-0001.pdf", true},
		{"empty", "", false},
		{"forward slash", "2025/recibo.pdf", false},
		{"backslash", "2025\\recibo.pdf", false},
		{"parent traversal", "..recibo.pdf", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validFilename(tt.filename))
		})
	}
}
