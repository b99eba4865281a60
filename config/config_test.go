package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		EnvBFLAPIKey, EnvFluxAPIRegion, EnvReveAPIKey,
		EnvS3Endpoint, EnvS3Region, EnvS3AccessKeyID, EnvS3SecretAccessKey, EnvS3Bucket,
		EnvDatabaseURL,
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Empty(t, cfg.BFL.APIKey)
	assert.Equal(t, DefaultFluxRegion, cfg.BFL.Region)
	assert.Empty(t, cfg.Reve.APIKey)
	assert.Equal(t, DefaultS3Region, cfg.S3.Region)
	assert.Equal(t, DefaultS3Bucket, cfg.S3.Bucket)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(EnvBFLAPIKey, "bfl-key")
	t.Setenv(EnvFluxAPIRegion, "eu")
	t.Setenv(EnvReveAPIKey, "reve-key")
	t.Setenv(EnvS3Endpoint, "minio.internal:9000")
	t.Setenv(EnvS3Region, "eu-west-1")
	t.Setenv(EnvS3AccessKeyID, "access")
	t.Setenv(EnvS3SecretAccessKey, "secret")
	t.Setenv(EnvS3Bucket, "media")
	t.Setenv(EnvDatabaseURL, "postgres://localhost/thumbgen")

	cfg := Load()
	assert.Equal(t, "bfl-key", cfg.BFL.APIKey)
	assert.Equal(t, "eu", cfg.BFL.Region)
	assert.Equal(t, "reve-key", cfg.Reve.APIKey)
	assert.Equal(t, "minio.internal:9000", cfg.S3.Endpoint)
	assert.Equal(t, "eu-west-1", cfg.S3.Region)
	assert.Equal(t, "media", cfg.S3.Bucket)
	assert.Equal(t, "postgres://localhost/thumbgen", cfg.DatabaseURL)
}
