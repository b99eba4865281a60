// Package config loads the pipeline configuration from environment
// variables.
package config

import (
	"os"

	"github.com/TrinityDev369/thumbgen/providers/bfl"
	"github.com/TrinityDev369/thumbgen/providers/reve"
	s3store "github.com/TrinityDev369/thumbgen/storage/s3"
)

// Environment variable names.
const (
	EnvBFLAPIKey     = "BFL_API_KEY"
	EnvFluxAPIRegion = "FLUX_API_REGION"
	EnvReveAPIKey    = "REVE_API_KEY"

	EnvS3Endpoint        = "S3_ENDPOINT"
	EnvS3Region          = "S3_REGION"
	EnvS3AccessKeyID     = "S3_ACCESS_KEY_ID"
	EnvS3SecretAccessKey = "S3_SECRET_ACCESS_KEY"
	EnvS3Bucket          = "S3_BUCKET"

	EnvDatabaseURL = "DATABASE_URL"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultFluxRegion = "global"
	DefaultS3Region   = "us-east-1"
	DefaultS3Bucket   = "thumbnails"
)

// Config is the full environment-derived configuration. Empty provider keys
// mean the corresponding backend is unconfigured; the pipeline rejects
// requests selecting it.
type Config struct {
	BFL  bfl.Config
	Reve reve.Config
	S3   s3store.Config

	DatabaseURL string
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		BFL: bfl.Config{
			APIKey: os.Getenv(EnvBFLAPIKey),
			Region: getEnv(EnvFluxAPIRegion, DefaultFluxRegion),
		},
		Reve: reve.Config{
			APIKey: os.Getenv(EnvReveAPIKey),
		},
		S3: s3store.Config{
			Endpoint:        os.Getenv(EnvS3Endpoint),
			Region:          getEnv(EnvS3Region, DefaultS3Region),
			AccessKeyID:     os.Getenv(EnvS3AccessKeyID),
			SecretAccessKey: os.Getenv(EnvS3SecretAccessKey),
			Bucket:          getEnv(EnvS3Bucket, DefaultS3Bucket),
		},
		DatabaseURL: os.Getenv(EnvDatabaseURL),
	}
}

// getEnv returns the variable's value or fallback when unset or empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
