// Package store provides versioned relational persistence for generated
// thumbnails on PostgreSQL.
//
// A thumbnail row carries the current artifact; every superseding generation
// archives the prior artifact into the thumbnail_versions table under a
// transaction, so a thumbnail at version N always has N-1 version rows.
// Deletes are soft: tombstoned rows (and, transitively, their version
// history) are invisible to the public operations.
package store

import (
	"errors"
	"time"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a thumbnail does not exist or has been
	// soft-deleted.
	ErrNotFound = errors.New("thumbnail not found")

	// ErrReadableIDExhausted is returned when readable id generation keeps
	// colliding past the retry budget.
	ErrReadableIDExhausted = errors.New("could not generate a unique readable id")
)

// Thumbnail is the persisted entity.
type Thumbnail struct {
	ID         string `json:"id"`
	ReadableID string `json:"readable_id"`

	Prompt         string  `json:"prompt"`
	EnhancedPrompt *string `json:"enhanced_prompt,omitempty"`
	Preset         *string `json:"preset,omitempty"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Model          string  `json:"model"`
	Seed           *int64  `json:"seed,omitempty"`

	S3Bucket      string `json:"s3_bucket"`
	S3Key         string `json:"s3_key"`
	FileSizeBytes int64  `json:"file_size_bytes"`

	GenerationTimeMs int64 `json:"generation_time_ms"`
	CostCents        int   `json:"cost_cents"`

	// Version starts at 1 and equals 1 + the count of version-history rows.
	Version  int     `json:"version"`
	ParentID *string `json:"parent_id,omitempty"`

	Feedback         *string        `json:"feedback,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	GenerationParams map[string]any `json:"generation_params,omitempty"`

	GeneratedBy string `json:"generated_by"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Version is an immutable record of a superseded artifact.
type Version struct {
	ThumbnailID   string    `json:"thumbnail_id"`
	Version       int       `json:"version"`
	S3Key         string    `json:"s3_key"`
	S3Bucket      string    `json:"s3_bucket"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	Prompt        string    `json:"prompt"`
	Feedback      *string   `json:"feedback,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateParams are the inputs to Create. Zero-value GeneratedBy defaults to
// "user".
type CreateParams struct {
	Prompt           string
	EnhancedPrompt   *string
	Preset           *string
	Width            int
	Height           int
	Model            string
	Seed             *int64
	S3Bucket         string
	S3Key            string
	FileSizeBytes    int64
	GenerationTimeMs int64
	CostCents        int
	ParentID         *string
	Metadata         map[string]any
	GenerationParams map[string]any
	GeneratedBy      string
}

// UpdateParams are the partially-applied fields of Update. Nil fields are
// left untouched.
type UpdateParams struct {
	Feedback *string
	Metadata map[string]any
}

// VersionParams describe a new artifact superseding the current one.
// Nil optionals keep the thumbnail's current value.
type VersionParams struct {
	NewS3Key         string
	NewS3Bucket      string
	NewFileSizeBytes int64
	NewPrompt        *string
	Feedback         *string
	GenerationTimeMs *int64
	CostCents        *int
	Seed             *int64
}

// ListFilters compose with AND; zero values are ignored.
type ListFilters struct {
	Preset      string
	Model       string
	GeneratedBy string

	// Search matches case-insensitively against prompt or enhanced prompt.
	Search string

	// DateFrom and DateTo are inclusive bounds on created_at.
	DateFrom *time.Time
	DateTo   *time.Time
}

// ListResult is one page of thumbnails plus the pre-pagination total.
type ListResult struct {
	Items []Thumbnail `json:"items"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// Stats aggregates over non-deleted rows. Thumbnails without a preset are
// reported under the "custom" key.
type Stats struct {
	Total          int            `json:"total"`
	ByPreset       map[string]int `json:"by_preset"`
	ByModel        map[string]int `json:"by_model"`
	TotalSizeBytes int64          `json:"total_size_bytes"`
	TotalCostCents int64          `json:"total_cost_cents"`
}
