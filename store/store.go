package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TrinityDev369/thumbgen/logger"
)

// Pagination defaults for List.
const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// pgUniqueViolation is the PostgreSQL error code for unique-constraint
// violations.
const pgUniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the store uses. Tests substitute a mock.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store persists thumbnails and their version history.
// Safe for shared use across goroutines.
type Store struct {
	db DB
}

// New creates a Store on an existing connection pool (or mock).
func New(db DB) *Store {
	return &Store{db: db}
}

// Connect opens a pgx connection pool for the given database URL and returns
// a Store on it. The caller owns the pool and closes it on shutdown.
func Connect(ctx context.Context, databaseURL string) (*Store, *pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("store: failed to parse database URL: %w", err)
	}
	poolConfig.MaxConns = 10
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("store: failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("store: failed to ping database: %w", err)
	}

	return New(pool), pool, nil
}

// InitSchema applies the expected DDL. Idempotent.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("store: failed to apply schema: %w", err)
	}
	return nil
}

const thumbnailColumns = `id, readable_id, prompt, enhanced_prompt, preset, width, height, model, seed, ` +
	`s3_bucket, s3_key, file_size_bytes, generation_time_ms, cost_cents, version, parent_id, ` +
	`feedback, metadata, generation_params, generated_by, created_at, updated_at, deleted_at`

const versionColumns = `thumbnail_id, version, s3_key, s3_bucket, file_size_bytes, prompt, feedback, created_at`

// row is satisfied by both pgx.Row and pgx.Rows.
type row interface {
	Scan(dest ...any) error
}

// scanThumbnail maps one row onto a Thumbnail. The destination list matches
// thumbnailColumns one-to-one; schema drift fails loudly at scan time.
func scanThumbnail(r row) (*Thumbnail, error) {
	var t Thumbnail
	var metadata, params []byte

	err := r.Scan(
		&t.ID, &t.ReadableID, &t.Prompt, &t.EnhancedPrompt, &t.Preset,
		&t.Width, &t.Height, &t.Model, &t.Seed,
		&t.S3Bucket, &t.S3Key, &t.FileSizeBytes, &t.GenerationTimeMs, &t.CostCents,
		&t.Version, &t.ParentID, &t.Feedback, &metadata, &params,
		&t.GeneratedBy, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
			return nil, fmt.Errorf("store: corrupt metadata column for %s: %w", t.ID, err)
		}
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &t.GenerationParams); err != nil {
			return nil, fmt.Errorf("store: corrupt generation_params column for %s: %w", t.ID, err)
		}
	}
	return &t, nil
}

func scanVersion(r row) (*Version, error) {
	var v Version
	err := r.Scan(
		&v.ThumbnailID, &v.Version, &v.S3Key, &v.S3Bucket,
		&v.FileSizeBytes, &v.Prompt, &v.Feedback, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// marshalJSON renders a map for a JSONB column; nil maps become SQL NULL.
func marshalJSON(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

const createSQL = `INSERT INTO generated_thumbnails (` + thumbnailColumns + `) ` +
	`VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23) ` +
	`RETURNING ` + thumbnailColumns

// Create inserts a new thumbnail at version 1 with a freshly drawn readable
// id, retrying the draw on unique-constraint collisions.
func (s *Store) Create(ctx context.Context, params CreateParams) (*Thumbnail, error) {
	metadata, err := marshalJSON(params.Metadata)
	if err != nil {
		return nil, fmt.Errorf("store: failed to marshal metadata: %w", err)
	}
	genParams, err := marshalJSON(params.GenerationParams)
	if err != nil {
		return nil, fmt.Errorf("store: failed to marshal generation params: %w", err)
	}

	generatedBy := params.GeneratedBy
	if generatedBy == "" {
		generatedBy = "user"
	}

	for attempt := 0; attempt < maxReadableIDAttempts; attempt++ {
		now := time.Now().UTC()
		readableID := NewReadableID()

		t, err := scanThumbnail(s.db.QueryRow(ctx, createSQL,
			uuid.NewString(), readableID,
			params.Prompt, params.EnhancedPrompt, params.Preset,
			params.Width, params.Height, params.Model, params.Seed,
			params.S3Bucket, params.S3Key, params.FileSizeBytes,
			params.GenerationTimeMs, params.CostCents,
			1, params.ParentID, nil, metadata, genParams,
			generatedBy, now, now, nil,
		))
		if err == nil {
			return t, nil
		}
		if isUniqueViolation(err) {
			logger.Debug("readable id collision, retrying", "readable_id", readableID, "attempt", attempt+1)
			continue
		}
		return nil, fmt.Errorf("store: create failed: %w", err)
	}

	return nil, ErrReadableIDExhausted
}

const getSQL = `SELECT ` + thumbnailColumns + ` FROM generated_thumbnails ` +
	`WHERE id = $1 AND deleted_at IS NULL`

// GetByID fetches a thumbnail. Soft-deleted rows report ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (*Thumbnail, error) {
	t, err := scanThumbnail(s.db.QueryRow(ctx, getSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get failed: %w", err)
	}
	return t, nil
}

const versionsSQL = `SELECT ` + versionColumns + ` FROM thumbnail_versions ` +
	`WHERE thumbnail_id = $1 ORDER BY version DESC`

// GetWithVersions fetches a thumbnail together with its version history,
// newest version first.
func (s *Store) GetWithVersions(ctx context.Context, id string) (*Thumbnail, []Version, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.db.Query(ctx, versionsSQL, id)
	if err != nil {
		return nil, nil, fmt.Errorf("store: fetching versions failed: %w", err)
	}
	defer rows.Close()

	var versions []Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("store: scanning version failed: %w", err)
		}
		versions = append(versions, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("store: fetching versions failed: %w", err)
	}
	return t, versions, nil
}

const updateSQL = `UPDATE generated_thumbnails SET ` +
	`feedback = COALESCE($2, feedback), ` +
	`metadata = COALESCE($3, metadata), ` +
	`updated_at = $4 ` +
	`WHERE id = $1 AND deleted_at IS NULL ` +
	`RETURNING ` + thumbnailColumns

// Update partially updates the annotation fields. created_at is immutable;
// updated_at is refreshed. Missing or tombstoned rows report ErrNotFound.
func (s *Store) Update(ctx context.Context, id string, params UpdateParams) (*Thumbnail, error) {
	metadata, err := marshalJSON(params.Metadata)
	if err != nil {
		return nil, fmt.Errorf("store: failed to marshal metadata: %w", err)
	}

	t, err := scanThumbnail(s.db.QueryRow(ctx, updateSQL, id, params.Feedback, metadata, time.Now().UTC()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: update failed: %w", err)
	}
	return t, nil
}

const deleteSQL = `UPDATE generated_thumbnails SET deleted_at = $2, updated_at = $2 ` +
	`WHERE id = $1 AND deleted_at IS NULL`

// Delete tombstones a thumbnail and reports whether a row was affected.
// A second delete of the same row returns false.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := s.db.Exec(ctx, deleteSQL, id, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("store: delete failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns one page of non-deleted thumbnails matching the filters,
// sorted by created_at descending, along with the pre-pagination total.
func (s *Store) List(ctx context.Context, filters ListFilters, page, limit int) (*ListResult, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	where, args := buildFilters(filters)

	var total int
	countSQL := `SELECT count(*) FROM generated_thumbnails ` + where
	if err := s.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("store: list count failed: %w", err)
	}

	pageSQL := fmt.Sprintf(`SELECT %s FROM generated_thumbnails %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		thumbnailColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := s.db.Query(ctx, pageSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list failed: %w", err)
	}
	defer rows.Close()

	items := make([]Thumbnail, 0, limit)
	for rows.Next() {
		t, err := scanThumbnail(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scanning list row failed: %w", err)
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list failed: %w", err)
	}

	return &ListResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// buildFilters renders the WHERE clause for List. Filters compose with AND.
func buildFilters(filters ListFilters) (string, []any) {
	clauses := []string{"deleted_at IS NULL"}
	var args []any

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filters.Preset != "" {
		add("preset = $%d", filters.Preset)
	}
	if filters.Model != "" {
		add("model = $%d", filters.Model)
	}
	if filters.GeneratedBy != "" {
		add("generated_by = $%d", filters.GeneratedBy)
	}
	if filters.Search != "" {
		args = append(args, "%"+escapeLike(filters.Search)+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(prompt ILIKE $%d OR enhanced_prompt ILIKE $%d)", n, n))
	}
	if filters.DateFrom != nil {
		add("created_at >= $%d", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		add("created_at <= $%d", *filters.DateTo)
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// likeEscaper neutralizes LIKE wildcards so searches match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

const lockSQL = `SELECT ` + thumbnailColumns + ` FROM generated_thumbnails ` +
	`WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`

const insertVersionSQL = `INSERT INTO thumbnail_versions (` + versionColumns + `) ` +
	`VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING ` + versionColumns

const applyVersionSQL = `UPDATE generated_thumbnails SET ` +
	`s3_key = $2, s3_bucket = $3, file_size_bytes = $4, ` +
	`prompt = COALESCE($5, prompt), ` +
	`generation_time_ms = COALESCE($6, generation_time_ms), ` +
	`cost_cents = COALESCE($7, cost_cents), ` +
	`seed = COALESCE($8, seed), ` +
	`version = version + 1, ` +
	`updated_at = $9 ` +
	`WHERE id = $1 ` +
	`RETURNING ` + thumbnailColumns

// CreateVersion atomically archives the thumbnail's current artifact into the
// version table and applies the new one. The row lock taken first serializes
// concurrent version creations on the same thumbnail, so observers always see
// monotonic versions. After the call, version equals the prior version + 1
// and the inserted version row holds the pre-update artifact.
func (s *Store) CreateVersion(ctx context.Context, id string, params VersionParams) (*Thumbnail, *Version, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("store: begin failed: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	current, err := scanThumbnail(tx.QueryRow(ctx, lockSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("store: locking thumbnail failed: %w", err)
	}

	now := time.Now().UTC()

	archived, err := scanVersion(tx.QueryRow(ctx, insertVersionSQL,
		current.ID, current.Version,
		current.S3Key, current.S3Bucket, current.FileSizeBytes,
		current.Prompt, params.Feedback, now,
	))
	if err != nil {
		return nil, nil, fmt.Errorf("store: archiving version failed: %w", err)
	}

	updated, err := scanThumbnail(tx.QueryRow(ctx, applyVersionSQL,
		id, params.NewS3Key, params.NewS3Bucket, params.NewFileSizeBytes,
		params.NewPrompt, params.GenerationTimeMs, params.CostCents, params.Seed,
		now,
	))
	if err != nil {
		return nil, nil, fmt.Errorf("store: applying new version failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("store: commit failed: %w", err)
	}

	logger.Debug("version created", "thumbnail_id", id, "version", updated.Version)
	return updated, archived, nil
}

const statsTotalsSQL = `SELECT count(*), COALESCE(sum(file_size_bytes), 0), COALESCE(sum(cost_cents), 0) ` +
	`FROM generated_thumbnails WHERE deleted_at IS NULL`

const statsByPresetSQL = `SELECT COALESCE(preset, 'custom'), count(*) ` +
	`FROM generated_thumbnails WHERE deleted_at IS NULL GROUP BY 1`

const statsByModelSQL = `SELECT model, count(*) ` +
	`FROM generated_thumbnails WHERE deleted_at IS NULL GROUP BY 1`

// GetStats aggregates over non-deleted rows.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByPreset: make(map[string]int),
		ByModel:  make(map[string]int),
	}

	if err := s.db.QueryRow(ctx, statsTotalsSQL).Scan(&stats.Total, &stats.TotalSizeBytes, &stats.TotalCostCents); err != nil {
		return nil, fmt.Errorf("store: stats totals failed: %w", err)
	}

	if err := s.scanGroupCounts(ctx, statsByPresetSQL, stats.ByPreset); err != nil {
		return nil, err
	}
	if err := s.scanGroupCounts(ctx, statsByModelSQL, stats.ByModel); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) scanGroupCounts(ctx context.Context, sql string, dest map[string]int) error {
	rows, err := s.db.Query(ctx, sql)
	if err != nil {
		return fmt.Errorf("store: stats group query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("store: scanning stats row failed: %w", err)
		}
		dest[key] = count
	}
	return rows.Err()
}
