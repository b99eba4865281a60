package store

// Schema is the DDL the store expects. There is no migration tooling here;
// callers apply it (or an equivalent) before use.
const Schema = `
CREATE TABLE IF NOT EXISTS generated_thumbnails (
	id                  TEXT PRIMARY KEY,
	readable_id         TEXT NOT NULL,
	prompt              TEXT NOT NULL,
	enhanced_prompt     TEXT,
	preset              TEXT,
	width               INTEGER NOT NULL,
	height              INTEGER NOT NULL,
	model               TEXT NOT NULL,
	seed                BIGINT,
	s3_bucket           TEXT NOT NULL DEFAULT '',
	s3_key              TEXT NOT NULL DEFAULT '',
	file_size_bytes     BIGINT NOT NULL DEFAULT 0,
	generation_time_ms  BIGINT NOT NULL DEFAULT 0,
	cost_cents          INTEGER NOT NULL DEFAULT 0,
	version             INTEGER NOT NULL DEFAULT 1,
	parent_id           TEXT,
	feedback            TEXT,
	metadata            JSONB,
	generation_params   JSONB,
	generated_by        TEXT NOT NULL DEFAULT 'user',
	created_at          TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL,
	deleted_at          TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS generated_thumbnails_readable_id_live
	ON generated_thumbnails (readable_id) WHERE deleted_at IS NULL;

CREATE INDEX IF NOT EXISTS generated_thumbnails_live
	ON generated_thumbnails (created_at DESC) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS thumbnail_versions (
	thumbnail_id        TEXT NOT NULL REFERENCES generated_thumbnails (id),
	version             INTEGER NOT NULL,
	s3_key              TEXT NOT NULL,
	s3_bucket           TEXT NOT NULL,
	file_size_bytes     BIGINT NOT NULL DEFAULT 0,
	prompt              TEXT NOT NULL,
	feedback            TEXT,
	created_at          TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (thumbnail_id, version)
);
`
