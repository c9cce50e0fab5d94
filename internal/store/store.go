// Package store persists published part specifications in PostgreSQL.
//
// One row per part code holds the latest single-series export. Publishing
// again replaces the row and stamps a fresh revision id.
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
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/partspec/internal/core"
	"github.com/JonMunkholm/partspec/internal/logging"
)

var (
	// ErrNotFound is returned when no active row exists for a part code.
	ErrNotFound = errors.New("part spec not found")

	// ErrMissingCode is returned when a part spec has no code to key on.
	ErrMissingCode = errors.New("missing part code")
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PartSpec is one stored specification.
type PartSpec struct {
	PartCode  string          `json:"part_code"`
	PartType  string          `json:"part_type"`
	PartName  string          `json:"part_name"`
	SpecData  json.RawMessage `json:"spec_data"`
	Revision  uuid.UUID       `json:"revision"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS part_spec (
    part_code  TEXT PRIMARY KEY,
    part_type  TEXT NOT NULL DEFAULT '',
    part_name  TEXT NOT NULL DEFAULT '',
    spec_data  JSONB NOT NULL,
    revision   UUID NOT NULL,
    active     BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS part_spec_type_name_idx ON part_spec (part_type, part_name);
`

const upsertSQL = `
INSERT INTO part_spec (part_code, part_type, part_name, spec_data, revision, active)
VALUES ($1, $2, $3, $4, $5, TRUE)
ON CONFLICT (part_code) DO UPDATE SET
    part_type  = EXCLUDED.part_type,
    part_name  = EXCLUDED.part_name,
    spec_data  = EXCLUDED.spec_data,
    revision   = EXCLUDED.revision,
    active     = TRUE,
    updated_at = now()
RETURNING created_at, updated_at`

const selectColumns = `part_code, part_type, part_name, spec_data, revision, active, created_at, updated_at`

const getSQL = `SELECT ` + selectColumns + ` FROM part_spec WHERE part_code = $1 AND active`

const listSQL = `SELECT ` + selectColumns + ` FROM part_spec WHERE active ORDER BY part_type, part_name`

const deactivateSQL = `UPDATE part_spec SET active = FALSE, updated_at = now() WHERE part_code = $1 AND active`

// Repository reads and writes part_spec rows.
type Repository struct {
	db DBTX
}

// New creates a Repository over db.
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the part_spec table if it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Upsert inserts or replaces the row of spec.PartCode under a new revision
// and reactivates it.
func (r *Repository) Upsert(ctx context.Context, spec PartSpec) (PartSpec, error) {
	spec.PartCode = strings.TrimSpace(spec.PartCode)
	if spec.PartCode == "" {
		return PartSpec{}, fmt.Errorf("upsert %q: %w", spec.PartName, ErrMissingCode)
	}

	spec.Revision = uuid.New()
	spec.Active = true

	var created, updated pgtype.Timestamptz
	err := r.db.QueryRow(ctx, upsertSQL,
		spec.PartCode,
		spec.PartType,
		spec.PartName,
		[]byte(spec.SpecData),
		pgtype.UUID{Bytes: spec.Revision, Valid: true},
	).Scan(&created, &updated)
	if err != nil {
		return PartSpec{}, fmt.Errorf("upsert %s: %w", spec.PartCode, err)
	}

	spec.CreatedAt = created.Time
	spec.UpdatedAt = updated.Time
	return spec, nil
}

// Get returns the active row of code.
func (r *Repository) Get(ctx context.Context, code string) (PartSpec, error) {
	spec, err := scanPartSpec(r.db.QueryRow(ctx, getSQL, strings.TrimSpace(code)))
	if errors.Is(err, pgx.ErrNoRows) {
		return PartSpec{}, fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	if err != nil {
		return PartSpec{}, fmt.Errorf("get %s: %w", code, err)
	}
	return spec, nil
}

// List returns every active row ordered by part type and name.
func (r *Repository) List(ctx context.Context) ([]PartSpec, error) {
	rows, err := r.db.Query(ctx, listSQL)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	specs := []PartSpec{}
	for rows.Next() {
		spec, err := scanPartSpec(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		specs = append(specs, spec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return specs, nil
}

// Deactivate hides the row of code from Get and List.
func (r *Repository) Deactivate(ctx context.Context, code string) error {
	tag, err := r.db.Exec(ctx, deactivateSQL, strings.TrimSpace(code))
	if err != nil {
		return fmt.Errorf("deactivate %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	return nil
}

// Publish stores an exported series. It implements core.Publisher.
func (r *Repository) Publish(ctx context.Context, rec core.PublishRecord) error {
	spec, err := r.Upsert(ctx, PartSpec{
		PartCode: rec.PartCode,
		PartType: rec.PartType,
		PartName: rec.PartName,
		SpecData: json.RawMessage(rec.SpecData),
	})
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info("part spec published",
		"part_code", spec.PartCode,
		"part_name", spec.PartName,
		"revision", spec.Revision.String(),
		"bytes", len(rec.SpecData),
	)
	return nil
}

func scanPartSpec(row pgx.Row) (PartSpec, error) {
	var (
		spec     PartSpec
		data     []byte
		revision pgtype.UUID
		created  pgtype.Timestamptz
		updated  pgtype.Timestamptz
	)
	err := row.Scan(
		&spec.PartCode, &spec.PartType, &spec.PartName,
		&data, &revision, &spec.Active, &created, &updated,
	)
	if err != nil {
		return PartSpec{}, err
	}

	spec.SpecData = json.RawMessage(data)
	if revision.Valid {
		spec.Revision = uuid.UUID(revision.Bytes)
	}
	spec.CreatedAt = created.Time
	spec.UpdatedAt = updated.Time
	return spec, nil
}
