package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medistock/medistock/internal/platform/db"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id BIGSERIAL PRIMARY KEY,
		occurred_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		actor_id TEXT NOT NULL DEFAULT '',
		actor TEXT NOT NULL DEFAULT '',
		action TEXT NOT NULL,
		entity TEXT NOT NULL,
		entity_id TEXT NOT NULL DEFAULT '',
		request_id TEXT NOT NULL DEFAULT '',
		meta JSONB NOT NULL DEFAULT '{}'::jsonb
	)`,
	`CREATE INDEX IF NOT EXISTS audit_logs_occurred_at_idx ON audit_logs (occurred_at DESC)`,
	`CREATE INDEX IF NOT EXISTS audit_logs_entity_idx ON audit_logs (entity, entity_id)`,
}

const timelineWhere = `
WHERE ($1::timestamptz IS NULL OR occurred_at >= $1)
  AND ($2::timestamptz IS NULL OR occurred_at < $2)
  AND ($3::text IS NULL OR actor ILIKE '%' || $3 || '%')
  AND ($4::text IS NULL OR entity = $4)
  AND ($5::text IS NULL OR action = $5)`

const timelineColumns = `SELECT occurred_at, actor, action, entity, entity_id, meta FROM audit_logs`

// FilterParams narrow timeline queries. Invalid values are ignored.
type FilterParams struct {
	FromAt pgtype.Timestamptz
	ToAt   pgtype.Timestamptz
	Actor  pgtype.Text
	Entity pgtype.Text
	Action pgtype.Text
}

// WindowParams page through FilterParams results.
type WindowParams struct {
	FilterParams
	OffsetRows int32
	LimitRows  int32
}

// Row is one stored audit entry.
type Row struct {
	At       pgtype.Timestamptz
	Actor    string
	Action   string
	Entity   string
	EntityID string
	Meta     []byte
}

// Store persists audit entries in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the audit_logs table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("audit: migrate: %w", err)
			}
		}
		return nil
	})
}

// Insert stores entry.
func (s *Store) Insert(ctx context.Context, entry Entry) error {
	meta := []byte("{}")
	if len(entry.Meta) > 0 {
		encoded, err := json.Marshal(entry.Meta)
		if err != nil {
			return fmt.Errorf("audit: encode meta: %w", err)
		}
		meta = encoded
	}
	occurred := entry.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO audit_logs (occurred_at, actor_id, actor, action, entity, entity_id, request_id, meta)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		occurred, entry.ActorID, entry.Actor, entry.Action, entry.Entity, entry.EntityID, entry.RequestID, meta)
	if err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}
	return nil
}

// AuditTimelineWindow returns one page of entries, newest first.
func (s *Store) AuditTimelineWindow(ctx context.Context, arg WindowParams) ([]Row, error) {
	query := timelineColumns + timelineWhere + ` ORDER BY occurred_at DESC, id DESC OFFSET $6 LIMIT $7`
	rows, err := s.pool.Query(ctx, query, arg.FromAt, arg.ToAt, arg.Actor, arg.Entity, arg.Action, arg.OffsetRows, arg.LimitRows)
	if err != nil {
		return nil, fmt.Errorf("audit: timeline window: %w", err)
	}
	return collectRows(rows)
}

// AuditTimelineAll returns every matching entry, newest first.
func (s *Store) AuditTimelineAll(ctx context.Context, arg FilterParams) ([]Row, error) {
	query := timelineColumns + timelineWhere + ` ORDER BY occurred_at DESC, id DESC`
	rows, err := s.pool.Query(ctx, query, arg.FromAt, arg.ToAt, arg.Actor, arg.Entity, arg.Action)
	if err != nil {
		return nil, fmt.Errorf("audit: timeline all: %w", err)
	}
	return collectRows(rows)
}

// Prune deletes entries older than before and returns how many were removed.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM audit_logs WHERE occurred_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("audit: prune: %w", err)
	}
	return tag.RowsAffected(), nil
}

func collectRows(rows pgx.Rows) ([]Row, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Row, error) {
		var r Row
		err := row.Scan(&r.At, &r.Actor, &r.Action, &r.Entity, &r.EntityID, &r.Meta)
		return r, err
	})
}
