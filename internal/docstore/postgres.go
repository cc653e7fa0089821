package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fooddrop/pkg/platform/sentinel"
	txcontext "fooddrop/pkg/platform/tx"
)

// Schema creates the documents table. Timestamps in data are TimeLayout
// strings, so jsonb ordering on them is chronological.
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection  TEXT        NOT NULL,
	id          TEXT        NOT NULL,
	data        JSONB       NOT NULL,
	create_time TIMESTAMPTZ NOT NULL,
	update_time TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_data_idx ON documents USING GIN (data jsonb_path_ops);
`

// notifyChannel carries "collection/id" change payloads.
const notifyChannel = "docstore_changes"

// PostgresStore keeps documents as JSONB rows and publishes changes with
// NOTIFY. Subscriptions need WithListenerDSN.
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
	hub     *notifyHub
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithListenerDSN enables Subscribe by opening a LISTEN connection to dsn.
func WithListenerDSN(dsn string) PostgresOption {
	return func(s *PostgresStore) {
		if dsn != "" {
			s.hub = newNotifyHub(s, dsn)
		}
	}
}

// WithTxTimeout bounds RunTransaction.
func WithTxTimeout(d time.Duration) PostgresOption {
	return func(s *PostgresStore) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db, timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureSchema applies Schema.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply docstore schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) NewID() string { return uuid.NewString() }

// serverTime returns the database clock; inside a transaction it is the
// transaction start time, so every write of a batch shares it.
func (s *PostgresStore) serverTime(ctx context.Context) (time.Time, error) {
	var now time.Time
	if err := txcontext.ExecerFrom(ctx, s.db).QueryRowContext(ctx, `SELECT now()`).Scan(&now); err != nil {
		return time.Time{}, fmt.Errorf("read server time: %w", err)
	}
	return now, nil
}

func (s *PostgresStore) Get(ctx context.Context, ref Ref) (*Snapshot, error) {
	query := `SELECT data, create_time, update_time FROM documents WHERE collection = $1 AND id = $2`
	if _, inTx := txcontext.From(ctx); inTx {
		query += ` FOR UPDATE`
	}
	var (
		raw  []byte
		snap = &Snapshot{Ref: ref, Exists: true}
	)
	err := txcontext.ExecerFrom(ctx, s.db).QueryRowContext(ctx, query, ref.Collection, ref.ID).
		Scan(&raw, &snap.CreateTime, &snap.UpdateTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", ref, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get document %s: %w", ref, err)
	}
	if err := json.Unmarshal(raw, &snap.Data); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", ref, err)
	}
	return snap, nil
}

func (s *PostgresStore) Create(ctx context.Context, ref Ref, data any) error {
	return s.RunTransaction(ctx, func(ctx context.Context) error {
		now, err := s.serverTime(ctx)
		if err != nil {
			return err
		}
		raw, err := encode(data, now)
		if err != nil {
			return err
		}
		res, err := txcontext.ExecerFrom(ctx, s.db).ExecContext(ctx, `
			INSERT INTO documents (collection, id, data, create_time, update_time)
			VALUES ($1, $2, $3, $4, $4)
			ON CONFLICT (collection, id) DO NOTHING`,
			ref.Collection, ref.ID, raw, now)
		if err != nil {
			return fmt.Errorf("create document %s: %w", ref, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("document %s: %w", ref, sentinel.ErrConflict)
		}
		return s.notify(ctx, ref)
	})
}

func (s *PostgresStore) Set(ctx context.Context, ref Ref, data any) error {
	return s.RunTransaction(ctx, func(ctx context.Context) error {
		now, err := s.serverTime(ctx)
		if err != nil {
			return err
		}
		raw, err := encode(data, now)
		if err != nil {
			return err
		}
		return s.upsert(ctx, ref, raw, now)
	})
}

func (s *PostgresStore) upsert(ctx context.Context, ref Ref, raw []byte, now time.Time) error {
	_, err := txcontext.ExecerFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, create_time, update_time)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (collection, id) DO UPDATE SET
			data = EXCLUDED.data,
			update_time = EXCLUDED.update_time`,
		ref.Collection, ref.ID, raw, now)
	if err != nil {
		return fmt.Errorf("set document %s: %w", ref, err)
	}
	return s.notify(ctx, ref)
}

// Update reads the row under lock, merges in Go and writes it back so dotted
// paths behave exactly like the memory implementation.
func (s *PostgresStore) Update(ctx context.Context, ref Ref, fields map[string]any) error {
	return s.RunTransaction(ctx, func(ctx context.Context) error {
		current, err := s.Get(ctx, ref)
		if err != nil {
			return err
		}
		now, err := s.serverTime(ctx)
		if err != nil {
			return err
		}
		patch, err := normalize(fields, now)
		if err != nil {
			return err
		}
		applyUpdate(current.Data, patch)
		raw, err := json.Marshal(current.Data)
		if err != nil {
			return fmt.Errorf("encode document %s: %w", ref, err)
		}
		return s.upsert(ctx, ref, raw, now)
	})
}

func (s *PostgresStore) Delete(ctx context.Context, ref Ref) error {
	return s.RunTransaction(ctx, func(ctx context.Context) error {
		res, err := txcontext.ExecerFrom(ctx, s.db).ExecContext(ctx,
			`DELETE FROM documents WHERE collection = $1 AND id = $2`, ref.Collection, ref.ID)
		if err != nil {
			return fmt.Errorf("delete document %s: %w", ref, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}
		return s.notify(ctx, ref)
	})
}

func (s *PostgresStore) Query(ctx context.Context, q Query) ([]*Snapshot, error) {
	now, err := s.serverTime(ctx)
	if err != nil {
		return nil, err
	}
	nq, err := q.normalized(now)
	if err != nil {
		return nil, err
	}
	stmt, args, err := buildQuery(nq)
	if err != nil {
		return nil, err
	}
	if _, inTx := txcontext.From(ctx); inTx {
		stmt += ` FOR UPDATE`
	}
	rows, err := txcontext.ExecerFrom(ctx, s.db).QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Collection, err)
	}
	defer rows.Close()

	var out []*Snapshot
	for rows.Next() {
		var (
			id   string
			raw  []byte
			snap = &Snapshot{Exists: true}
		)
		if err := rows.Scan(&id, &raw, &snap.CreateTime, &snap.UpdateTime); err != nil {
			return nil, fmt.Errorf("scan %s: %w", q.Collection, err)
		}
		if err := json.Unmarshal(raw, &snap.Data); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", q.Collection, id, err)
		}
		snap.Ref = Doc(q.Collection, id)
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", q.Collection, err)
	}
	return out, nil
}

var sqlOps = map[Op]string{
	OpEqual:          "=",
	OpLess:           "<",
	OpLessOrEqual:    "<=",
	OpGreater:        ">",
	OpGreaterOrEqual: ">=",
}

// buildQuery translates a normalized query into SQL over the JSONB column.
func buildQuery(q Query) (string, []any, error) {
	var (
		sb   strings.Builder
		args = []any{q.Collection}
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	path := func(field string) string {
		var b strings.Builder
		b.WriteString("(data")
		for _, seg := range strings.Split(field, ".") {
			b.WriteString(" -> " + arg(seg) + "::text")
		}
		b.WriteString(")")
		return b.String()
	}

	sb.WriteString(`SELECT id, data, create_time, update_time FROM documents WHERE collection = $1`)
	for _, f := range q.Filters {
		raw, err := json.Marshal(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("encode filter %s: %w", f.Field, err)
		}
		switch f.Op {
		case OpArrayContainsAny:
			fmt.Fprintf(&sb, ` AND EXISTS (
				SELECT 1 FROM jsonb_array_elements(
					CASE WHEN jsonb_typeof(%[1]s) = 'array' THEN %[1]s ELSE '[]'::jsonb END) AS e(v)
				WHERE %[2]s::jsonb @> jsonb_build_array(e.v))`, path(f.Field), arg(string(raw)))
		case OpEqual:
			fmt.Fprintf(&sb, ` AND %s = %s::jsonb`, path(f.Field), arg(string(raw)))
		default:
			op, ok := sqlOps[f.Op]
			if !ok {
				return "", nil, fmt.Errorf("unsupported operator %q", f.Op)
			}
			p, v := path(f.Field), arg(string(raw))
			fmt.Fprintf(&sb, ` AND jsonb_typeof(%[1]s) = jsonb_typeof(%[2]s::jsonb) AND %[1]s %[3]s %[2]s::jsonb`, p, v, op)
		}
	}
	for _, o := range q.Orders {
		fmt.Fprintf(&sb, ` AND %s IS NOT NULL`, path(o.Field))
	}
	if len(q.Orders) > 0 {
		sb.WriteString(` ORDER BY `)
		for i, o := range q.Orders {
			if i > 0 {
				sb.WriteString(", ")
			}
			dir := "ASC"
			if o.Direction == Desc {
				dir = "DESC"
			}
			fmt.Fprintf(&sb, `%s %s`, path(o.Field), dir)
		}
		sb.WriteString(", id ASC")
	} else {
		sb.WriteString(` ORDER BY id ASC`)
	}
	if q.Max > 0 {
		fmt.Fprintf(&sb, ` LIMIT %d`, q.Max)
	}
	return sb.String(), args, nil
}

// RunTransaction runs fn in a SQL transaction carried by ctx. Nested calls
// join the outer transaction.
func (s *PostgresStore) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txcontext.From(ctx); ok {
		return fn(ctx)
	}
	txCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sqlTx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(txcontext.WithTx(txCtx, sqlTx)); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// notify queues a change notification; Postgres delivers it on commit.
func (s *PostgresStore) notify(ctx context.Context, ref Ref) error {
	if _, err := txcontext.ExecerFrom(ctx, s.db).ExecContext(ctx,
		`SELECT pg_notify($1, $2)`, notifyChannel, ref.String()); err != nil {
		return fmt.Errorf("notify %s: %w", ref, err)
	}
	return nil
}

func (s *PostgresStore) Subscribe(ctx context.Context, ref Ref, onChange func(*Snapshot), onError func(error)) (func(), error) {
	if s.hub == nil {
		return nil, fmt.Errorf("subscriptions not configured: %w", sentinel.ErrUnavailable)
	}
	return s.hub.subscribe(ctx, ref, onChange, onError)
}

// Close stops the notification listener.
func (s *PostgresStore) Close() error {
	if s.hub != nil {
		return s.hub.close()
	}
	return nil
}

func encode(data any, now time.Time) ([]byte, error) {
	doc, err := normalize(data, now)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return raw, nil
}
