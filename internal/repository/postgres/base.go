package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/pkg/metrics"
)

const uniqueViolation = "23505"

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// WithMetrics returns a copy that reports operation counts and latency to m.
func (r BaseRepository) WithMetrics(m *metrics.Metrics) BaseRepository {
	r.metrics = m
	return r
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *BaseRepository) observe(operation string, start time.Time, err error) {
	if r.metrics == nil {
		return
	}
	status := "success"
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		status = "error"
	}
	r.metrics.StorageOperations.WithLabelValues(operation, status).Inc()
	r.metrics.StorageLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return model.ErrDuplicate
	}
	return err
}

// document stores an entity as a JSONB blob next to the few columns that
// queries filter on. Services do the rest of the filtering in memory.
type document[T any] struct {
	BaseRepository
	table   string
	columns []string
	values  func(*T) []interface{}
	base    func(*T) *model.Base
	encode  func(*T) ([]byte, error)
	decode  func([]byte) (*T, error)
}

func newDocument[T any](base BaseRepository, table string, b func(*T) *model.Base, columns []string, values func(*T) []interface{}) *document[T] {
	return &document[T]{
		BaseRepository: base,
		table:          table,
		columns:        columns,
		values:         values,
		base:           b,
		encode: func(v *T) ([]byte, error) {
			return json.Marshal(v)
		},
		decode: func(data []byte) (*T, error) {
			v := new(T)
			if err := json.Unmarshal(data, v); err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

func (d *document[T]) args(v *T) ([]interface{}, error) {
	data, err := d.encode(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s row: %w", d.table, err)
	}
	b := d.base(v)
	args := []interface{}{b.ID, data, b.CreatedAt, b.UpdatedAt}
	if d.values != nil {
		args = append(args, d.values(v)...)
	}
	return args, nil
}

func (d *document[T]) insert(ctx context.Context, v *T) (err error) {
	defer func(start time.Time) { d.observe(d.table+".insert", start, err) }(time.Now())

	args, err := d.args(v)
	if err != nil {
		return err
	}

	cols := append([]string{"id", "data", "created_at", "updated_at"}, d.columns...)
	marks := make([]string, len(cols))
	for i := range cols {
		marks[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.table, strings.Join(cols, ", "), strings.Join(marks, ", "))

	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		return mapError(err)
	}
	return nil
}

func (d *document[T]) update(ctx context.Context, v *T) (err error) {
	defer func(start time.Time) { d.observe(d.table+".update", start, err) }(time.Now())

	args, err := d.args(v)
	if err != nil {
		return err
	}

	// created_at never changes
	args = append(args[:2], args[3:]...)
	sets := []string{"data = $2", "updated_at = $3"}
	for i, col := range d.columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+4))
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $1", d.table, strings.Join(sets, ", "))

	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}

func (d *document[T]) get(ctx context.Context, id uuid.UUID) (*T, error) {
	return d.first(ctx, "id = $1", id)
}

func (d *document[T]) first(ctx context.Context, where string, args ...interface{}) (_ *T, err error) {
	defer func(start time.Time) { d.observe(d.table+".get", start, err) }(time.Now())

	var data []byte
	query := fmt.Sprintf("SELECT data FROM %s WHERE %s LIMIT 1", d.table, where)
	if err := d.db.GetContext(ctx, &data, query, args...); err != nil {
		return nil, mapError(err)
	}
	return d.decode(data)
}

// list returns matching rows ordered by creation time. An empty where
// selects everything.
func (d *document[T]) list(ctx context.Context, where string, args ...interface{}) (_ []*T, err error) {
	defer func(start time.Time) { d.observe(d.table+".list", start, err) }(time.Now())

	query := "SELECT data FROM " + d.table
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY created_at, id"

	var rows [][]byte
	if err := d.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", d.table, err)
	}

	out := make([]*T, 0, len(rows))
	for _, data := range rows {
		v, err := d.decode(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s row: %w", d.table, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (d *document[T]) remove(ctx context.Context, id uuid.UUID) (err error) {
	defer func(start time.Time) { d.observe(d.table+".delete", start, err) }(time.Now())

	res, err := d.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", d.table), id)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}
