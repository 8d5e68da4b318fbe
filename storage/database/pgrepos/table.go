// Package pgrepos implements the gateway collections over postgres with sqlx.
package pgrepos

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/classpoll/core/gateway"
)

// ErrNoRow is returned by Update when no row has the given id.
var ErrNoRow = errors.New("no row with this id")

const undefinedTable = pq.ErrorCode("42P01")

// column maps a domain field to its wire column.
type column struct {
	name   string
	encode func(v interface{}) (interface{}, error)
}

// table is a gateway.Collection over one postgres table; R is its row struct.
type table[T any, R any] struct {
	db      *sqlx.DB
	name    string
	columns []string // "id" first
	orderBy string
	toRow   func(T) (R, error)
	fromRow func(R) (T, error)
	fields  map[string]column
}

func (t *table[T, R]) LoadAll(ctx context.Context) ([]T, error) {
	var rows []R
	if err := t.db.SelectContext(ctx, &rows, t.selectQuery()); err != nil {
		return nil, wrap(err, "loading %s", t.name)
	}
	items := make([]T, 0, len(rows))
	for _, row := range rows {
		item, err := t.fromRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding %s row", t.name)
		}
		items = append(items, item)
	}
	return items, nil
}

func (t *table[T, R]) Insert(ctx context.Context, item T) error {
	row, err := t.toRow(item)
	if err != nil {
		return errors.Wrapf(err, "encoding %s row", t.name)
	}
	if _, err = t.db.NamedExecContext(ctx, t.insertQuery(), row); err != nil {
		return wrap(err, "inserting into %s", t.name)
	}
	return nil
}

func (t *table[T, R]) Upsert(ctx context.Context, item T) error {
	row, err := t.toRow(item)
	if err != nil {
		return errors.Wrapf(err, "encoding %s row", t.name)
	}
	if _, err = t.db.NamedExecContext(ctx, t.upsertQuery(), row); err != nil {
		return wrap(err, "upserting into %s", t.name)
	}
	return nil
}

func (t *table[T, R]) Update(ctx context.Context, id string, fields gateway.Fields) error {
	query, args, err := t.updateQuery(id, fields)
	if err != nil {
		return err
	}
	res, err := t.db.NamedExecContext(ctx, query, args)
	if err != nil {
		return wrap(err, "updating %s", t.name)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrapf(ErrNoRow, "updating %s %s", t.name, id)
	}
	return nil
}

func (t *table[T, R]) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.name)
	if _, err := t.db.ExecContext(ctx, query, id); err != nil {
		return wrap(err, "deleting from %s", t.name)
	}
	return nil
}

func (t *table[T, R]) selectQuery() string {
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(t.columns, ", "), t.name)
	if t.orderBy != "" {
		query += " ORDER BY " + t.orderBy
	}
	return query
}

func (t *table[T, R]) insertQuery() string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (:%s)",
		t.name, strings.Join(t.columns, ", "), strings.Join(t.columns, ", :"),
	)
}

func (t *table[T, R]) upsertQuery() string {
	sets := make([]string, 0, len(t.columns)-1)
	for _, col := range t.columns[1:] {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	return t.insertQuery() + " ON CONFLICT (id) DO UPDATE SET " + strings.Join(sets, ", ")
}

// updateQuery builds a named UPDATE from domain fields. Columns are sorted so the query is stable.
func (t *table[T, R]) updateQuery(id string, fields gateway.Fields) (string, map[string]interface{}, error) {
	if len(fields) == 0 {
		return "", nil, errors.Errorf("updating %s: no fields", t.name)
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	args := map[string]interface{}{"id": id}
	sets := make([]string, 0, len(names))
	for _, name := range names {
		col, ok := t.fields[name]
		if !ok {
			return "", nil, errors.Errorf("updating %s: unknown field %q", t.name, name)
		}
		v, err := col.encode(fields[name])
		if err != nil {
			return "", nil, errors.Wrapf(err, "updating %s.%s", t.name, col.name)
		}
		sets = append(sets, fmt.Sprintf("%s = :%s", col.name, col.name))
		args[col.name] = v
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = :id", t.name, strings.Join(sets, ", ")), args, nil
}

// wrap annotates err, turning an undefined table into gateway.ErrTableMissing.
func wrap(err error, format string, args ...interface{}) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		err = gateway.ErrTableMissing
	}
	return errors.Wrapf(err, format, args...)
}
