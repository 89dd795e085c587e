package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// execer is satisfied by *sql.DB and *sql.Tx so that Save and SaveTx share
// one implementation.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// builder emits MySQL '?' placeholders.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// ordering is the allow-list of ORDER BY columns for a table's GetAll.
type ordering struct {
	columns  map[string]bool
	fallback string
}

func newOrdering(fallback string, columns ...string) ordering {
	o := ordering{columns: make(map[string]bool, len(columns)), fallback: fallback}
	for _, c := range columns {
		o.columns[c] = true
	}
	return o
}

// resolve accepts "column" or "column ASC|DESC" when column is allow-listed
// and returns the fallback for anything else.
func (o ordering) resolve(order string) string {
	fields := strings.Fields(order)
	if len(fields) == 0 || len(fields) > 2 {
		return o.fallback
	}
	col := strings.ToLower(fields[0])
	if !o.columns[col] {
		return o.fallback
	}
	if len(fields) == 1 {
		return col
	}
	dir := strings.ToUpper(fields[1])
	if dir != "ASC" && dir != "DESC" {
		return o.fallback
	}
	return col + " " + dir
}

// selectAll runs SELECT columns FROM table ORDER BY <resolved order> and
// hands each row to scan.
func selectAll(ctx context.Context, db *sql.DB, table string, columns []string, o ordering, order string, scan func(scanner) error) error {
	query, args, err := builder.Select(columns...).From(table).OrderBy(o.resolve(order)).ToSql()
	if err != nil {
		return fmt.Errorf("build %s select: %w", table, err)
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// deleteByID removes one row by primary key. Foreign-key violations are
// reported as ErrHasDependents.
func deleteByID(ctx context.Context, db *sql.DB, table string, id uint64) (bool, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		switch mysqlErrNumber(err) {
		case mysqlRowIsReferenced, mysqlRowIsReferencedV2:
			return false, ErrHasDependents
		}
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func insertID(res sql.Result) (uint64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
