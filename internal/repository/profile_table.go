package repository

import (
	"context"
	"database/sql"
	"errors"
)

// profileTable holds the queries shared by the two role profiles that only
// carry a user reference (casting_directors, production_managers).
type profileTable struct {
	db    *sql.DB
	table string
	order ordering
}

func newProfileTable(db *sql.DB, table string) profileTable {
	return profileTable{db: db, table: table, order: newOrdering("id", "id", "user_id")}
}

// save inserts when isNew and returns the generated id; otherwise it
// re-points row id at userID.
func (p profileTable) save(ctx context.Context, ex execer, isNew bool, id, userID uint64) (uint64, error) {
	if userID == 0 {
		return 0, ErrMissingOwner
	}
	if isNew {
		res, err := ex.ExecContext(ctx, "INSERT INTO "+p.table+" (user_id) VALUES (?)", userID)
		if err != nil {
			return 0, profileWriteErr(err)
		}
		return insertID(res)
	}
	_, err := ex.ExecContext(ctx, "UPDATE "+p.table+" SET user_id=? WHERE id=?", userID, id)
	return id, profileWriteErr(err)
}

// get runs a single-row lookup on column; found is false when no row matched.
func (p profileTable) get(ctx context.Context, column string, v uint64) (id, userID uint64, found bool, err error) {
	err = p.db.QueryRowContext(ctx,
		"SELECT id, user_id FROM "+p.table+" WHERE "+column+" = ? LIMIT 1", v).Scan(&id, &userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}
	return id, userID, true, nil
}

func (p profileTable) all(ctx context.Context, order string, each func(id, userID uint64)) error {
	return selectAll(ctx, p.db, p.table, []string{"id", "user_id"}, p.order, order, func(s scanner) error {
		var id, userID uint64
		if err := s.Scan(&id, &userID); err != nil {
			return err
		}
		each(id, userID)
		return nil
	})
}
