package repository

import (
	"context"
	"database/sql"
)

// TeamRepo manages the director/production membership table 'teams'.
type TeamRepo struct{ db *sql.DB }

func NewTeamRepo(db *sql.DB) *TeamRepo { return &TeamRepo{db: db} }

// Add makes directorID a member of productionID. Adding an existing member
// is a no-op; an unknown director or production is ErrMissingOwner.
func (r *TeamRepo) Add(ctx context.Context, directorID, productionID uint64) error {
	if directorID == 0 || productionID == 0 {
		return ErrMissingOwner
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO teams (director_id, production_id) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE director_id = director_id`, directorID, productionID)
	return profileWriteErr(err)
}

// Remove deletes the membership and reports whether one existed.
func (r *TeamRepo) Remove(ctx context.Context, directorID, productionID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM teams WHERE director_id = ? AND production_id = ?", directorID, productionID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *TeamRepo) IsMember(ctx context.Context, directorID, productionID uint64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM teams WHERE director_id = ? AND production_id = ?)",
		directorID, productionID).Scan(&ok)
	return ok, err
}

// ListDirectors returns the ids of the directors working on a production.
func (r *TeamRepo) ListDirectors(ctx context.Context, productionID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT director_id FROM teams WHERE production_id = ? ORDER BY director_id", productionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
