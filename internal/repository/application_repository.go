package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/audire/casting-portal/internal/model"
)

// ApplicationRepo persists rows of the 'applications' table. The pair
// (performer_id, casting_id) is unique.
type ApplicationRepo struct{ db *sql.DB }

func NewApplicationRepo(db *sql.DB) *ApplicationRepo { return &ApplicationRepo{db: db} }

var applicationColumns = []string{"id", "sent_at", "status", "feedback", "performer_id", "casting_id"}

var applicationOrder = newOrdering("sent_at DESC", "id", "sent_at", "status", "performer_id", "casting_id")

const applicationSelect = "SELECT id, sent_at, status, feedback, performer_id, casting_id FROM applications"

func scanApplication(s scanner, extra ...any) (*model.Application, error) {
	var (
		a        model.Application
		id       uint64
		status   string
		feedback sql.NullString
	)
	dest := append([]any{&id, &a.SentAt, &status, &feedback, &a.PerformerID, &a.CastingID}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	a.Key = model.Existing(id)
	a.Status = model.StatusFromLabel(status)
	a.Feedback = feedback.String
	return &a, nil
}

// Save inserts a new application (status defaults to pending) or updates
// the status and feedback of an existing one. A second application by the
// same performer to the same casting returns ErrAlreadyApplied.
func (r *ApplicationRepo) Save(ctx context.Context, a *model.Application) error {
	switch {
	case a == nil:
		return invalid("nil application")
	case a.PerformerID == 0 || a.CastingID == 0:
		return ErrMissingOwner
	}
	if a.Status == model.StatusNone {
		a.Status = model.StatusPending
	}

	if a.Key.IsNew() {
		if a.SentAt.IsZero() {
			a.SentAt = time.Now().UTC()
		}
		res, err := r.db.ExecContext(ctx,
			"INSERT INTO applications (sent_at, status, feedback, performer_id, casting_id) VALUES (?,?,?,?,?)",
			a.SentAt, a.Status.Label(), nullString(a.Feedback), a.PerformerID, a.CastingID)
		if err != nil {
			return applicationWriteErr(err)
		}
		id, err := insertID(res)
		if err != nil {
			return err
		}
		a.Key = model.Existing(id)
		return nil
	}

	_, err := r.db.ExecContext(ctx,
		"UPDATE applications SET status=?, feedback=? WHERE id=?",
		a.Status.Label(), nullString(a.Feedback), a.Key.ID())
	return applicationWriteErr(err)
}

func applicationWriteErr(err error) error {
	switch mysqlErrNumber(err) {
	case mysqlDuplicateEntry:
		return ErrAlreadyApplied
	case mysqlNoReferencedRow:
		return ErrMissingOwner
	}
	return err
}

func (r *ApplicationRepo) GetByID(ctx context.Context, id uint64) (*model.Application, error) {
	a, err := scanApplication(r.db.QueryRowContext(ctx, applicationSelect+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *ApplicationRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	return deleteByID(ctx, r.db, "applications", id)
}

// GetAll lists applications, newest first unless another allow-listed
// order is requested.
func (r *ApplicationRepo) GetAll(ctx context.Context, order string) ([]*model.Application, error) {
	var out []*model.Application
	err := selectAll(ctx, r.db, "applications", applicationColumns, applicationOrder, order, func(s scanner) error {
		a, err := scanApplication(s)
		if err != nil {
			return err
		}
		out = append(out, a)
		return nil
	})
	return out, err
}

// ListByPerformer returns a performer's applications with the casting title.
// Applications whose casting is gone carry model.RemovedCastingTitle.
func (r *ApplicationRepo) ListByPerformer(ctx context.Context, performerID uint64) ([]*model.Application, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.sent_at, a.status, a.feedback, a.performer_id, a.casting_id, c.title
		 FROM applications a LEFT JOIN castings c ON c.id = a.casting_id
		 WHERE a.performer_id = ? ORDER BY a.sent_at DESC, a.id DESC`, performerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Application
	for rows.Next() {
		var title sql.NullString
		a, err := scanApplication(rows, &title)
		if err != nil {
			return nil, err
		}
		a.CastingTitle = title.String
		if !title.Valid {
			a.CastingTitle = model.RemovedCastingTitle
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByCasting returns the applications received by a casting.
func (r *ApplicationRepo) ListByCasting(ctx context.Context, castingID uint64) ([]*model.Application, error) {
	rows, err := r.db.QueryContext(ctx, applicationSelect+" WHERE casting_id = ? ORDER BY sent_at DESC, id DESC", castingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// HasApplied is the fast-path duplicate check; the unique constraint
// uq_application_performer_casting is the authority.
func (r *ApplicationRepo) HasApplied(ctx context.Context, performerID, castingID uint64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM applications WHERE performer_id = ? AND casting_id = ?)",
		performerID, castingID).Scan(&ok)
	return ok, err
}
