package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/audire/casting-portal/internal/model"
)

// PerformerRepo persists performer profiles. The cv_data blob is excluded
// from regular reads and fetched through GetCV.
type PerformerRepo struct{ db *sql.DB }

func NewPerformerRepo(db *sql.DB) *PerformerRepo { return &PerformerRepo{db: db} }

var performerColumns = []string{"id", "user_id", "gender", "category", "description", "profile_photo", "cv_mime_type"}

var performerOrder = newOrdering("id", "id", "gender", "category")

const performerSelect = "SELECT id, user_id, gender, category, description, profile_photo, cv_mime_type FROM performers"

func scanPerformer(s scanner) (*model.Performer, error) {
	var (
		p                model.Performer
		id               uint64
		gender, category string
		mime             sql.NullString
	)
	if err := s.Scan(&id, &p.UserID, &gender, &category, &p.Description, &p.ProfilePhoto, &mime); err != nil {
		return nil, err
	}
	p.Key = model.Existing(id)
	p.Gender = model.GenderFromLabel(gender)
	p.Category = model.CategoryFromLabel(category)
	p.CVMimeType = mime.String
	return &p, nil
}

func (r *PerformerRepo) Save(ctx context.Context, p *model.Performer) error {
	return r.save(ctx, r.db, p)
}

func (r *PerformerRepo) SaveTx(ctx context.Context, tx *sql.Tx, p *model.Performer) error {
	return r.save(ctx, tx, p)
}

func (r *PerformerRepo) save(ctx context.Context, ex execer, p *model.Performer) error {
	switch {
	case p == nil:
		return invalid("nil performer")
	case p.UserID == 0:
		return ErrMissingOwner
	case p.Gender == model.GenderNone:
		return invalid("performer gender is not set")
	case p.Category == model.CategoryNone:
		return invalid("performer category is not set")
	case strings.TrimSpace(p.Description) == "":
		return invalid("performer description is empty")
	case strings.TrimSpace(p.ProfilePhoto) == "":
		return invalid("performer profile photo is not set")
	}

	var cv any
	if len(p.CV) > 0 {
		cv = p.CV
	}

	if p.Key.IsNew() {
		res, err := ex.ExecContext(ctx,
			"INSERT INTO performers (user_id, gender, category, description, profile_photo, cv_data, cv_mime_type) VALUES (?,?,?,?,?,?,?)",
			p.UserID, p.Gender.Label(), p.Category.Label(), p.Description, p.ProfilePhoto, cv, nullString(p.CVMimeType))
		if err != nil {
			return profileWriteErr(err)
		}
		id, err := insertID(res)
		if err != nil {
			return err
		}
		p.Key = model.Existing(id)
		return nil
	}

	// A nil CV keeps the stored one.
	_, err := ex.ExecContext(ctx,
		`UPDATE performers SET gender=?, category=?, description=?, profile_photo=?,
		 cv_data=COALESCE(?, cv_data), cv_mime_type=COALESCE(?, cv_mime_type) WHERE id=?`,
		p.Gender.Label(), p.Category.Label(), p.Description, p.ProfilePhoto, cv, nullString(p.CVMimeType), p.Key.ID())
	return profileWriteErr(err)
}

// profileWriteErr maps a missing users row to ErrMissingOwner.
func profileWriteErr(err error) error {
	if mysqlErrNumber(err) == mysqlNoReferencedRow {
		return ErrMissingOwner
	}
	return err
}

func (r *PerformerRepo) GetByID(ctx context.Context, id uint64) (*model.Performer, error) {
	p, err := scanPerformer(r.db.QueryRowContext(ctx, performerSelect+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// GetByUserID returns the performer profile of a user, or nil, nil.
func (r *PerformerRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Performer, error) {
	p, err := scanPerformer(r.db.QueryRowContext(ctx, performerSelect+" WHERE user_id = ? LIMIT 1", userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// GetCV returns the CV bytes and MIME type. data is nil when the performer
// does not exist or never uploaded a CV.
func (r *PerformerRepo) GetCV(ctx context.Context, performerID uint64) (data []byte, mimeType string, err error) {
	var mime sql.NullString
	err = r.db.QueryRowContext(ctx,
		"SELECT cv_data, cv_mime_type FROM performers WHERE id = ?", performerID).Scan(&data, &mime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return data, mime.String, nil
}

func (r *PerformerRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	return deleteByID(ctx, r.db, "performers", id)
}

func (r *PerformerRepo) GetAll(ctx context.Context, order string) ([]*model.Performer, error) {
	var out []*model.Performer
	err := selectAll(ctx, r.db, "performers", performerColumns, performerOrder, order, func(s scanner) error {
		p, err := scanPerformer(s)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	return out, err
}
