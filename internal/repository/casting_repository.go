package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/audire/casting-portal/internal/model"
)

// CastingRepo persists rows of the 'castings' table. Reads join the
// production title so list views need no extra lookups.
type CastingRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewCastingRepo(db *sql.DB) *CastingRepo { return &CastingRepo{db: db, now: time.Now} }

var castingColumns = []string{"id", "title", "location", "category", "description", "published_at", "deadline", "director_id", "production_id"}

var castingOrder = newOrdering("id", "id", "location", "title", "published_at", "deadline", "category", "production_id")

const castingSelect = `SELECT c.id, c.title, c.location, c.category, c.description, c.published_at, c.deadline,
	c.director_id, c.production_id, COALESCE(p.title, '')
	FROM castings c LEFT JOIN productions p ON p.id = c.production_id`

func scanCastingRow(s scanner, withTitle bool) (*model.Casting, error) {
	var (
		c        model.Casting
		id       uint64
		category string
	)
	dest := []any{&id, &c.Title, &c.Location, &category, &c.Description, &c.PublishedAt, &c.Deadline, &c.DirectorID, &c.ProductionID}
	if withTitle {
		dest = append(dest, &c.ProductionTitle)
	}
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	c.Key = model.Existing(id)
	c.Category = model.CategoryFromLabel(category)
	return &c, nil
}

func scanCasting(s scanner) (*model.Casting, error) { return scanCastingRow(s, true) }

// Save inserts or updates c. Director and publish date are fixed at insert.
func (r *CastingRepo) Save(ctx context.Context, c *model.Casting) error {
	switch {
	case c == nil:
		return invalid("nil casting")
	case c.DirectorID == 0 || c.ProductionID == 0:
		return ErrMissingOwner
	case strings.TrimSpace(c.Title) == "":
		return invalid("casting title is empty")
	case strings.TrimSpace(c.Location) == "":
		return invalid("casting location is empty")
	case strings.TrimSpace(c.Description) == "":
		return invalid("casting description is empty")
	case c.Category == model.CategoryNone:
		return invalid("casting category is not set")
	case c.Deadline.IsZero():
		return invalid("casting deadline is not set")
	}

	if c.Key.IsNew() {
		if c.PublishedAt.IsZero() {
			c.PublishedAt = r.now().UTC()
		}
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO castings (title, location, category, description, published_at, deadline, director_id, production_id)
			 VALUES (?,?,?,?,?,?,?,?)`,
			c.Title, c.Location, c.Category.Label(), c.Description, c.PublishedAt, c.Deadline, c.DirectorID, c.ProductionID)
		if err != nil {
			return profileWriteErr(err)
		}
		id, err := insertID(res)
		if err != nil {
			return err
		}
		c.Key = model.Existing(id)
		return nil
	}

	_, err := r.db.ExecContext(ctx,
		"UPDATE castings SET title=?, location=?, category=?, description=?, deadline=?, production_id=? WHERE id=?",
		c.Title, c.Location, c.Category.Label(), c.Description, c.Deadline, c.ProductionID, c.Key.ID())
	return profileWriteErr(err)
}

// GetByID returns the casting with its production title, or nil, nil.
func (r *CastingRepo) GetByID(ctx context.Context, id uint64) (*model.Casting, error) {
	c, err := scanCasting(r.db.QueryRowContext(ctx, castingSelect+" WHERE c.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// Delete fails with ErrHasDependents while applications reference the
// casting.
func (r *CastingRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	return deleteByID(ctx, r.db, "castings", id)
}

func (r *CastingRepo) GetAll(ctx context.Context, order string) ([]*model.Casting, error) {
	var out []*model.Casting
	err := selectAll(ctx, r.db, "castings", castingColumns, castingOrder, order, func(s scanner) error {
		c, err := scanCastingRow(s, false)
		if err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	return out, err
}

func (r *CastingRepo) ListByProduction(ctx context.Context, productionID uint64) ([]*model.Casting, error) {
	return r.list(ctx, castingSelect+" WHERE c.production_id = ? ORDER BY c.published_at DESC, c.id DESC", productionID)
}

// ListByDirector returns every casting published by a director, newest first.
func (r *CastingRepo) ListByDirector(ctx context.Context, directorID uint64) ([]*model.Casting, error) {
	return r.list(ctx, castingSelect+" WHERE c.director_id = ? ORDER BY c.published_at DESC, c.id DESC", directorID)
}

// GetAllActive returns castings whose deadline is today (UTC) or later,
// newest publication first.
func (r *CastingRepo) GetAllActive(ctx context.Context) ([]*model.Casting, error) {
	today := model.StartOfDay(r.now().UTC())
	return r.list(ctx, castingSelect+" WHERE c.deadline >= ? ORDER BY c.published_at DESC, c.id DESC", today)
}

func (r *CastingRepo) list(ctx context.Context, q string, args ...any) ([]*model.Casting, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Casting
	for rows.Next() {
		c, err := scanCasting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
