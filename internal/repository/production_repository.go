package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/audire/casting-portal/internal/model"
)

// UnknownProductionTitle is returned by TitleByID for missing productions.
const UnknownProductionTitle = "Unknown"

// ProductionRepo persists rows of the 'productions' table.
type ProductionRepo struct{ db *sql.DB }

func NewProductionRepo(db *sql.DB) *ProductionRepo { return &ProductionRepo{db: db} }

var productionColumns = []string{"id", "title", "type", "created_at", "manager_id"}

var productionOrder = newOrdering("id", "id", "title", "type", "created_at", "manager_id")

func scanProduction(s scanner) (*model.Production, error) {
	var (
		p   model.Production
		id  uint64
		typ string
	)
	if err := s.Scan(&id, &p.Title, &typ, &p.CreatedAt, &p.ManagerID); err != nil {
		return nil, err
	}
	p.Key = model.Existing(id)
	p.Type = model.ProductionTypeFromLabel(typ)
	return &p, nil
}

func (r *ProductionRepo) Save(ctx context.Context, p *model.Production) error {
	switch {
	case p == nil:
		return invalid("nil production")
	case p.ManagerID == 0:
		return ErrMissingOwner
	case strings.TrimSpace(p.Title) == "":
		return invalid("production title is empty")
	case p.Type == model.ProductionTypeNone:
		return invalid("production type is not set")
	}

	if p.Key.IsNew() {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now().UTC()
		}
		res, err := r.db.ExecContext(ctx,
			"INSERT INTO productions (title, type, created_at, manager_id) VALUES (?,?,?,?)",
			p.Title, p.Type.Label(), p.CreatedAt, p.ManagerID)
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

	_, err := r.db.ExecContext(ctx,
		"UPDATE productions SET title=?, type=?, manager_id=? WHERE id=?",
		p.Title, p.Type.Label(), p.ManagerID, p.Key.ID())
	return profileWriteErr(err)
}

func (r *ProductionRepo) GetByID(ctx context.Context, id uint64) (*model.Production, error) {
	p, err := scanProduction(r.db.QueryRowContext(ctx,
		"SELECT id, title, type, created_at, manager_id FROM productions WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *ProductionRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	return deleteByID(ctx, r.db, "productions", id)
}

func (r *ProductionRepo) GetAll(ctx context.Context, order string) ([]*model.Production, error) {
	var out []*model.Production
	err := selectAll(ctx, r.db, "productions", productionColumns, productionOrder, order, func(s scanner) error {
		p, err := scanProduction(s)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

// ListByManager returns the productions owned by a production manager.
func (r *ProductionRepo) ListByManager(ctx context.Context, managerID uint64) ([]*model.Production, error) {
	return r.list(ctx,
		"SELECT id, title, type, created_at, manager_id FROM productions WHERE manager_id = ? ORDER BY created_at DESC, id DESC",
		managerID)
}

// ListByDirector returns the productions a casting director is a Team
// member of; these are the only productions they may publish castings for.
func (r *ProductionRepo) ListByDirector(ctx context.Context, directorID uint64) ([]*model.Production, error) {
	return r.list(ctx,
		`SELECT p.id, p.title, p.type, p.created_at, p.manager_id
		 FROM productions p JOIN teams t ON t.production_id = p.id
		 WHERE t.director_id = ? ORDER BY p.title`,
		directorID)
}

func (r *ProductionRepo) list(ctx context.Context, q string, args ...any) ([]*model.Production, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Production
	for rows.Next() {
		p, err := scanProduction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// TitleByID returns the production title or UnknownProductionTitle.
func (r *ProductionRepo) TitleByID(ctx context.Context, id uint64) (string, error) {
	var title string
	err := r.db.QueryRowContext(ctx, "SELECT title FROM productions WHERE id = ?", id).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return UnknownProductionTitle, nil
	}
	if err != nil {
		return "", err
	}
	return title, nil
}

// TitlesByIDs resolves many titles in one query. Ids with no production are
// mapped to UnknownProductionTitle.
func (r *ProductionRepo) TitlesByIDs(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	out := make(map[uint64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	for _, id := range ids {
		out[id] = UnknownProductionTitle
	}
	query, args, err := builder.Select("id", "title").From("productions").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build titles select: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id    uint64
			title string
		)
		if err := rows.Scan(&id, &title); err != nil {
			return nil, err
		}
		out[id] = title
	}
	return out, rows.Err()
}
