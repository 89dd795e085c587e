package repository

import (
	"context"
	"database/sql"

	"github.com/audire/casting-portal/internal/model"
)

// CastingDirectorRepo persists casting director profiles.
type CastingDirectorRepo struct{ t profileTable }

func NewCastingDirectorRepo(db *sql.DB) *CastingDirectorRepo {
	return &CastingDirectorRepo{t: newProfileTable(db, "casting_directors")}
}

func (r *CastingDirectorRepo) Save(ctx context.Context, cd *model.CastingDirector) error {
	return r.save(ctx, r.t.db, cd)
}

func (r *CastingDirectorRepo) SaveTx(ctx context.Context, tx *sql.Tx, cd *model.CastingDirector) error {
	return r.save(ctx, tx, cd)
}

func (r *CastingDirectorRepo) save(ctx context.Context, ex execer, cd *model.CastingDirector) error {
	if cd == nil {
		return invalid("nil casting director")
	}
	id, err := r.t.save(ctx, ex, cd.Key.IsNew(), cd.Key.ID(), cd.UserID)
	if err != nil {
		return err
	}
	cd.Key = model.Existing(id)
	return nil
}

func (r *CastingDirectorRepo) GetByID(ctx context.Context, id uint64) (*model.CastingDirector, error) {
	return r.lookup(ctx, "id", id)
}

// GetByUserID resolves the director profile of a logged-in user.
func (r *CastingDirectorRepo) GetByUserID(ctx context.Context, userID uint64) (*model.CastingDirector, error) {
	return r.lookup(ctx, "user_id", userID)
}

func (r *CastingDirectorRepo) lookup(ctx context.Context, column string, v uint64) (*model.CastingDirector, error) {
	id, userID, found, err := r.t.get(ctx, column, v)
	if err != nil || !found {
		return nil, err
	}
	return &model.CastingDirector{Key: model.Existing(id), UserID: userID}, nil
}

func (r *CastingDirectorRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	return deleteByID(ctx, r.t.db, r.t.table, id)
}

func (r *CastingDirectorRepo) GetAll(ctx context.Context, order string) ([]*model.CastingDirector, error) {
	var out []*model.CastingDirector
	err := r.t.all(ctx, order, func(id, userID uint64) {
		out = append(out, &model.CastingDirector{Key: model.Existing(id), UserID: userID})
	})
	return out, err
}
