package repository

import (
	"context"
	"database/sql"

	"github.com/audire/casting-portal/internal/model"
)

// ProductionManagerRepo persists production manager profiles.
type ProductionManagerRepo struct{ t profileTable }

func NewProductionManagerRepo(db *sql.DB) *ProductionManagerRepo {
	return &ProductionManagerRepo{t: newProfileTable(db, "production_managers")}
}

func (r *ProductionManagerRepo) Save(ctx context.Context, pm *model.ProductionManager) error {
	return r.save(ctx, r.t.db, pm)
}

func (r *ProductionManagerRepo) SaveTx(ctx context.Context, tx *sql.Tx, pm *model.ProductionManager) error {
	return r.save(ctx, tx, pm)
}

func (r *ProductionManagerRepo) save(ctx context.Context, ex execer, pm *model.ProductionManager) error {
	if pm == nil {
		return invalid("nil production manager")
	}
	id, err := r.t.save(ctx, ex, pm.Key.IsNew(), pm.Key.ID(), pm.UserID)
	if err != nil {
		return err
	}
	pm.Key = model.Existing(id)
	return nil
}

func (r *ProductionManagerRepo) GetByID(ctx context.Context, id uint64) (*model.ProductionManager, error) {
	return r.lookup(ctx, "id", id)
}

func (r *ProductionManagerRepo) GetByUserID(ctx context.Context, userID uint64) (*model.ProductionManager, error) {
	return r.lookup(ctx, "user_id", userID)
}

func (r *ProductionManagerRepo) lookup(ctx context.Context, column string, v uint64) (*model.ProductionManager, error) {
	id, userID, found, err := r.t.get(ctx, column, v)
	if err != nil || !found {
		return nil, err
	}
	return &model.ProductionManager{Key: model.Existing(id), UserID: userID}, nil
}

func (r *ProductionManagerRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	return deleteByID(ctx, r.t.db, r.t.table, id)
}

func (r *ProductionManagerRepo) GetAll(ctx context.Context, order string) ([]*model.ProductionManager, error) {
	var out []*model.ProductionManager
	err := r.t.all(ctx, order, func(id, userID uint64) {
		out = append(out, &model.ProductionManager{Key: model.Existing(id), UserID: userID})
	})
	return out, err
}
