package handler

import (
	"context"
	"time"

	"github.com/audire/casting-portal/internal/model"
	"github.com/audire/casting-portal/internal/validation"
)

// The interfaces below are the slices of the repositories each handler uses.
// The *repository.XRepo types satisfy them.

type UserStore interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// Registrar creates an account with its role profile.
type Registrar interface {
	Register(ctx context.Context, reg *validation.Registration) (*model.User, error)
}

type PerformerStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Performer, error)
	GetByUserID(ctx context.Context, userID uint64) (*model.Performer, error)
	GetCV(ctx context.Context, performerID uint64) ([]byte, string, error)
}

type DirectorStore interface {
	GetByUserID(ctx context.Context, userID uint64) (*model.CastingDirector, error)
}

type ManagerStore interface {
	GetByUserID(ctx context.Context, userID uint64) (*model.ProductionManager, error)
}

type ProductionStore interface {
	Save(ctx context.Context, p *model.Production) error
	GetByID(ctx context.Context, id uint64) (*model.Production, error)
	ListByManager(ctx context.Context, managerID uint64) ([]*model.Production, error)
	ListByDirector(ctx context.Context, directorID uint64) ([]*model.Production, error)
}

type TeamStore interface {
	Add(ctx context.Context, directorID, productionID uint64) error
	Remove(ctx context.Context, directorID, productionID uint64) (bool, error)
	IsMember(ctx context.Context, directorID, productionID uint64) (bool, error)
	ListDirectors(ctx context.Context, productionID uint64) ([]uint64, error)
}

type CastingStore interface {
	Save(ctx context.Context, c *model.Casting) error
	GetByID(ctx context.Context, id uint64) (*model.Casting, error)
	Delete(ctx context.Context, id uint64) (bool, error)
	ListByDirector(ctx context.Context, directorID uint64) ([]*model.Casting, error)
	GetAllActive(ctx context.Context) ([]*model.Casting, error)
}

type ApplicationStore interface {
	Save(ctx context.Context, a *model.Application) error
	ListByPerformer(ctx context.Context, performerID uint64) ([]*model.Application, error)
	ListByCasting(ctx context.Context, castingID uint64) ([]*model.Application, error)
	HasApplied(ctx context.Context, performerID, castingID uint64) (bool, error)
}
