// Package service holds the operations that span several repositories or
// reach outside the database: account registration and domain events.
package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/audire/casting-portal/internal/metrics"
	"github.com/audire/casting-portal/internal/model"
	"github.com/audire/casting-portal/internal/repository"
	"github.com/audire/casting-portal/internal/storage"
	"github.com/audire/casting-portal/internal/utils"
	"github.com/audire/casting-portal/internal/validation"
)

// AccountService registers users together with their role profile.
type AccountService struct {
	DB         *sql.DB
	Users      *repository.UserRepo
	Performers *repository.PerformerRepo
	Directors  *repository.CastingDirectorRepo
	Managers   *repository.ProductionManagerRepo
	Photos     *storage.PhotoStore
	BcryptCost int
	Log        zerolog.Logger
	Now        func() time.Time
}

// Register stores a validated registration. The user row and the role
// profile are written in one transaction; a performer's photo is written to
// disk first and removed again if the transaction fails.
//
// repository.ErrEmailExists is returned when the address is already taken,
// whether the lookup or the unique index catches it.
func (s *AccountService) Register(ctx context.Context, reg *validation.Registration) (*model.User, error) {
	taken, err := s.Users.EmailExists(ctx, reg.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, repository.ErrEmailExists
	}

	hash, err := utils.HashPassword(reg.Password, s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Email:        reg.Email,
		Phone:        reg.Phone,
		PasswordHash: hash,
		Role:         reg.Role,
		RegisteredAt: s.now(),
	}

	var photo string
	if reg.Role == model.RolePerformer && reg.Photo != nil {
		photo, err = s.Photos.Save(bytes.NewReader(reg.Photo.Data))
		if err != nil {
			return nil, fmt.Errorf("store photo: %w", err)
		}
	}

	if err := s.insert(ctx, user, reg, photo); err != nil {
		if photo != "" {
			if rmErr := s.Photos.Remove(photo); rmErr != nil {
				s.Log.Warn().Err(rmErr).Str("photo", photo).Msg("remove orphaned photo")
			}
		}
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues(reg.Role.Name()).Inc()
	return user, nil
}

func (s *AccountService) insert(ctx context.Context, user *model.User, reg *validation.Registration, photo string) (err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registration: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.Users.SaveTx(ctx, tx, user); err != nil {
		return err
	}

	switch reg.Role {
	case model.RolePerformer:
		p := &model.Performer{
			UserID:       user.Key.ID(),
			Gender:       reg.Gender,
			Category:     reg.Category,
			Description:  reg.Description,
			ProfilePhoto: photo,
		}
		if reg.CV != nil {
			p.CV = reg.CV.Data
			p.CVMimeType = "application/pdf"
		}
		err = s.Performers.SaveTx(ctx, tx, p)
	case model.RoleCastingDirector:
		err = s.Directors.SaveTx(ctx, tx, &model.CastingDirector{UserID: user.Key.ID()})
	case model.RoleProductionManager:
		err = s.Managers.SaveTx(ctx, tx, &model.ProductionManager{UserID: user.Key.ID()})
	default:
		err = fmt.Errorf("%w: role %q", repository.ErrInvalidEntity, reg.Role.Name())
	}
	if err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit registration: %w", err)
	}
	return nil
}

func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
