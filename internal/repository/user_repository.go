package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/audire/casting-portal/internal/model"
)

// UserRepo persists rows of the 'users' table.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

var userColumns = []string{"id", "first_name", "last_name", "email", "phone", "password_hash", "role", "registered_at"}

var userOrder = newOrdering("id", "id", "first_name", "last_name", "email", "role", "registered_at")

const userSelect = "SELECT id, first_name, last_name, email, phone, password_hash, role, registered_at FROM users"

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func scanUser(s scanner) (*model.User, error) {
	var (
		u    model.User
		id   uint64
		role string
	)
	if err := s.Scan(&id, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.PasswordHash, &role, &u.RegisteredAt); err != nil {
		return nil, err
	}
	u.Key = model.Existing(id)
	u.Role = model.RoleFromLabel(role)
	return &u, nil
}

// Save inserts u when its key is New, assigning the generated id, and
// updates the stored row otherwise.
func (r *UserRepo) Save(ctx context.Context, u *model.User) error {
	return r.save(ctx, r.db, u)
}

// SaveTx is Save inside a caller-managed transaction.
func (r *UserRepo) SaveTx(ctx context.Context, tx *sql.Tx, u *model.User) error {
	return r.save(ctx, tx, u)
}

func (r *UserRepo) save(ctx context.Context, ex execer, u *model.User) error {
	if u == nil {
		return invalid("nil user")
	}
	email := normalizeEmail(u.Email)
	switch {
	case email == "":
		return invalid("user email is empty")
	case u.PasswordHash == "":
		return invalid("user password hash is empty")
	case u.Role == model.RoleNone:
		return invalid("user role is not set")
	}

	if u.Key.IsNew() {
		if u.RegisteredAt.IsZero() {
			u.RegisteredAt = time.Now().UTC()
		}
		res, err := ex.ExecContext(ctx,
			"INSERT INTO users (first_name, last_name, email, phone, password_hash, role, registered_at) VALUES (?,?,?,?,?,?,?)",
			u.FirstName, u.LastName, email, u.Phone, u.PasswordHash, u.Role.Name(), u.RegisteredAt)
		if err != nil {
			return userWriteErr(err)
		}
		id, err := insertID(res)
		if err != nil {
			return err
		}
		u.Key = model.Existing(id)
		u.Email = email
		return nil
	}

	_, err := ex.ExecContext(ctx,
		"UPDATE users SET first_name=?, last_name=?, email=?, phone=?, password_hash=?, role=? WHERE id=?",
		u.FirstName, u.LastName, email, u.Phone, u.PasswordHash, u.Role.Name(), u.Key.ID())
	if err != nil {
		return userWriteErr(err)
	}
	u.Email = email
	return nil
}

func userWriteErr(err error) error {
	if mysqlErrNumber(err) == mysqlDuplicateEntry {
		return ErrEmailExists
	}
	return err
}

// GetByID returns nil, nil when no user has the id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, userSelect+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// GetByEmail fetches a user by normalized email; nil, nil when absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, userSelect+" WHERE email = ? LIMIT 1", normalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// EmailExists is the fast-path uniqueness check run before registration.
// The uq_user_email constraint remains the authority.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)", normalizeEmail(email)).Scan(&exists)
	return exists, err
}

func (r *UserRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	return deleteByID(ctx, r.db, "users", id)
}

// GetAll lists users ordered by an allow-listed column (default id).
func (r *UserRepo) GetAll(ctx context.Context, order string) ([]*model.User, error) {
	var out []*model.User
	err := selectAll(ctx, r.db, "users", userColumns, userOrder, order, func(s scanner) error {
		u, err := scanUser(s)
		if err != nil {
			return err
		}
		out = append(out, u)
		return nil
	})
	return out, err
}
