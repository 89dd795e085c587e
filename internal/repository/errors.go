// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and services to tell validation failures, duplicate records and
// blocked deletes apart from plain storage errors.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrInvalidEntity is returned by Save when a required field is missing or
// holds its "none" value. The wrapped message names the field.
var ErrInvalidEntity = errors.New("invalid entity")

// ErrMissingOwner is returned by Save when a foreign key (user, director,
// production, performer, casting) is unset or points at no row.
var ErrMissingOwner = errors.New("missing owner reference")

// ErrEmailExists is returned when a user with the same email is stored.
var ErrEmailExists = errors.New("email already exists")

// ErrAlreadyApplied is returned when a performer applies twice to the same
// casting.
var ErrAlreadyApplied = errors.New("already applied to this casting")

// ErrHasDependents is returned by Delete when other rows still reference the
// record, such as a casting that has received applications.
var ErrHasDependents = errors.New("record has dependent rows")

// ErrTokenInvalid is returned for unknown, revoked or expired refresh tokens.
var ErrTokenInvalid = errors.New("refresh token invalid")

const (
	mysqlDuplicateEntry    = 1062
	mysqlRowIsReferenced   = 1451
	mysqlNoReferencedRow   = 1452
	mysqlRowIsReferencedV2 = 1217
)

func mysqlErrNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidEntity, fmt.Sprintf(format, args...))
}
