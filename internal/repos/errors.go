package repos

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is the store's uniqueness-constraint
// signal. Postgres surfaces it as pgconn error code 23505; gorm's error
// translation and the sqlite driver used in tests surface it differently, so
// all three are checked.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
