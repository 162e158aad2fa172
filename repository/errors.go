package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrDuplicateUser is returned when an insert collides with the unique
// username or email index.
var ErrDuplicateUser = errors.New("username or email already exists")

// ErrDuplicateEntry is returned when a membership insert collides with a
// unique index (song already in playlist, song already liked).
var ErrDuplicateEntry = errors.New("entry already exists")

// isDuplicateKey reports whether err is a MySQL duplicate-entry error (1062).
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
