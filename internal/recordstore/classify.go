package recordstore

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/storesync/internal/contract"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// classify maps a driver error onto a StoreError code.
func classify(op, table string, err error) error {
	if err == nil {
		return nil
	}
	var se *contract.StoreError
	if errors.As(err, &se) {
		return err
	}
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return contract.NewStoreError(contract.ErrCodeNotFound, op, table, nil)
	case isUniqueViolation(err):
		return contract.NewStoreError(contract.ErrCodeConflict, op, table, err)
	default:
		return contract.NewStoreError(contract.ErrCodeUnavailable, op, table, err)
	}
}

// isUniqueViolation recognizes primary key and unique index violations for every backend.
func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func invalid(op, table string, err error) error {
	return contract.NewStoreError(contract.ErrCodeInvalid, op, table, err)
}
