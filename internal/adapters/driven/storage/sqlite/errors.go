package sqlite

import (
	"errors"
	"fmt"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/custodia-labs/alexandria/internal/core/domain"
)

// fatalCodes are primary result codes after which the database cannot be
// trusted for further writes.
var fatalCodes = map[int]bool{
	sqlite3.SQLITE_CORRUPT:  true,
	sqlite3.SQLITE_NOTADB:   true,
	sqlite3.SQLITE_IOERR:    true,
	sqlite3.SQLITE_FULL:     true,
	sqlite3.SQLITE_READONLY: true,
	sqlite3.SQLITE_CANTOPEN: true,
}

// classify wraps err with op, promoting engine-fatal failures to
// *domain.StoreError so callers can detect them with errors.Is.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *sqlitedrv.Error
	if errors.As(err, &se) {
		code := se.Code() & 0xff
		if fatalCodes[code] {
			return &domain.StoreError{Code: code, Op: op, Err: err}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
