package stores

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/colonyops/tally/internal/data/db"
)

// IsConstraintError returns true if the error is a constraint violation,
// such as a duplicate record key.
func IsConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

// IsCorruptionError returns true if the error indicates database corruption.
func IsCorruptionError(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code() & 0xff
		return code == sqlite3.SQLITE_CORRUPT ||
			code == sqlite3.SQLITE_NOTADB ||
			code == sqlite3.SQLITE_CANTOPEN
	}

	// Also check for common corruption error messages
	errStr := err.Error()
	return strings.Contains(errStr, "database disk image is malformed") ||
		strings.Contains(errStr, "file is not a database") ||
		strings.Contains(errStr, "database corruption")
}

// IsNotFoundError returns true if the error is a "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// RecoverFromCorruption moves a corrupt database aside, together with its
// WAL and SHM files, so the next open starts from an empty file. The moved
// files keep a ".corrupt.<timestamp>" suffix.
func RecoverFromCorruption(dataDir string) error {
	dbPath := filepath.Join(dataDir, db.FileName)
	backupPath := fmt.Sprintf("%s.corrupt.%s", dbPath, time.Now().Format("20060102-150405"))

	// WAL and SHM must move too or SQLite replays them into the new file.
	for _, suffix := range []string{"", "-wal", "-shm"} {
		from := dbPath + suffix
		err := os.Rename(from, backupPath+suffix)
		if err == nil || os.IsNotExist(err) {
			continue
		}
		if suffix == "" {
			return fmt.Errorf("back up corrupt database: %w", err)
		}
		if rmErr := os.Remove(from); rmErr != nil && !os.IsNotExist(rmErr) {
			return fmt.Errorf("back up or remove %s: %w", filepath.Base(from), err)
		}
	}
	return nil
}
