package store

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/lingua-prep/backend/internal/database"
)

// New selects the physical backend once at process start from DB_BACKEND:
// "postgres", "sqlite" (path in SQLITE_PATH), or empty/"none" for the
// disabled store, where every operation is an empty no-op. The returned
// *sql.DB is nil for the disabled store; callers that need direct table
// access (auth) must handle that.
func New() (Store, *sql.DB, error) {
	switch backend := os.Getenv("DB_BACKEND"); backend {
	case "", "none":
		log.Println("Store: no persistence target configured, running without catalogue")
		return NewDisabled(), nil, nil

	case "postgres":
		db, err := database.ConnectPostgres()
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := database.MigratePostgres(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		log.Println("Store: using postgres backend")
		return NewPostgres(db), db, nil

	case "sqlite":
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "lingua_prep.db"
		}
		db, err := database.ConnectSQLite(path)
		if err != nil {
			return nil, nil, fmt.Errorf("connect sqlite: %w", err)
		}
		if err := database.MigrateSQLite(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		log.Printf("Store: using sqlite backend at %s", path)
		return NewSQLite(db), db, nil

	default:
		return nil, nil, fmt.Errorf("unknown DB_BACKEND %q", backend)
	}
}
