package journal

import (
	"context"
	"fmt"
)

// Open returns the store for driver: "file" takes a directory, "sqlite" a
// database path and "postgres" a DSN.
func Open(ctx context.Context, driver, dir, dsn string) (Store, error) {
	switch driver {
	case "", "file":
		return NewFileStore(dir)
	case "sqlite":
		return OpenSQLite(ctx, dsn)
	case "postgres":
		return OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown journal driver %q", driver)
	}
}
