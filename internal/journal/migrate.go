package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magefree/skillcore-go/internal/journal/migrations"
	"github.com/pressly/goose/v3"
)

// migrate applies the embedded journal migrations.
func migrate(ctx context.Context, dialect goose.Dialect, db *sql.DB) error {
	provider, err := goose.NewProvider(dialect, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
