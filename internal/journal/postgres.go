package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresStore keeps journals in PostgreSQL through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and applies migrations.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if err := migratePool(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

// migratePool runs goose through a database/sql handle on the pool's
// connection config.
func migratePool(ctx context.Context, pool *pgxpool.Pool) error {
	connStr := stdlib.RegisterConnConfig(pool.Config().ConnConfig)
	defer stdlib.UnregisterConnConfig(connStr)
	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()
	return migrate(ctx, goose.DialectPostgres, sqlDB)
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Save replaces the stored journal of the game.
func (s *PostgresStore) Save(ctx context.Context, j *Journal) error {
	sum, err := j.Checksum()
	if err != nil {
		return err
	}
	rounds := j.Snapshot()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM journals WHERE game_id = $1`, j.GameID); err != nil {
		return fmt.Errorf("clear journal: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO journals (game_id, checksum, round_count, created_at) VALUES ($1, $2, $3, $4)`,
		j.GameID, sum.Hash, len(rounds), j.CreatedAt.UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("insert journal: %w", err)
	}

	batch := &pgx.Batch{}
	for _, r := range rounds {
		batch.Queue(`
INSERT INTO journal_rounds (
	game_id, seq, round_id, event, target, depth, invoked, consumed, consumed_by, err, err_kind
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			j.GameID, r.Seq, r.RoundID, r.Event, r.Target, r.Depth,
			joinInvoked(r.Invoked), r.Consumed, r.ConsumedBy, r.Err, r.ErrKind,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert rounds: %w", err)
	}
	return tx.Commit(ctx)
}

// Load reads a journal and verifies its checksum.
func (s *PostgresStore) Load(ctx context.Context, gameID string) (*Journal, error) {
	var (
		checksum  string
		createdAt int64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT checksum, created_at FROM journals WHERE game_id = $1`, gameID,
	).Scan(&checksum, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
SELECT seq, round_id, event, target, depth, invoked, consumed, consumed_by, err, err_kind
FROM journal_rounds WHERE game_id = $1 ORDER BY seq`, gameID)
	if err != nil {
		return nil, fmt.Errorf("load rounds: %w", err)
	}
	defer rows.Close()

	j := New(gameID)
	j.CreatedAt = time.UnixMilli(createdAt).UTC()
	for rows.Next() {
		var (
			r       Round
			invoked string
		)
		if err := rows.Scan(&r.Seq, &r.RoundID, &r.Event, &r.Target, &r.Depth, &invoked, &r.Consumed, &r.ConsumedBy, &r.Err, &r.ErrKind); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		if r.Invoked, err = splitInvoked(invoked); err != nil {
			return nil, fmt.Errorf("round %d: %w", r.Seq, err)
		}
		j.Rounds = append(j.Rounds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rounds: %w", err)
	}
	if err := j.verify(checksum); err != nil {
		return nil, err
	}
	return j, nil
}

// List returns every stored journal, oldest first.
func (s *PostgresStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT game_id, round_count, checksum, created_at FROM journals ORDER BY created_at, game_id`)
	if err != nil {
		return nil, fmt.Errorf("list journals: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum       Summary
			createdAt int64
		)
		if err := rows.Scan(&sum.GameID, &sum.Rounds, &sum.Checksum, &createdAt); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		sum.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}
