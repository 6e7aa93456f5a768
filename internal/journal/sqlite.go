package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps journals in a SQLite database.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLite opens the database at path and applies migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate(ctx, goose.DialectSQLite3, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// Close releases the SQLite connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save replaces the stored journal of the game.
func (s *SQLiteStore) Save(ctx context.Context, j *Journal) error {
	sum, err := j.Checksum()
	if err != nil {
		return err
	}
	rounds := j.Snapshot()

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM journal_rounds WHERE game_id = ?`, j.GameID); err != nil {
		return fmt.Errorf("clear rounds: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM journals WHERE game_id = ?`, j.GameID); err != nil {
		return fmt.Errorf("clear journal: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO journals (game_id, checksum, round_count, created_at)
VALUES (?, ?, ?, ?)
`, j.GameID, sum.Hash, len(rounds), j.CreatedAt.UTC().UnixMilli()); err != nil {
		return fmt.Errorf("insert journal: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO journal_rounds (
	game_id, seq, round_id, event, target, depth, invoked, consumed, consumed_by, err, err_kind
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return fmt.Errorf("prepare round insert: %w", err)
	}
	defer stmt.Close()
	for _, r := range rounds {
		if _, err := stmt.ExecContext(ctx,
			j.GameID, r.Seq, r.RoundID, r.Event, r.Target, r.Depth,
			joinInvoked(r.Invoked), r.Consumed, r.ConsumedBy, r.Err, r.ErrKind,
		); err != nil {
			return fmt.Errorf("insert round %d: %w", r.Seq, err)
		}
	}
	return tx.Commit()
}

// Load reads a journal and verifies its checksum.
func (s *SQLiteStore) Load(ctx context.Context, gameID string) (*Journal, error) {
	var (
		checksum  string
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT checksum, created_at FROM journals WHERE game_id = ?`, gameID,
	).Scan(&checksum, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT seq, round_id, event, target, depth, invoked, consumed, consumed_by, err, err_kind
FROM journal_rounds WHERE game_id = ? ORDER BY seq
`, gameID)
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
func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT game_id, round_count, checksum, created_at FROM journals`)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journals: %w", err)
	}
	sortSummaries(out)
	return out, nil
}

// ConsumedBy counts, per skill, the rounds that skill consumed across all
// stored journals.
func (s *SQLiteStore) ConsumedBy(ctx context.Context) (map[string]int, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT consumed_by, COUNT(*) FROM journal_rounds
WHERE consumed = ? GROUP BY consumed_by
`, true)
	if err != nil {
		return nil, fmt.Errorf("count consumed rounds: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			name string
			n    int
		)
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[name] = n
	}
	return out, rows.Err()
}
