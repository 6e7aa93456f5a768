package journal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Summary describes a stored journal without its rounds.
type Summary struct {
	GameID    string
	Rounds    int
	Checksum  string
	CreatedAt time.Time
}

// Store persists journals.
type Store interface {
	Save(ctx context.Context, j *Journal) error
	Load(ctx context.Context, gameID string) (*Journal, error)
	List(ctx context.Context) ([]Summary, error)
	Close() error
}

// FileStore keeps one gzip file per game in a directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a store writing under dir.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("journal directory is required")
	}
	return &FileStore{dir: filepath.Clean(dir)}, nil
}

func (s *FileStore) Save(ctx context.Context, j *Journal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return j.SaveToFile(s.dir)
}

func (s *FileStore) Load(ctx context.Context, gameID string) (*Journal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFromFile(s.dir, gameID)
}

// List loads every journal in the directory, oldest first.
func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.journal"))
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		gameID := strings.TrimSuffix(filepath.Base(path), ".journal")
		j, err := LoadFromFile(s.dir, gameID)
		if err != nil {
			return nil, err
		}
		sum, err := j.Checksum()
		if err != nil {
			return nil, err
		}
		out = append(out, Summary{GameID: j.GameID, Rounds: j.Size(), Checksum: sum.Hash, CreatedAt: j.CreatedAt})
	}
	sortSummaries(out)
	return out, nil
}

func (s *FileStore) Close() error { return nil }

// Remove deletes the stored journal of a game.
func (s *FileStore) Remove(gameID string) error {
	if err := os.Remove(fileName(s.dir, gameID)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, gameID)
		}
		return err
	}
	return nil
}

func sortSummaries(out []Summary) {
	slices.SortStableFunc(out, func(a, b Summary) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.GameID, b.GameID)
	})
}
