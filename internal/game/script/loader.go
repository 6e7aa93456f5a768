package script

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefree/skillcore-go/internal/game/skill"
	"go.uber.org/zap"
)

// LoadDir runs every *.lua file of dir in lexical order.
func LoadDir(dir string, logger *zap.Logger) (*Runtime, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("script dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("script dir %s is not a directory", dir)
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.lua"))
	if err != nil {
		return nil, err
	}
	rt := New(logger)
	for _, path := range paths {
		if err := rt.LoadFile(path); err != nil {
			return nil, err
		}
		rt.logger.Debug("lua script loaded", zap.String("path", path))
	}
	return rt, nil
}

// RegisterDir loads dir and registers its skills in reg. An empty dir is a
// no-op.
func RegisterDir(reg *skill.Registry, dir string, logger *zap.Logger) error {
	if dir == "" {
		return nil
	}
	rt, err := LoadDir(dir, logger)
	if err != nil {
		return err
	}
	return rt.Register(reg)
}
