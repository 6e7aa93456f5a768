// Package cli implements the skillsim command line.
package cli

import (
	"context"
	"fmt"

	"github.com/magefree/skillcore-go/internal/config"
	"github.com/magefree/skillcore-go/internal/game/content"
	"github.com/magefree/skillcore-go/internal/game/script"
	"github.com/magefree/skillcore-go/internal/game/skill"
	"github.com/magefree/skillcore-go/internal/logging"
	"github.com/magefree/skillcore-go/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "skillsim",
	Short: "skillsim - skill trigger resolution simulator",
	Long: `skillsim drives the skill engine through simulated games.

It lists the registered skills and generals, plays single games or batches
of games between generals, and inspects recorded dispatch journals.

Example:
  skillsim simulate shenlvbu shenzhugeliang shensimayi --seed 7`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.Version = version.Short()
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level")
}

// env is what every command runs with.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

func setup() (*env, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return &env{cfg: cfg, logger: logger}, nil
}

// registry builds a fresh skill registry: the bundled content plus the
// configured Lua scripts. Scripted skills share one Lua state, so every
// concurrently played game needs its own registry.
func (e *env) registry() (*skill.Registry, error) {
	reg, err := content.NewRegistry()
	if err != nil {
		return nil, err
	}
	if err := script.RegisterDir(reg, e.cfg.Content.Scripts, e.logger); err != nil {
		return nil, fmt.Errorf("failed to load scripts: %w", err)
	}
	return reg, nil
}

// roster loads the configured roster and checks it against reg.
func (e *env) roster(reg *skill.Registry) (*content.Roster, error) {
	roster, err := content.LoadRoster(e.cfg.Content.Roster)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	if err := roster.Validate(reg); err != nil {
		return nil, fmt.Errorf("invalid roster: %w", err)
	}
	return roster, nil
}
