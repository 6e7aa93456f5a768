// Package config loads skillsim settings from a YAML file and SKILLSIM_
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/magefree/skillcore-go/internal/game/room"
	"github.com/magefree/skillcore-go/internal/game/rules"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. SKILLSIM_ROOM_SEED.
const EnvPrefix = "SKILLSIM"

// Config is the full skillsim configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Room    RoomConfig    `mapstructure:"room"`
	Journal JournalConfig `mapstructure:"journal"`
	Content ContentConfig `mapstructure:"content"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// EngineConfig tunes trigger dispatch.
type EngineConfig struct {
	MaxDispatchDepth  int    `mapstructure:"max_dispatch_depth"`
	ScratchResetPhase string `mapstructure:"scratch_reset_phase"`
}

// RoomConfig holds the rule parameters of simulated games.
type RoomConfig struct {
	Seed         uint64 `mapstructure:"seed"`
	StartingHand int    `mapstructure:"starting_hand"`
	DrawPerTurn  int    `mapstructure:"draw_per_turn"`
	MaxTurns     int    `mapstructure:"max_turns"`
}

// JournalConfig controls dispatch journaling.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Driver  string `mapstructure:"driver"` // file, sqlite or postgres
	Dir     string `mapstructure:"dir"`
	DSN     string `mapstructure:"dsn"`
}

// ContentConfig points at optional content outside the binary.
type ContentConfig struct {
	Roster  string `mapstructure:"roster"`
	Scripts string `mapstructure:"scripts"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("engine.max_dispatch_depth", rules.DefaultMaxDepth)
	v.SetDefault("engine.scratch_reset_phase", rules.PhaseNotActive.String())
	v.SetDefault("room.seed", 1)
	v.SetDefault("room.starting_hand", 4)
	v.SetDefault("room.draw_per_turn", 2)
	v.SetDefault("room.max_turns", 20)
	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.driver", "file")
	v.SetDefault("journal.dir", "journals")
	v.SetDefault("journal.dsn", "")
	v.SetDefault("content.roster", "")
	v.SetDefault("content.scripts", "")
}

// Load reads path, if not empty, then applies environment overrides and
// defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration with nothing but defaults applied.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return cfg
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	var errs []error
	if c.Engine.MaxDispatchDepth <= 0 {
		errs = append(errs, fmt.Errorf("engine.max_dispatch_depth must be positive"))
	}
	if _, err := rules.ParsePhase(c.Engine.ScratchResetPhase); err != nil {
		errs = append(errs, fmt.Errorf("engine.scratch_reset_phase: %w", err))
	}
	if c.Room.StartingHand < 0 || c.Room.DrawPerTurn < 0 {
		errs = append(errs, fmt.Errorf("room card counts must not be negative"))
	}
	if c.Room.MaxTurns <= 0 {
		errs = append(errs, fmt.Errorf("room.max_turns must be positive"))
	}
	switch c.Journal.Driver {
	case "file", "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("invalid journal driver: %s (must be file, sqlite, or postgres)", c.Journal.Driver))
	}
	if c.Journal.Enabled && c.Journal.Driver != "file" && c.Journal.DSN == "" {
		errs = append(errs, fmt.Errorf("journal.dsn is required for the %s driver", c.Journal.Driver))
	}
	return errors.Join(errs...)
}

// RoomConfig converts the room and engine sections into room rules.
func (c *Config) RoomConfig() room.Config {
	phase, err := rules.ParsePhase(c.Engine.ScratchResetPhase)
	if err != nil {
		phase = rules.PhaseNotActive
	}
	return room.Config{
		Seed:         c.Room.Seed,
		StartingHand: c.Room.StartingHand,
		DrawPerTurn:  c.Room.DrawPerTurn,
		MaxTurns:     c.Room.MaxTurns,
		ScratchReset: phase,
	}
}
