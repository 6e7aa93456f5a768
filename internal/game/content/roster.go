package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/magefree/skillcore-go/internal/game/room"
	"github.com/magefree/skillcore-go/internal/game/skill"
	"gopkg.in/yaml.v3"
)

//go:embed roster.yaml
var embeddedRoster []byte

// ErrUnknownGeneral is returned for a general missing from the roster.
var ErrUnknownGeneral = errors.New("unknown general")

// RosterFile is the YAML structure of a roster.
type RosterFile struct {
	Generals map[string]General `yaml:"generals"`
}

// General is one playable character.
type General struct {
	Name   string   `yaml:"-"`
	MaxHP  int      `yaml:"max_hp"`
	Skills []string `yaml:"skills"`
}

// Roster maps general names to their skills.
type Roster struct {
	generals map[string]General
}

// ParseRoster parses a YAML roster.
func ParseRoster(data []byte) (*Roster, error) {
	var rf RosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse roster YAML: %w", err)
	}
	r := &Roster{generals: make(map[string]General, len(rf.Generals))}
	for name, g := range rf.Generals {
		if g.MaxHP <= 0 {
			return nil, fmt.Errorf("general %s: max_hp must be positive", name)
		}
		g.Name = name
		r.generals[name] = g
	}
	return r, nil
}

// LoadRoster reads a roster file. An empty path loads the built-in roster.
func LoadRoster(path string) (*Roster, error) {
	if path == "" {
		return DefaultRoster()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRoster(data)
}

// DefaultRoster returns the built-in roster.
func DefaultRoster() (*Roster, error) {
	return ParseRoster(embeddedRoster)
}

// General looks a general up by name.
func (r *Roster) General(name string) (General, bool) {
	g, ok := r.generals[name]
	return g, ok
}

// Skills returns the skills of a general. It fits room.WithGenerals.
func (r *Roster) Skills(general string) ([]string, bool) {
	g, ok := r.generals[general]
	if !ok {
		return nil, false
	}
	return slices.Clone(g.Skills), true
}

// Names returns the general names in sorted order.
func (r *Roster) Names() []string {
	names := make([]string, 0, len(r.generals))
	for name := range r.generals {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Validate checks that every skill of every general is registered.
func (r *Roster) Validate(reg *skill.Registry) error {
	var errs []error
	for _, name := range r.Names() {
		for _, s := range r.generals[name].Skills {
			if _, ok := reg.Lookup(s); !ok {
				errs = append(errs, fmt.Errorf("general %s: %w: %s", name, skill.ErrUnknownSkill, s))
			}
		}
	}
	return errors.Join(errs...)
}

// Seat seats a player as the given general.
func (r *Roster) Seat(player, general string) (room.Seat, error) {
	g, ok := r.generals[general]
	if !ok {
		return room.Seat{}, fmt.Errorf("%w: %s", ErrUnknownGeneral, general)
	}
	return room.Seat{
		Name:    player,
		General: general,
		MaxHP:   g.MaxHP,
		Skills:  slices.Clone(g.Skills),
	}, nil
}
