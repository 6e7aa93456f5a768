package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/magefree/skillcore-go/internal/game/engine"
	"github.com/magefree/skillcore-go/internal/game/prompt"
	"github.com/magefree/skillcore-go/internal/game/room"
	"github.com/magefree/skillcore-go/internal/journal"
	"go.uber.org/zap"
)

// defaultGenerals are seated when a command names none.
var defaultGenerals = []string{"shenlvbu", "shenzhugeliang", "shensimayi"}

// game describes one simulated game.
type game struct {
	id       string
	generals []string
	cfg      room.Config
	random   bool
	recorder *journal.Recorder
}

// play builds a room for g and runs it to the end.
func (e *env) play(ctx context.Context, g game) (room.Summary, error) {
	if g.id == "" {
		g.id = uuid.NewString()
	}
	generals := g.generals
	if len(generals) == 0 {
		generals = defaultGenerals
	}

	reg, err := e.registry()
	if err != nil {
		return room.Summary{}, err
	}
	roster, err := e.roster(reg)
	if err != nil {
		return room.Summary{}, err
	}
	seats := make([]room.Seat, 0, len(generals))
	for i, general := range generals {
		seat, err := roster.Seat(fmt.Sprintf("p%d", i+1), general)
		if err != nil {
			return room.Summary{}, err
		}
		seats = append(seats, seat)
	}

	engineOpts := []engine.Option{engine.WithMaxDepth(e.cfg.Engine.MaxDispatchDepth)}
	if g.recorder != nil {
		engineOpts = append(engineOpts, engine.WithObserver(g.recorder.StartRecording(g.id)))
		defer g.recorder.StopRecording(g.id)
	}
	opts := []room.Option{
		room.WithID(g.id),
		room.WithConfig(g.cfg),
		room.WithLogger(e.logger),
		room.WithGenerals(roster.Skills),
		room.WithEngineOptions(engineOpts...),
	}
	if g.random {
		opts = append(opts, room.WithAnswerer(prompt.NewRandom(g.cfg.Seed)))
	}

	r, err := room.New(reg, seats, opts...)
	if err != nil {
		return room.Summary{}, err
	}
	summary, err := r.Run(ctx)
	if err != nil {
		return summary, fmt.Errorf("game %s: %w", g.id, err)
	}
	e.logger.Debug("game finished",
		zap.String("game_id", g.id),
		zap.Int("turns", summary.Turns),
		zap.String("winner", summary.Winner),
	)
	return summary, nil
}

// openJournal returns a recorder backed by the configured store, or nil
// when journaling is disabled.
func (e *env) openJournal(ctx context.Context) (*journal.Recorder, journal.Store, error) {
	if !e.cfg.Journal.Enabled {
		return nil, nil, nil
	}
	store, err := e.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	return journal.NewRecorder(e.logger, store), store, nil
}

func (e *env) openStore(ctx context.Context) (journal.Store, error) {
	jc := e.cfg.Journal
	store, err := journal.Open(ctx, jc.Driver, jc.Dir, jc.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal store: %w", err)
	}
	return store, nil
}

// winnerGeneral maps the winning player of s to its general.
func winnerGeneral(s room.Summary) string {
	for _, p := range s.Players {
		if p.Name == s.Winner {
			return p.General
		}
	}
	return ""
}
