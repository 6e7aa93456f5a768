package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/magefree/skillcore-go/internal/game/rules"
	"github.com/magefree/skillcore-go/internal/game/skill"
	"go.uber.org/zap"
)

// Summary is the result of a finished or interrupted game.
type Summary struct {
	RoomID  string  `json:"room_id"`
	Turns   int     `json:"turns"`
	Winner  string  `json:"winner,omitempty"`
	Over    bool    `json:"over"`
	Players []State `json:"players"`
}

// Start deals starting hands and runs every player's GAME_START round in
// seat order.
func (r *Room) Start(ctx context.Context) error {
	if r.started {
		return nil
	}
	r.started = true
	for _, p := range r.players {
		if err := r.DrawCards(ctx, p, r.cfg.StartingHand); err != nil {
			return fmt.Errorf("dealing to %s: %w", p.name, err)
		}
	}
	for _, p := range r.players {
		if _, err := r.RaiseEvent(ctx, rules.EventGameStart, p, nil); err != nil {
			return fmt.Errorf("game start for %s: %w", p.name, err)
		}
	}
	r.logger.Info("game started", zap.Int("players", len(r.players)))
	return nil
}

// Run starts the game and plays turns until one player is left, the turn
// limit is reached or the deck runs out.
func (r *Room) Run(ctx context.Context) (Summary, error) {
	if err := r.Start(ctx); err != nil {
		return r.summary(), err
	}
	for !r.over && r.turns.TurnNumber() < r.cfg.MaxTurns {
		if err := r.PlayTurn(ctx); err != nil {
			if errors.Is(err, ErrDeckExhausted) {
				r.logger.Info("draw pile exhausted, ending game")
				break
			}
			return r.summary(), err
		}
	}
	return r.summary(), nil
}

func (r *Room) summary() Summary {
	return Summary{
		RoomID:  r.id,
		Turns:   r.turns.TurnNumber(),
		Winner:  r.winner,
		Over:    r.over,
		Players: r.Snapshot(),
	}
}

// PlayTurn plays the next alive player's turn through all phases.
func (r *Room) PlayTurn(ctx context.Context) error {
	if r.over {
		return ErrGameOver
	}
	if !r.started {
		if err := r.Start(ctx); err != nil {
			return err
		}
	}
	next := r.players[0].name
	if r.turns.TurnNumber() > 0 {
		next = r.nextSeat()
	}
	if next == "" || !r.byName[next].alive {
		return ErrGameOver
	}
	p := r.byName[next]
	r.turns.BeginTurn(next)
	if !p.faceUp {
		for phase, more := r.turns.CurrentPhase(), true; more; phase, more = r.turns.AdvancePhase() {
			if phase == r.cfg.ScratchReset {
				r.scratch.Clear(p.name)
			}
		}
		clear(p.pending)
		r.logger.Debug("turn passed face down", zap.String("player", next))
		if err := r.TurnOver(ctx, p); err != nil {
			return err
		}
		return r.endTurn(ctx, p)
	}
	for phase := range p.pending {
		r.turns.Skip(phase)
	}
	clear(p.pending)

	r.logger.Debug("turn started", zap.Int("turn", r.turns.TurnNumber()), zap.String("player", next))
	if _, err := r.RaiseEvent(ctx, rules.EventTurnStart, p, nil); err != nil {
		return err
	}

	for phase := r.turns.CurrentPhase(); ; {
		if err := r.enterPhase(ctx, p, phase); err != nil {
			return err
		}
		if r.over || !p.alive {
			break
		}
		var more bool
		phase, more = r.turns.AdvancePhase()
		if !more {
			break
		}
	}
	return r.endTurn(ctx, p)
}

// endTurn forgets turn-scoped watcher state and moves p out of its turn.
func (r *Room) endTurn(ctx context.Context, p *Player) error {
	r.watchers.ResetScope(rules.WatcherScopeTurn)
	if r.over {
		return nil
	}
	return r.enterPhase(ctx, p, rules.PhaseNotActive)
}

// nextSeat picks who plays next: a pending extra turn first, then the
// seat after the player whose regular turn came last.
func (r *Room) nextSeat() string {
	alive := func(seat string) bool { return r.byName[seat].alive }
	for len(r.extra) > 0 {
		name := r.extra[0]
		r.extra = r.extra[1:]
		if !alive(name) {
			continue
		}
		if r.resume == "" {
			r.resume = r.turns.ActivePlayer()
		}
		return name
	}
	if r.resume != "" {
		from := r.resume
		r.resume = ""
		return r.turns.SeatAfter(from, alive)
	}
	return r.turns.NextSeat(alive)
}

// GainExtraTurn queues an extra turn for p after the current turn.
func (r *Room) GainExtraTurn(_ context.Context, p skill.Player) error {
	seat, err := r.mustLookup(p)
	if err != nil {
		return err
	}
	r.extra = append(r.extra, seat.name)
	r.logger.Debug("extra turn queued", zap.String("player", seat.name))
	return nil
}

// enterPhase raises PHASE_CHANGE for the phase and runs its body unless a
// skill skipped it.
func (r *Room) enterPhase(ctx context.Context, p *Player, phase rules.Phase) error {
	if phase == r.cfg.ScratchReset {
		r.scratch.Clear(p.name)
	}
	if r.turns.IsSkipped(phase) {
		return nil
	}
	change := &rules.PhaseChange{Player: p.name, Phase: phase}
	consumed, err := r.RaiseEvent(ctx, rules.EventPhaseChange, p, change)
	if err != nil {
		return err
	}
	if consumed || change.Skipped || r.turns.IsSkipped(phase) {
		r.logger.Debug("phase skipped", zap.String("player", p.name), zap.Stringer("phase", phase))
		return nil
	}
	switch phase {
	case rules.PhaseDraw:
		return r.drawPhase(ctx, p)
	case rules.PhasePlay:
		return r.playPhase(ctx, p)
	case rules.PhaseDiscard:
		return r.discardPhase(ctx, p)
	}
	return nil
}

func (r *Room) drawPhase(ctx context.Context, p *Player) error {
	draw := &rules.DrawCards{Num: r.cfg.DrawPerTurn}
	if _, err := r.RaiseEvent(ctx, rules.EventDrawNCards, p, draw); err != nil {
		return err
	}
	return r.DrawCards(ctx, p, draw.Num)
}

// HandLimit returns how many cards the player may keep after discarding.
func (r *Room) HandLimit(p skill.Player) int {
	return max(0, p.HP()+r.engine.MaxCardsExtra(p))
}

func (r *Room) discardPhase(ctx context.Context, p *Player) error {
	over := len(p.hand) - r.HandLimit(p)
	if over <= 0 {
		return nil
	}
	ids, err := r.AskForDiscard(ctx, p, "gamerule", over, false)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := r.ThrowCard(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
