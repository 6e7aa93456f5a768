package rules

import "testing"

func TestTurnManagerSequence(t *testing.T) {
	tm := NewTurnManager([]string{"Alice", "Bob"})
	if tm.CurrentPhase() != PhaseRoundStart {
		t.Fatalf("expected round start before first turn, got %s", tm.CurrentPhase())
	}

	tm.BeginTurn("Alice")
	expected := []Phase{PhaseStart, PhaseJudge, PhaseDraw, PhasePlay, PhaseDiscard, PhaseFinish}
	for i, exp := range expected {
		if tm.CurrentPhase() != exp {
			t.Fatalf("step %d: expected phase %s, got %s", i, exp, tm.CurrentPhase())
		}
		phase, more := tm.AdvancePhase()
		if i < len(expected)-1 && !more {
			t.Fatalf("step %d: turn ended early at %s", i, phase)
		}
	}
	if tm.CurrentPhase() != PhaseNotActive {
		t.Fatalf("expected not_active after finish, got %s", tm.CurrentPhase())
	}
	if _, more := tm.AdvancePhase(); more {
		t.Fatalf("expected no phase after not_active")
	}
}

func TestTurnManagerRotationSkipsDead(t *testing.T) {
	tm := NewTurnManager([]string{"Alice", "Bob", "Carol"})
	tm.BeginTurn("Alice")

	next := tm.NextSeat(func(seat string) bool { return seat != "Bob" })
	if next != "Carol" {
		t.Fatalf("expected Carol after Alice when Bob is dead, got %s", next)
	}
	tm.BeginTurn(next)
	if tm.TurnNumber() != 2 {
		t.Fatalf("expected turn 2, got %d", tm.TurnNumber())
	}
	if got := tm.NextSeat(nil); got != "Alice" {
		t.Fatalf("expected rotation to wrap to Alice, got %s", got)
	}
	if got := tm.NextSeat(func(string) bool { return false }); got != "" {
		t.Fatalf("expected empty seat when nobody is alive, got %s", got)
	}
}

func TestTurnManagerSeatAfter(t *testing.T) {
	tm := NewTurnManager([]string{"Alice", "Bob", "Carol"})
	tm.BeginTurn("Carol")

	if got := tm.SeatAfter("Alice", nil); got != "Bob" {
		t.Fatalf("expected Bob after Alice, got %s", got)
	}
	if got := tm.SeatAfter("Alice", func(seat string) bool { return seat != "Bob" }); got != "Carol" {
		t.Fatalf("expected Carol after Alice when Bob is dead, got %s", got)
	}
	if got := tm.SeatAfter("Nobody", nil); got != "Alice" {
		t.Fatalf("expected unknown seat to count from the active one, got %s", got)
	}
}

func TestTurnManagerSkipResetsPerTurn(t *testing.T) {
	tm := NewTurnManager([]string{"Alice", "Bob"})
	tm.BeginTurn("Alice")
	tm.Skip(PhaseDraw)
	if !tm.IsSkipped(PhaseDraw) {
		t.Fatalf("expected draw phase skipped")
	}
	tm.BeginTurn("Bob")
	if tm.IsSkipped(PhaseDraw) {
		t.Fatalf("expected skip set cleared for new turn")
	}
}

func TestParsePhase(t *testing.T) {
	phase, err := ParsePhase("Not_Active")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if phase != PhaseNotActive {
		t.Fatalf("expected not_active, got %s", phase)
	}
	if _, err := ParsePhase("upkeep"); err == nil {
		t.Fatalf("expected error for unknown phase")
	}
}
