package integration

import (
	"context"
	"slices"
	"testing"

	"github.com/magefree/skillcore-go/internal/game/rules"
	"github.com/magefree/skillcore-go/internal/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findRound(rounds []journal.Round, event rules.EventType, target string) (journal.Round, bool) {
	for _, r := range rounds {
		if r.Event == string(event) && r.Target == target {
			return r, true
		}
	}
	return journal.Round{}, false
}

func TestJournalRecordsScriptedAndBuiltinRounds(t *testing.T) {
	env := newGameEnv(t, "shenguanyu", "guojia")
	ctx := context.Background()

	env.damage(t, "guojia", "shenguanyu", 1)
	env.damage(t, "shenguanyu", "guojia", 1)

	live, ok := env.recorder.Journal("integration")
	require.True(t, ok)
	sum, err := live.Checksum()
	require.NoError(t, err)

	require.NoError(t, env.recorder.Save(ctx, "integration"))
	loaded, err := env.store.Load(ctx, "integration")
	require.NoError(t, err)
	same, err := loaded.VerifyChecksum(sum)
	require.NoError(t, err)
	assert.True(t, same)

	rounds := loaded.Snapshot()
	start, ok := findRound(rounds, rules.EventGameStart, "shenguanyu")
	require.True(t, ok)
	assert.Equal(t, 1, start.Depth)

	hit, ok := findRound(rounds, rules.EventDamaged, "shenguanyu")
	require.True(t, ok)
	assert.True(t, slices.Contains(hit.Invoked, "wuhun"))

	scripted, ok := findRound(rounds, rules.EventDamaged, "guojia")
	require.True(t, ok)
	assert.Equal(t, []string{"yiji"}, scripted.Invoked)
	assert.False(t, scripted.Consumed)

	// yiji's draw raises its own rounds from inside the DAMAGED round.
	nested := slices.ContainsFunc(rounds, func(r journal.Round) bool {
		return r.Event == string(rules.EventCardDrawnDone) && r.Target == "guojia" && r.Depth > 1
	})
	assert.True(t, nested)

	list, err := env.store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, sum.Hash, list[0].Checksum)
}

func TestJournalConsumedRoundsReachTheStore(t *testing.T) {
	env := newGameEnv(t, "weiyan", "guojia")
	ctx := context.Background()
	env.damage(t, "guojia", "weiyan", 1)
	require.NoError(t, env.recorder.Save(ctx, "integration"))

	counts, err := env.store.ConsumedBy(ctx)
	require.NoError(t, err)
	j, err := env.store.Load(ctx, "integration")
	require.NoError(t, err)

	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, len(j.Consumed()), total)
}
