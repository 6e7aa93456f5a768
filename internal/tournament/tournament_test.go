package tournament

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generals(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("g%d", i+1)
	}
	return out
}

func TestScheduleMeetsEveryoneOnce(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 8} {
		t.Run(fmt.Sprintf("%d entrants", n), func(t *testing.T) {
			tm, err := New(generals(n), 1)
			require.NoError(t, err)
			require.NoError(t, tm.Start())

			seen := make(map[string]int)
			perRound := make(map[int]map[string]bool)
			for _, p := range tm.Pairings() {
				require.NotEqual(t, p.First, p.Second)
				key := p.First + "-" + p.Second
				if p.First > p.Second {
					key = p.Second + "-" + p.First
				}
				seen[key]++

				if perRound[p.Round] == nil {
					perRound[p.Round] = make(map[string]bool)
				}
				assert.False(t, perRound[p.Round][p.First], "%s plays twice in round %d", p.First, p.Round)
				assert.False(t, perRound[p.Round][p.Second], "%s plays twice in round %d", p.Second, p.Round)
				perRound[p.Round][p.First] = true
				perRound[p.Round][p.Second] = true
			}
			assert.Len(t, seen, n*(n-1)/2)
			for key, count := range seen {
				assert.Equal(t, 1, count, key)
			}
		})
	}
}

func TestRecordGameScoring(t *testing.T) {
	tm, err := New([]string{"lubu", "caopi"}, 3)
	require.NoError(t, err)
	require.NoError(t, tm.Start())
	require.Equal(t, 1, tm.Rounds())

	require.NoError(t, tm.RecordGame(1, "lubu", "caopi", "lubu"))
	require.NoError(t, tm.RecordGame(1, "caopi", "lubu", ""))
	assert.Equal(t, StateInProgress, tm.State())
	require.NoError(t, tm.RecordGame(1, "lubu", "caopi", "caopi"))
	assert.Equal(t, StateFinished, tm.State())
	assert.NotNil(t, tm.EndTime)

	standings := tm.Standings()
	require.Len(t, standings, 2)
	// Tied on points and wins, so by name.
	assert.Equal(t, Entrant{General: "caopi", Points: 4, Wins: 1, Losses: 1, Draws: 1}, standings[0])
	assert.Equal(t, Entrant{General: "lubu", Points: 4, Wins: 1, Losses: 1, Draws: 1}, standings[1])

	p := tm.Pairings()[0]
	assert.Equal(t, 3, p.Played())
	assert.True(t, p.Finished())
}

func TestRecordGameErrors(t *testing.T) {
	tm, err := New(generals(3), 1)
	require.NoError(t, err)
	assert.Error(t, tm.RecordGame(1, "g1", "g2", "g1"), "not started")
	require.NoError(t, tm.Start())
	assert.Error(t, tm.Start())

	assert.Error(t, tm.RecordGame(0, "g1", "g2", "g1"))
	assert.Error(t, tm.RecordGame(9, "g1", "g2", "g1"))

	p := tm.Pairings()[0]
	assert.ErrorIs(t, tm.RecordGame(p.Round, p.First, "nobody", p.First), ErrPairingNotFound)
	assert.Error(t, tm.RecordGame(p.Round, p.First, p.Second, "nobody"))
	require.NoError(t, tm.RecordGame(p.Round, p.First, p.Second, p.Second))
	assert.ErrorIs(t, tm.RecordGame(p.Round, p.First, p.Second, p.Second), ErrPairingComplete)
}

func TestNewValidates(t *testing.T) {
	_, err := New([]string{"lubu"}, 1)
	assert.ErrorIs(t, err, ErrNotEnoughEntrants)
	_, err = New([]string{"lubu", "lubu"}, 1)
	assert.ErrorContains(t, err, "entered twice")
	_, err = New([]string{"lubu", "caopi"}, 0)
	assert.Error(t, err)

	tm, err := New([]string{"lubu", "caopi"}, 1)
	require.NoError(t, err)
	assert.Equal(t, StateWaiting, tm.State())
	assert.Equal(t, "WAITING", tm.State().String())
	assert.NotEmpty(t, tm.ID)
}
