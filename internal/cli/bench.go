package cli

import (
	"fmt"
	"io"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/magefree/skillcore-go/internal/game/room"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var benchCmd = &cobra.Command{
	Use:   "bench [general...]",
	Short: "Play a batch of games and tally the winners",
	Long: `Play --games games between the same generals, each seeded with
--seed plus its index, running up to --parallel games at once.

Examples:
  skillsim bench --games 200
  skillsim bench shenguanyu shenlvmeng --games 50 --parallel 4 --random`,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().Int("games", 100, "number of games to play")
	benchCmd.Flags().Int("parallel", runtime.NumCPU(), "games played at once")
	benchCmd.Flags().Uint64("seed", 1, "seed of the first game")
	benchCmd.Flags().Int("turns", 0, "turn limit per game (0 keeps room.max_turns)")
	benchCmd.Flags().Bool("random", false, "answer prompts randomly instead of by default choice")
}

// tally aggregates the summaries of a batch.
type tally struct {
	Games    int
	Draws    int
	Turns    int
	Wins     map[string]int
	Duration time.Duration
}

func newTally(summaries []room.Summary) tally {
	t := tally{Games: len(summaries), Wins: make(map[string]int)}
	for _, s := range summaries {
		t.Turns += s.Turns
		if general := winnerGeneral(s); general != "" {
			t.Wins[general]++
		} else {
			t.Draws++
		}
	}
	return t
}

func runBench(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()

	games, _ := cmd.Flags().GetInt("games")
	parallel, _ := cmd.Flags().GetInt("parallel")
	seed, _ := cmd.Flags().GetUint64("seed")
	turns, _ := cmd.Flags().GetInt("turns")
	random, _ := cmd.Flags().GetBool("random")
	if games <= 0 {
		return fmt.Errorf("--games must be positive")
	}
	if parallel <= 0 {
		parallel = 1
	}

	start := time.Now()
	summaries := make([]room.Summary, games)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(parallel)
	for i := range games {
		g.Go(func() error {
			cfg := e.cfg.RoomConfig()
			cfg.Seed = seed + uint64(i)
			if turns > 0 {
				cfg.MaxTurns = turns
			}
			s, err := e.play(ctx, game{generals: args, cfg: cfg, random: random})
			if err != nil {
				return err
			}
			summaries[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	t := newTally(summaries)
	t.Duration = time.Since(start)
	e.logger.Info("bench finished",
		zap.Int("games", t.Games),
		zap.Int("parallel", parallel),
		zap.Duration("duration", t.Duration),
	)
	printTally(cmd.OutOrStdout(), t)
	return nil
}

func printTally(out io.Writer, t tally) {
	fmt.Fprintf(out, "Played %d games in %s (avg %.1f turns)\n\n",
		t.Games, t.Duration.Round(time.Millisecond), float64(t.Turns)/float64(max(t.Games, 1)))
	fmt.Fprintf(out, "%-18s %-6s %s\n", "GENERAL", "WINS", "RATE")
	fmt.Fprintln(out, strings.Repeat("-", 36))

	generals := make([]string, 0, len(t.Wins))
	for general := range t.Wins {
		generals = append(generals, general)
	}
	slices.SortFunc(generals, func(a, b string) int {
		if t.Wins[a] != t.Wins[b] {
			return t.Wins[b] - t.Wins[a]
		}
		return strings.Compare(a, b)
	})
	for _, general := range generals {
		fmt.Fprintf(out, "%-18s %-6d %5.1f%%\n", general, t.Wins[general], 100*float64(t.Wins[general])/float64(t.Games))
	}
	fmt.Fprintf(out, "%-18s %-6d %5.1f%%\n", "(no winner)", t.Draws, 100*float64(t.Draws)/float64(t.Games))
}
