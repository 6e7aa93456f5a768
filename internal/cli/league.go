package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/magefree/skillcore-go/internal/tournament"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var leagueCmd = &cobra.Command{
	Use:   "league [general...]",
	Short: "Play a round-robin league between generals",
	Long: `Pair every general with every other and play --games games per
pairing, alternating who sits first. Without arguments the whole roster
enters. A win scores 3 points and a game with no winner 1.

Examples:
  skillsim league --games 4
  skillsim league shenguanyu shenlvbu lubu caopi --games 10 --parallel 8`,
	RunE: runLeague,
}

func init() {
	rootCmd.AddCommand(leagueCmd)

	leagueCmd.Flags().Int("games", 2, "games per pairing")
	leagueCmd.Flags().Int("parallel", runtime.NumCPU(), "games played at once")
	leagueCmd.Flags().Uint64("seed", 1, "seed of the first game")
	leagueCmd.Flags().Int("turns", 0, "turn limit per game (0 keeps room.max_turns)")
	leagueCmd.Flags().Bool("random", false, "answer prompts randomly instead of by default choice")
}

func runLeague(cmd *cobra.Command, args []string) error {
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
	if parallel <= 0 {
		parallel = 1
	}

	entrants := args
	if len(entrants) == 0 {
		reg, err := e.registry()
		if err != nil {
			return err
		}
		roster, err := e.roster(reg)
		if err != nil {
			return err
		}
		entrants = roster.Names()
	}
	league, err := tournament.New(entrants, games)
	if err != nil {
		return err
	}
	if err := league.Start(); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(parallel)
	var index uint64
	for _, p := range league.Pairings() {
		for n := range p.Games {
			generals := []string{p.First, p.Second}
			if n%2 == 1 {
				generals = []string{p.Second, p.First}
			}
			cfg := e.cfg.RoomConfig()
			cfg.Seed = seed + index
			index++
			if turns > 0 {
				cfg.MaxTurns = turns
			}
			g.Go(func() error {
				s, err := e.play(ctx, game{generals: generals, cfg: cfg, random: random})
				if err != nil {
					return err
				}
				return league.RecordGame(p.Round, p.First, p.Second, winnerGeneral(s))
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	e.logger.Info("league finished",
		zap.String("league_id", league.ID),
		zap.Int("entrants", len(entrants)),
		zap.Int("rounds", league.Rounds()),
		zap.Stringer("state", league.State()),
	)
	printStandings(cmd.OutOrStdout(), league)
	return nil
}

func printStandings(out io.Writer, league *tournament.Tournament) {
	fmt.Fprintf(out, "League %s: %d rounds, %d games per pairing\n\n", league.ID, league.Rounds(), league.GamesPerPairing)
	fmt.Fprintf(out, "%-4s %-20s %-6s %-4s %-4s %s\n", "POS", "GENERAL", "PTS", "W", "L", "D")
	fmt.Fprintln(out, strings.Repeat("-", 48))
	for i, entrant := range league.Standings() {
		fmt.Fprintf(out, "%-4d %-20s %-6d %-4d %-4d %d\n",
			i+1, entrant.General, entrant.Points, entrant.Wins, entrant.Losses, entrant.Draws)
	}
}
