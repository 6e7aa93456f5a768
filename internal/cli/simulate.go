package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/magefree/skillcore-go/internal/game/room"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [general...]",
	Short: "Play one game between generals",
	Long: `Play one game between the named generals, seated in order as p1, p2, ...

Without arguments shenlvbu, shenzhugeliang and shensimayi are seated.
Prompts are answered with each skill's default choice unless --random is set.
When journaling is enabled the dispatch rounds of the game are saved.

Examples:
  skillsim simulate
  skillsim simulate shenguanyu lubu --seed 42 --turns 10 --random`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().Uint64("seed", 0, "deck and answer seed (0 keeps room.seed)")
	simulateCmd.Flags().Int("turns", 0, "turn limit (0 keeps room.max_turns)")
	simulateCmd.Flags().Bool("random", false, "answer prompts randomly instead of by default choice")
	simulateCmd.Flags().Bool("json", false, "print the summary as JSON")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()
	ctx := cmd.Context()

	cfg := e.cfg.RoomConfig()
	if seed, _ := cmd.Flags().GetUint64("seed"); seed != 0 {
		cfg.Seed = seed
	}
	if turns, _ := cmd.Flags().GetInt("turns"); turns > 0 {
		cfg.MaxTurns = turns
	}
	random, _ := cmd.Flags().GetBool("random")

	recorder, store, err := e.openJournal(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	summary, err := e.play(ctx, game{
		generals: args,
		cfg:      cfg,
		random:   random,
		recorder: recorder,
	})
	if err != nil {
		return err
	}
	if recorder != nil {
		if err := recorder.Save(ctx, summary.RoomID); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	printSummary(out, summary)
	return nil
}

func printSummary(out io.Writer, s room.Summary) {
	fmt.Fprintf(out, "Game %s\n", s.RoomID)
	switch {
	case s.Winner != "":
		fmt.Fprintf(out, "Winner: %s (%s) after %d turns\n", s.Winner, winnerGeneral(s), s.Turns)
	default:
		fmt.Fprintf(out, "No winner after %d turns\n", s.Turns)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%-6s %-18s %-6s %-5s %-4s %s\n", "SEAT", "GENERAL", "STATE", "HP", "HAND", "MARKS")
	fmt.Fprintln(out, strings.Repeat("-", 60))
	for _, p := range s.Players {
		state := "alive"
		if !p.Alive {
			state = "dead"
		}
		fmt.Fprintf(out, "%-6s %-18s %-6s %-5s %-4d %s\n",
			p.Name, p.General, state, fmt.Sprintf("%d/%d", p.HP, p.MaxHP), p.Hand, formatMarks(p.Marks))
	}
}

func formatMarks(marks map[string]int) string {
	if len(marks) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(marks))
	for name, n := range marks {
		parts = append(parts, fmt.Sprintf("%s=%d", name, n))
	}
	slices.Sort(parts)
	return strings.Join(parts, " ")
}
