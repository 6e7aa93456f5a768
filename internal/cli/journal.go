package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/magefree/skillcore-go/internal/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect recorded dispatch journals",
	Long: `Inspect the dispatch journals written by "skillsim simulate" when
journal.enabled is set. The store is chosen by journal.driver.`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored journals",
	Args:  cobra.NoArgs,
	RunE:  listJournals,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <game-id>",
	Short: "Print the rounds of a journal",
	Long: `Print the dispatch rounds of one game in order.

Examples:
  skillsim journal show 3f2a...            # every round
  skillsim journal show 3f2a... --consumed # only rounds a skill consumed`,
	Args: cobra.ExactArgs(1),
	RunE: showJournal,
}

var journalVerifyCmd = &cobra.Command{
	Use:   "verify <game-id> <game-id>",
	Short: "Check that two games dispatched identical rounds",
	Args:  cobra.ExactArgs(2),
	RunE:  verifyJournals,
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd, journalShowCmd, journalVerifyCmd)

	journalShowCmd.Flags().Bool("consumed", false, "only show consumed rounds")
}

func listJournals(cmd *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	store, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	summaries, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list journals: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No journals found.")
		return nil
	}
	fmt.Fprintf(out, "%-36s %-7s %-20s %s\n", "GAME", "ROUNDS", "CREATED", "CHECKSUM")
	fmt.Fprintln(out, strings.Repeat("-", 90))
	for _, s := range summaries {
		fmt.Fprintf(out, "%-36s %-7d %-20s %.16s\n",
			s.GameID, s.Rounds, s.CreatedAt.Format(time.DateTime), s.Checksum)
	}
	return nil
}

func showJournal(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	store, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	j, err := store.Load(ctx, args[0])
	if err != nil {
		return err
	}
	rounds := j.Snapshot()
	if consumed, _ := cmd.Flags().GetBool("consumed"); consumed {
		rounds = j.Consumed()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Game %s: %d rounds\n\n", j.GameID, j.Size())
	for _, r := range rounds {
		printRound(cmd, r)
	}
	return nil
}

func printRound(cmd *cobra.Command, r journal.Round) {
	line := fmt.Sprintf("%5d %s%s -> %s", r.Seq, strings.Repeat("  ", max(r.Depth-1, 0)), r.Event, r.Target)
	if len(r.Invoked) > 0 {
		line += " [" + strings.Join(r.Invoked, " ") + "]"
	}
	if r.Consumed {
		line += " consumed by " + r.ConsumedBy
	}
	if r.Err != "" {
		line += " error: " + r.Err
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
}

func verifyJournals(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	store, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	first, err := store.Load(ctx, args[0])
	if err != nil {
		return err
	}
	second, err := store.Load(ctx, args[1])
	if err != nil {
		return err
	}
	sum, err := first.Checksum()
	if err != nil {
		return err
	}
	same, err := second.VerifyChecksum(sum)
	if err != nil {
		return err
	}
	if !same {
		return fmt.Errorf("journals %s and %s differ", args[0], args[1])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "journals match (%d rounds)\n", sum.Rounds)
	return nil
}
