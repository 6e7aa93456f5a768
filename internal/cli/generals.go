package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var generalsCmd = &cobra.Command{
	Use:   "generals",
	Short: "List the generals of the roster",
	Args:  cobra.NoArgs,
	RunE:  listGenerals,
}

func init() {
	rootCmd.AddCommand(generalsCmd)
}

func listGenerals(cmd *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	reg, err := e.registry()
	if err != nil {
		return err
	}
	roster, err := e.roster(reg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-20s %-4s %s\n", "GENERAL", "HP", "SKILLS")
	fmt.Fprintln(out, strings.Repeat("-", 60))
	for _, name := range roster.Names() {
		g, _ := roster.General(name)
		fmt.Fprintf(out, "%-20s %-4d %s\n", name, g.MaxHP, strings.Join(g.Skills, ", "))
	}
	return nil
}
