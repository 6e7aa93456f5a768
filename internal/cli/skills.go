package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/magefree/skillcore-go/internal/game/skill"
	"github.com/spf13/cobra"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List registered skills",
	Long: `List every skill in the registry with its family, frequency and the
events or card kinds it reacts to. Invisible auxiliary skills are hidden
unless --all is given.`,
	Args: cobra.NoArgs,
	RunE: listSkills,
}

func init() {
	rootCmd.AddCommand(skillsCmd)

	skillsCmd.Flags().Bool("all", false, "include invisible auxiliary skills")
}

func listSkills(cmd *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	reg, err := e.registry()
	if err != nil {
		return err
	}
	all, _ := cmd.Flags().GetBool("all")

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-22s %-24s %-13s %s\n", "SKILL", "FAMILY", "FREQUENCY", "DETAIL")
	fmt.Fprintln(out, strings.Repeat("-", 90))
	for _, s := range reg.All() {
		if !s.IsVisible() && !all {
			continue
		}
		printSkill(out, s)
	}
	return nil
}

func printSkill(out io.Writer, s skill.Skill) {
	family, detail := describe(s)
	name := s.Name()
	if s.IsLordSkill() {
		name += " (lord)"
	}
	if s.Parent() != "" {
		detail = strings.TrimSpace(detail + " parent=" + s.Parent())
	}
	fmt.Fprintf(out, "%-22s %-24s %-13s %s\n", name, family, s.Frequency(), detail)
}

// describe names the family of s and summarizes what it reacts to.
func describe(s skill.Skill) (family, detail string) {
	switch s := s.(type) {
	case *skill.TriggerSkill:
		events := make([]string, 0, len(s.Events()))
		for _, ev := range s.Events() {
			events = append(events, string(ev))
		}
		detail = strings.Join(events, ",")
		if s.Priority() != 0 {
			detail += fmt.Sprintf(" priority=%d", s.Priority())
		}
		if s.ViewAsSkill() != "" {
			detail += " view_as=" + s.ViewAsSkill()
		}
		return "trigger/" + s.Variant().String(), detail
	case *skill.ViewAsSkill:
		return "view_as/" + s.Kind().String(), ""
	case *skill.ProhibitSkill:
		return "prohibit", ""
	case *skill.DistanceSkill:
		return "distance", ""
	case *skill.MaxCardsSkill:
		return "max_cards", ""
	default:
		return fmt.Sprintf("%T", s), ""
	}
}
