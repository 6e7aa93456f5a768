package room

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/magefree/skillcore-go/internal/game/prompt"
	"github.com/magefree/skillcore-go/internal/game/rules"
	"github.com/magefree/skillcore-go/internal/game/skill"
	"go.uber.org/zap"
)

// ask sends a request to the answerer. An answer that does not fit the
// request is replaced by the request's default answer.
func (r *Room) ask(ctx context.Context, req prompt.Request) (prompt.Answer, error) {
	ans, err := r.answerer.Answer(ctx, req)
	if err != nil {
		return prompt.Answer{}, fmt.Errorf("asking %s for %s: %w", req.Player, req.Kind, err)
	}
	if err := prompt.Validate(req, ans); err != nil {
		r.logger.Warn("invalid prompt answer, using default",
			zap.String("player", req.Player),
			zap.String("kind", string(req.Kind)),
			zap.Error(err),
		)
		ans = prompt.DefaultAnswer(req)
	}
	made := rules.NewEvent(rules.EventChoiceMade, req.Player, req.Skill)
	made.Payload = &rules.ChoiceMade{Player: req.Player, Kind: string(req.Kind), Answer: answerText(ans)}
	r.bus.Publish(made)
	return ans, nil
}

func (r *Room) AskForSkillInvoke(ctx context.Context, p skill.Player, skillName string) (bool, error) {
	if p == nil || !p.IsAlive() {
		return false, nil
	}
	ans, err := r.ask(ctx, prompt.Request{
		Kind:   prompt.KindSkillInvoke,
		Player: p.Name(),
		Skill:  skillName,
		Reason: skillName,
	})
	if err != nil {
		return false, err
	}
	return ans.Yes(), nil
}

// AskForChoice offers choices; the skill's default choice is the answer
// when nobody decides.
func (r *Room) AskForChoice(ctx context.Context, p skill.Player, skillName string, choices []string) (string, error) {
	if len(choices) == 0 {
		return "", nil
	}
	def := skill.DefaultChoice
	if s, ok := r.registry.Lookup(skillName); ok {
		def = s.DefaultChoice(p)
	}
	if len(choices) == 1 {
		return choices[0], nil
	}
	if p == nil {
		return def, nil
	}
	ans, err := r.ask(ctx, prompt.Request{
		Kind:    prompt.KindChoice,
		Player:  p.Name(),
		Skill:   skillName,
		Reason:  skillName,
		Options: slices.Clone(choices),
		Default: def,
	})
	if err != nil {
		return "", err
	}
	return ans.Text, nil
}

// AskForCardChosen returns -1 when owner has no card in the flagged zones.
func (r *Room) AskForCardChosen(ctx context.Context, chooser, owner skill.Player, flags, reason string) (int, error) {
	seat, err := r.mustLookup(owner)
	if err != nil {
		return -1, err
	}
	var ids []int
	if strings.Contains(flags, "h") {
		ids = append(ids, seat.hand...)
	}
	if strings.Contains(flags, "e") {
		ids = append(ids, seat.equipIDs()...)
	}
	if len(ids) == 0 {
		return -1, nil
	}
	ans, err := r.ask(ctx, prompt.Request{
		Kind:    prompt.KindCardChosen,
		Player:  chooser.Name(),
		Reason:  reason,
		CardIDs: ids,
	})
	if err != nil {
		return -1, err
	}
	return ans.Card(), nil
}

func (r *Room) AskForAG(ctx context.Context, p skill.Player, ids []int, refusable bool, reason string) (int, error) {
	if len(ids) == 0 {
		return -1, nil
	}
	req := prompt.Request{
		Kind:     prompt.KindAG,
		Player:   p.Name(),
		Reason:   reason,
		CardIDs:  slices.Clone(ids),
		Optional: refusable,
	}
	ans, err := r.ask(ctx, req)
	if err != nil {
		return -1, err
	}
	return ans.Card(), nil
}

// AskForPlayerChosen returns nil when there is nobody to choose.
func (r *Room) AskForPlayerChosen(ctx context.Context, p skill.Player, targets []skill.Player, reason string) (skill.Player, error) {
	if len(targets) == 0 {
		return nil, nil
	}
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name()
	}
	ans, err := r.ask(ctx, prompt.Request{
		Kind:    prompt.KindPlayerChosen,
		Player:  p.Name(),
		Reason:  reason,
		Options: names,
	})
	if err != nil {
		return nil, err
	}
	i := slices.Index(names, ans.Text)
	if i < 0 {
		return nil, nil
	}
	return targets[i], nil
}

// AskForDiscard asks for n hand cards; a player holding fewer must give
// them all. The chosen cards are returned, not yet thrown.
func (r *Room) AskForDiscard(ctx context.Context, p skill.Player, reason string, n int, optional bool) ([]int, error) {
	seat, err := r.mustLookup(p)
	if err != nil {
		return nil, err
	}
	n = min(n, len(seat.hand))
	if n <= 0 {
		return nil, nil
	}
	ans, err := r.ask(ctx, prompt.Request{
		Kind:     prompt.KindDiscard,
		Player:   seat.name,
		Reason:   reason,
		CardIDs:  seat.Hand(),
		Count:    n,
		Optional: optional,
	})
	if err != nil {
		return nil, err
	}
	return ans.CardIDs, nil
}

func answerText(ans prompt.Answer) string {
	if ans.Text != "" || len(ans.CardIDs) == 0 {
		return ans.Text
	}
	parts := make([]string, len(ans.CardIDs))
	for i, id := range ans.CardIDs {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, "+")
}
