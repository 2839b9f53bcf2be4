package engine

import (
	"context"

	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/dice"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/session"
)

// RollDice rolls a free-form NdS+M expression. With a session id the
// roll is written to that session's activity log under the caller's name;
// state is never changed.
func (e *Engine) RollDice(ctx context.Context, caller Caller, sessionID, notation string) (dice.DamageRoll, error) {
	parsed, err := dice.ParseNotation(notation)
	if err != nil {
		return dice.DamageRoll{}, err
	}
	if sessionID == "" {
		src, err := e.source()
		if err != nil {
			return dice.DamageRoll{}, err
		}
		return dice.RollDamage(src, parsed, 0, false, e.critical), nil
	}

	var out dice.DamageRoll
	_, err = e.observe(ctx, "roll_dice", sessionID, func(_ *session.Aggregate, src dice.Source) ([]record, error) {
		out = dice.RollDamage(src, parsed, 0, false, e.critical)
		who := caller.UserID
		if who == "" {
			who = "someone"
		}
		return []record{{logType: session.LogRoll, text: who + " rolled " + out.Breakdown, data: out}}, nil
	})
	if err != nil {
		return dice.DamageRoll{}, err
	}
	return out, nil
}
