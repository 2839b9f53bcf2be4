package combat

import (
	"strconv"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/actor"
)

// Action point costs.
const (
	CostAttack = 1
	CostSpell  = 2
	CostOther  = 1
)

func requirePoints(a actor.Actor, cost int, opts Options) error {
	if opts.BypassActionPoints {
		return nil
	}
	current, _ := a.ActionPointPool()
	if current >= cost {
		return nil
	}
	return apperrors.WithMetadata(apperrors.CodeInsufficientActionPoints, "insufficient action points",
		map[string]string{
			"ActorID":   a.EntityID(),
			"Required":  strconv.Itoa(cost),
			"Available": strconv.Itoa(current),
		})
}

// spendPoints debits cost and returns what was spent.
func spendPoints(a actor.Actor, cost int, opts Options) int {
	if opts.BypassActionPoints {
		return 0
	}
	current, _ := a.ActionPointPool()
	a.SetActionPoints(current - cost)
	return cost
}

// RequireActionPoints checks a's pool covers cost unless bypass is set.
func RequireActionPoints(a actor.Actor, cost int, bypass bool) error {
	return requirePoints(a, cost, Options{BypassActionPoints: bypass})
}

// SpendActionPoints debits cost unless bypass is set, returning the amount
// spent.
func SpendActionPoints(a actor.Actor, cost int, bypass bool) int {
	return spendPoints(a, cost, Options{BypassActionPoints: bypass})
}

func requireConscious(attacker, target actor.Actor) error {
	if actor.Unconscious(attacker) {
		return apperrors.WithMetadata(apperrors.CodeActorUnconscious, "actor unconscious",
			map[string]string{"ActorID": attacker.EntityID()})
	}
	if target != nil && actor.Unconscious(target) {
		return targetUnconscious(target)
	}
	return nil
}

func targetUnconscious(target actor.Actor) error {
	return apperrors.WithMetadata(apperrors.CodeTargetUnconscious, "target unconscious",
		map[string]string{"TargetID": target.EntityID()})
}
