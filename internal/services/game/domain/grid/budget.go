package grid

import (
	"strconv"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
)

// Epsilon absorbs floating error in budget comparisons.
const Epsilon = 1e-6

// CheckBudget reports whether spending cost on top of used stays within
// speed. bypass skips the check for hosts and overrides.
func CheckBudget(speed, used, cost float64, bypass bool) error {
	if bypass || used+cost <= speed+Epsilon {
		return nil
	}
	remaining := max(speed-used, 0)
	return apperrors.WithMetadata(apperrors.CodeInsufficientMovement, "not enough movement",
		map[string]string{
			"Cost":      formatCost(cost),
			"Remaining": formatCost(remaining),
		})
}

// ApplyMovement returns the new movement used, capped at speed and never
// negative.
func ApplyMovement(speed, used, cost float64) float64 {
	next := used + cost
	if next > speed {
		next = speed
	}
	if next < 0 {
		next = 0
	}
	return next
}

// Remaining returns speed minus used, floored at zero.
func Remaining(speed, used float64) float64 {
	return max(speed-used, 0)
}

func formatCost(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
