package session

import (
	"strings"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
)

// Status identifies the session lifecycle label.
type Status string

const (
	StatusUnspecified Status = ""
	StatusWaiting     Status = "waiting"
	StatusActive      Status = "active"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
)

// NormalizeStatus parses a session status label into a canonical value.
func NormalizeStatus(value string) (Status, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "WAITING", "SESSION_STATUS_WAITING":
		return StatusWaiting, true
	case "ACTIVE", "SESSION_STATUS_ACTIVE":
		return StatusActive, true
	case "COMPLETED", "SESSION_STATUS_COMPLETED":
		return StatusCompleted, true
	case "CANCELLED", "CANCELED", "SESSION_STATUS_CANCELLED":
		return StatusCancelled, true
	default:
		return StatusUnspecified, false
	}
}

// Closed reports whether the status is terminal.
func (s Status) Closed() bool {
	return s == StatusCompleted || s == StatusCancelled
}

var transitions = map[Status][]Status{
	StatusWaiting: {StatusActive, StatusCancelled},
	StatusActive:  {StatusCompleted, StatusCancelled},
}

// Transition validates moving from one status to another.
func Transition(from, to Status) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return apperrors.WithMetadata(apperrors.CodeSessionInvalidTransition, "invalid status transition",
		map[string]string{"From": string(from), "To": string(to)})
}
