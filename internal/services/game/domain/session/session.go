package session

import (
	"encoding/json"
	"time"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
)

// Session is the lobby record that owns everything else.
type Session struct {
	ID         string          `json:"id"`
	InviteCode string          `json:"invite_code"`
	HostID     string          `json:"host_id"`
	Status     Status          `json:"status"`
	MapID      string          `json:"map_id,omitempty"`
	Quest      json.RawMessage `json:"quest,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ValidateQuest accepts an empty payload or any well-formed JSON value.
func ValidateQuest(quest json.RawMessage) error {
	if len(quest) == 0 || json.Valid(quest) {
		return nil
	}
	return apperrors.New(apperrors.CodeSessionInvalidQuest, "quest payload is not valid JSON")
}
