package session

import (
	"encoding/json"
	"time"
)

// LogType classifies activity log entries.
type LogType string

const (
	LogSession    LogType = "session"
	LogRoster     LogType = "roster"
	LogMap        LogType = "map"
	LogInitiative LogType = "initiative"
	LogTurn       LogType = "turn"
	LogMovement   LogType = "movement"
	LogAttack     LogType = "attack"
	LogSpell      LogType = "spell"
	LogDamage     LogType = "damage"
	LogHealing    LogType = "healing"
	LogCheck      LogType = "check"
	LogRoll       LogType = "roll"
)

// LogEntry is an append-only activity record.
type LogEntry struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id"`
	Seq         int64           `json:"seq,omitempty"`
	Type        LogType         `json:"type"`
	Timestamp   time.Time       `json:"timestamp"`
	Description string          `json:"description"`
	ActorID     string          `json:"actor_id,omitempty"`
	ActorName   string          `json:"actor_name,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}
