package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/actor"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/session"
)

// writeProjections replaces the character and token rows of agg's session.
func writeProjections(ctx context.Context, tx *sql.Tx, agg *session.Aggregate, now time.Time) error {
	sessionID := agg.Session.ID
	if _, err := tx.ExecContext(ctx, `DELETE FROM characters WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear characters: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tokens WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}

	for _, c := range agg.Characters {
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode character %s: %w", c.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO characters (session_id, id, owner_id, name, level, health, max_health, action_points, max_action_points, data_json, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sessionID, c.ID, c.OwnerID, c.Name, c.Level, c.Health, c.MaxHealth,
			c.ActionPoints, c.MaxActionPoints, data, toMillis(now),
		); err != nil {
			return fmt.Errorf("put character %s: %w", c.ID, err)
		}
	}

	for _, t := range agg.Tokens {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encode token %s: %w", t.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO tokens (session_id, id, kind, character_id, name, x, y, health, max_health, data_json, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sessionID, t.ID, string(t.Kind), t.CharacterID, t.Name, t.X, t.Y,
			t.Health, t.MaxHealth, data, toMillis(now),
		); err != nil {
			return fmt.Errorf("put token %s: %w", t.ID, err)
		}
	}
	return nil
}

// ListCharacters reads the character projection for a session, optionally
// narrowed to one owner.
func (s *Store) ListCharacters(ctx context.Context, sessionID, ownerID string) ([]*actor.Character, error) {
	query := `SELECT data_json FROM characters WHERE session_id = ?`
	params := []any{sessionID}
	if ownerID != "" {
		query += ` AND owner_id = ?`
		params = append(params, ownerID)
	}
	rows, err := s.sqlDB.QueryContext(ctx, query+` ORDER BY name, id`, params...)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	var out []*actor.Character
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan character: %w", err)
		}
		c := &actor.Character{}
		if err := json.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("decode character: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read characters: %w", err)
	}
	return out, nil
}

// ListTokens reads the token projection for a session.
func (s *Store) ListTokens(ctx context.Context, sessionID string) ([]*actor.Token, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT data_json FROM tokens WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	var out []*actor.Token
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		t := &actor.Token{}
		if err := json.Unmarshal(data, t); err != nil {
			return nil, fmt.Errorf("decode token: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read tokens: %w", err)
	}
	return out, nil
}
