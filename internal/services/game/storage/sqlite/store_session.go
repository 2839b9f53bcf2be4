package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/session"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/storage"
)

// CreateSession inserts agg with version 1.
func (s *Store) CreateSession(ctx context.Context, agg *session.Aggregate) error {
	if agg == nil || agg.Session.ID == "" {
		return fmt.Errorf("session id is required")
	}
	now := s.now().UTC()
	if agg.Session.CreatedAt.IsZero() {
		agg.Session.CreatedAt = now
	}
	agg.Session.UpdatedAt = now
	payload, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("encode aggregate: %w", err)
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO sessions (id, invite_code, host_id, status, map_id, aggregate_json, version, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`,
			agg.Session.ID, agg.Session.InviteCode, agg.Session.HostID, string(agg.Session.Status),
			agg.Session.MapID, payload, toMillis(agg.Session.CreatedAt), toMillis(now),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.Wrap(apperrors.CodeAlreadyExists, "session already exists", err)
			}
			return fmt.Errorf("insert session: %w", err)
		}
		return writeProjections(ctx, tx, agg, now)
	})
	if err != nil {
		return err
	}
	agg.Version = 1
	return nil
}

// LoadSession reads the current aggregate.
func (s *Store) LoadSession(ctx context.Context, sessionID string) (*session.Aggregate, error) {
	var (
		payload []byte
		version int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT aggregate_json, version FROM sessions WHERE id = ?`, sessionID,
	).Scan(&payload, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	agg := &session.Aggregate{}
	if err := json.Unmarshal(payload, agg); err != nil {
		return nil, fmt.Errorf("decode aggregate: %w", err)
	}
	agg.Version = version
	return agg, nil
}

// SaveSession writes agg when the stored version matches agg.Version.
func (s *Store) SaveSession(ctx context.Context, agg *session.Aggregate) error {
	if agg == nil || agg.Session.ID == "" {
		return fmt.Errorf("session id is required")
	}
	now := s.now().UTC()
	next := *agg
	next.Session.UpdatedAt = now
	payload, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("encode aggregate: %w", err)
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE sessions
SET status = ?, map_id = ?, aggregate_json = ?, version = version + 1, updated_at = ?
WHERE id = ? AND version = ?`,
			string(agg.Session.Status), agg.Session.MapID, payload, toMillis(now),
			agg.Session.ID, agg.Version,
		)
		if err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update session rows: %w", err)
		}
		if affected == 0 {
			var found int
			err := tx.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, agg.Session.ID).Scan(&found)
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("check session: %w", err)
			}
			return storage.ErrVersionConflict
		}
		return writeProjections(ctx, tx, agg, now)
	})
	if err != nil {
		return err
	}
	agg.Session.UpdatedAt = now
	agg.Version++
	return nil
}

// DeleteSession removes a session with its projections and activity.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"activity_log", "tokens", "characters"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE session_id = ?`, sessionID); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
		if err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete session rows: %w", err)
		}
		if affected == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
}
