package sqlite

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/platform/grpc/pagination"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/platform/id"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/session"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/storage"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/storage/filter"
)

// ActivityPageSize bounds ListActivity pages.
var ActivityPageSize = pagination.PageSizeConfig{Default: 50, Max: 200}

// AppendActivity stores entry, filling its id, timestamp and sequence.
func (s *Store) AppendActivity(ctx context.Context, entry session.LogEntry) (session.LogEntry, error) {
	if strings.TrimSpace(entry.SessionID) == "" {
		return session.LogEntry{}, fmt.Errorf("session id is required")
	}
	if entry.ID == "" {
		generated, err := id.NewID()
		if err != nil {
			return session.LogEntry{}, err
		}
		entry.ID = generated
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	entry.Timestamp = fromMillis(toMillis(entry.Timestamp))

	var data any
	if len(entry.Data) > 0 {
		data = []byte(entry.Data)
	}
	res, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO activity_log (id, session_id, entry_type, created_at, description, actor_id, actor_name, data_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.SessionID, string(entry.Type), toMillis(entry.Timestamp),
		entry.Description, entry.ActorID, entry.ActorName, data,
	)
	if err != nil {
		return session.LogEntry{}, fmt.Errorf("append activity: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return session.LogEntry{}, fmt.Errorf("activity seq: %w", err)
	}
	entry.Seq = seq
	return entry, nil
}

// ListActivity returns a session's activity newest first.
func (s *Store) ListActivity(ctx context.Context, query storage.ActivityQuery) (storage.ActivityPage, error) {
	if strings.TrimSpace(query.SessionID) == "" {
		return storage.ActivityPage{}, fmt.Errorf("session id is required")
	}
	cond, err := filter.ParseActivityFilter(query.Filter)
	if err != nil {
		return storage.ActivityPage{}, apperrors.Wrap(apperrors.CodeActivityFilterInvalid, "invalid activity filter", err)
	}
	before, err := pagination.DecodeCursor(query.PageToken, query.Filter)
	if err != nil {
		return storage.ActivityPage{}, apperrors.Wrap(apperrors.CodeActivityPageTokenBad, "invalid page token", err)
	}
	pageSize := pagination.ClampPageSize(query.PageSize, ActivityPageSize)

	var (
		sqlText strings.Builder
		params  = []any{query.SessionID}
	)
	sqlText.WriteString(`SELECT seq, id, session_id, entry_type, created_at, description, actor_id, actor_name, data_json
FROM activity_log WHERE session_id = ?`)
	if before > 0 {
		sqlText.WriteString(` AND seq < ?`)
		params = append(params, before)
	}
	if !cond.Empty() {
		sqlText.WriteString(` AND ` + cond.Clause)
		params = append(params, cond.Params...)
	}
	sqlText.WriteString(` ORDER BY seq DESC LIMIT ?`)
	params = append(params, pageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, sqlText.String(), params...)
	if err != nil {
		return storage.ActivityPage{}, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var entries []session.LogEntry
	for rows.Next() {
		var (
			entry     session.LogEntry
			entryType string
			created   int64
			data      []byte
		)
		if err := rows.Scan(&entry.Seq, &entry.ID, &entry.SessionID, &entryType, &created,
			&entry.Description, &entry.ActorID, &entry.ActorName, &data); err != nil {
			return storage.ActivityPage{}, fmt.Errorf("scan activity: %w", err)
		}
		entry.Type = session.LogType(entryType)
		entry.Timestamp = fromMillis(created)
		if len(data) > 0 {
			entry.Data = data
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return storage.ActivityPage{}, fmt.Errorf("read activity: %w", err)
	}

	page := storage.ActivityPage{Entries: entries}
	if len(entries) > pageSize {
		page.Entries = entries[:pageSize]
		page.NextPageToken = pagination.EncodeCursor(page.Entries[pageSize-1].Seq, query.Filter)
	}
	return page, nil
}

