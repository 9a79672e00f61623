package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/nucleus/internal/action"
)

// ActionRecord is one row of the action log.
type ActionRecord struct {
	Seq     int64           `json:"seq"`
	Kind    action.Kind     `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// ActionLog is the append-only record of applied actions. It implements
// engine.ActionLog.
type ActionLog struct {
	db *sql.DB
}

// Append records w. Appending the same seq twice keeps the first record.
func (l *ActionLog) Append(ctx context.Context, w action.Wrapper) error {
	payload, err := w.Payload()
	if err != nil {
		return fmt.Errorf("append action %d: %w", w.ID, err)
	}
	_, err = l.db.ExecContext(ctx, `
		INSERT INTO action_log (seq, kind, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`, w.ID, string(w.Action.Kind()), string(payload))
	if err != nil {
		return fmt.Errorf("append action %d: %w", w.ID, err)
	}
	return nil
}

// Read returns up to limit records with seq > after, in seq order.
// A limit <= 0 means no limit. Returns an empty slice (not nil) if none match.
func (l *ActionLog) Read(ctx context.Context, after int64, limit int) ([]ActionRecord, error) {
	query := `SELECT seq, kind, payload FROM action_log WHERE seq > ? ORDER BY seq ASC`
	args := []any{after}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query action log: %w", err)
	}
	defer rows.Close()

	records := []ActionRecord{}
	for rows.Next() {
		var rec ActionRecord
		var kind, payload string
		if err := rows.Scan(&rec.Seq, &kind, &payload); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		rec.Kind = action.Kind(kind)
		rec.Payload = json.RawMessage(payload)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action log: %w", err)
	}
	return records, nil
}

// LastSeq returns the highest recorded seq, or 0 for an empty log.
// A restarted engine continues its clock from here.
func (l *ActionLog) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := l.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM action_log`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}

// Wrapper decodes the record back into the wrapper that was appended.
func (r ActionRecord) Wrapper() (action.Wrapper, error) {
	a, err := action.Decode(r.Kind, r.Payload)
	if err != nil {
		return action.Wrapper{}, fmt.Errorf("action %d: %w", r.Seq, err)
	}
	return action.Wrapper{ID: r.Seq, Action: a}, nil
}

// Wrappers decodes the whole log, in seq order, for engine.Restore.
func (l *ActionLog) Wrappers(ctx context.Context) ([]action.Wrapper, error) {
	records, err := l.Read(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	ws := make([]action.Wrapper, 0, len(records))
	for _, rec := range records {
		w, err := rec.Wrapper()
		if err != nil {
			return nil, err
		}
		ws = append(ws, w)
	}
	return ws, nil
}
