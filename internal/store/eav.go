package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/nucleus/internal/eav"
	"github.com/roach88/nucleus/internal/ir"
)

// EAVStorage implements eav.Storage on the eav table.
type EAVStorage struct {
	db *sql.DB
}

// Add inserts t. Adding an existing triple is a no-op.
func (s *EAVStorage) Add(ctx context.Context, t eav.EntityAttributeValue) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO eav (entity, attribute, value)
		VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING
	`, string(t.Entity), t.Attribute, string(t.Value))
	if err != nil {
		return fmt.Errorf("add triple: %w", err)
	}
	return nil
}

// Fetch returns every triple matching q.
func (s *EAVStorage) Fetch(ctx context.Context, q eav.Query) (eav.Set, error) {
	var where []string
	var args []any
	if q.Entity != nil {
		where = append(where, "entity = ?")
		args = append(args, string(*q.Entity))
	}
	if q.Attribute != nil {
		where = append(where, "attribute = ?")
		args = append(args, *q.Attribute)
	}
	if q.Value != nil {
		where = append(where, "value = ?")
		args = append(args, string(*q.Value))
	}

	query := `SELECT entity, attribute, value FROM eav`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY entity COLLATE BINARY, attribute COLLATE BINARY, value COLLATE BINARY`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query triples: %w", err)
	}
	defer rows.Close()

	out := eav.Set{}
	for rows.Next() {
		var entity, attribute, value string
		if err := rows.Scan(&entity, &attribute, &value); err != nil {
			return nil, fmt.Errorf("scan triple: %w", err)
		}
		out.Add(eav.EntityAttributeValue{
			Entity:    ir.Address(entity),
			Attribute: attribute,
			Value:     ir.Address(value),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate triples: %w", err)
	}
	return out, nil
}

// Clone returns another handle on the same table.
func (s *EAVStorage) Clone() eav.Storage {
	return &EAVStorage{db: s.db}
}
