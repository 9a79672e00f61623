package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/nucleus/internal/ir"
)

// ContentStorage implements cas.Storage on the content table.
type ContentStorage struct {
	db *sql.DB
}

// Fetch returns the blob stored at addr.
func (c *ContentStorage) Fetch(ctx context.Context, addr ir.Address) ([]byte, bool, error) {
	var body []byte
	err := c.db.QueryRowContext(ctx, `SELECT body FROM content WHERE address = ?`, string(addr)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("fetch content %s: %w", addr, err)
	}
	return body, true, nil
}

// Store writes content under its address. Rewriting existing content is a no-op.
func (c *ContentStorage) Store(ctx context.Context, content []byte) (ir.Address, error) {
	addr := ir.ContentAddress(content)
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO content (address, body)
		VALUES (?, ?)
		ON CONFLICT(address) DO NOTHING
	`, string(addr), content)
	if err != nil {
		return "", fmt.Errorf("store content: %w", err)
	}
	return addr, nil
}

// Count returns the number of stored blobs.
func (c *ContentStorage) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM content`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count content: %w", err)
	}
	return n, nil
}
