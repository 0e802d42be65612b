package store

import (
	"context"
	"encoding/json"
)

// SaveSessionSnapshot upserts a session's serialized editable state.
func (s *Store) SaveSessionSnapshot(ctx context.Context, sessionID, productID string, document json.RawMessage) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO session_snapshots (session_id, product_id, document, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (session_id)
		DO UPDATE SET document = EXCLUDED.document, updated_at = now()`,
		sessionID, productID, document)
	return err
}

// GetSessionSnapshot returns a session's stored state.
func (s *Store) GetSessionSnapshot(ctx context.Context, sessionID string) (json.RawMessage, error) {
	var document json.RawMessage
	err := s.pool.QueryRow(ctx, `
		SELECT document FROM session_snapshots WHERE session_id = $1`,
		sessionID).Scan(&document)
	return document, err
}
