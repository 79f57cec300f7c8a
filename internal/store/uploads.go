package store

import (
	"context"
	"fmt"
)

// UploadStore persists uploaded-file metadata.
type UploadStore struct {
	db DB
}

// NewUploadStore creates an upload store backed by the given database.
func NewUploadStore(db DB) *UploadStore {
	return &UploadStore{db: db}
}

// Save inserts an upload record and returns its identity. The analyzed flag
// tracks whether analysis text exists.
func (s *UploadStore) Save(ctx context.Context, userID, filePath, analysis string) (string, error) {
	query := `
		INSERT INTO xray_uploads (user_id, file_path, analysis, analyzed, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id::text
	`
	var id string
	err := s.db.QueryRow(ctx, query, userID, filePath, analysis, analysis != "").Scan(&id)
	if err != nil {
		return "", fmt.Errorf("store: insert upload: %w", err)
	}
	return id, nil
}
