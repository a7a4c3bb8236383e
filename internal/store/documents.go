// internal/store/documents.go
package store

import (
	"context"

	"admission-engine/internal/common/database"
	"admission-engine/internal/common/errors"
	"admission-engine/internal/models"
)

// DocumentStore reads the uploaded-document records owned by the
// document subsystem.
type DocumentStore struct {
	db *database.PostgresClient
}

func NewDocumentStore(db *database.PostgresClient) *DocumentStore {
	return &DocumentStore{db: db}
}

// MissingKinds returns the required document kinds with no upload on
// record for the application.
func (s *DocumentStore) MissingKinds(ctx context.Context, applicationID string) ([]models.DocumentKind, error) {
	query := `SELECT DISTINCT kind FROM documents WHERE application_id = $1`

	rows, err := s.db.Query(ctx, query, applicationID)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("documents", err)
	}
	defer rows.Close()

	uploaded := map[models.DocumentKind]bool{}
	for rows.Next() {
		var kind models.DocumentKind
		if err := rows.Scan(&kind); err != nil {
			return nil, errors.NewQueryExecutionFailedError("documents", err)
		}
		uploaded[kind] = true
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("documents", err)
	}

	var missing []models.DocumentKind
	for _, kind := range models.RequiredDocumentKinds {
		if !uploaded[kind] {
			missing = append(missing, kind)
		}
	}
	return missing, nil
}
