// internal/store/interviews.go
package store

import (
	"context"
	"database/sql"

	"admission-engine/internal/common/database"
	"admission-engine/internal/common/errors"
	"admission-engine/internal/models"
)

// InterviewStore reads the interview records owned by the scheduling
// subsystem.
type InterviewStore struct {
	db *database.PostgresClient
}

func NewInterviewStore(db *database.PostgresClient) *InterviewStore {
	return &InterviewStore{db: db}
}

// InterviewsFor returns every interview attached to the application.
func (s *InterviewStore) InterviewsFor(ctx context.Context, applicationID string) ([]models.Interview, error) {
	query := `SELECT id, application_id, type, status, result, scheduled_at
		FROM interviews
		WHERE application_id = $1
		ORDER BY scheduled_at ASC`

	rows, err := s.db.Query(ctx, query, applicationID)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("interviews", err)
	}
	defer rows.Close()

	var interviews []models.Interview
	for rows.Next() {
		var iv models.Interview
		var result sql.NullString
		if err := rows.Scan(&iv.ID, &iv.ApplicationID, &iv.Type, &iv.Status, &result, &iv.ScheduledAt); err != nil {
			return nil, errors.NewQueryExecutionFailedError("interviews", err)
		}
		iv.Result = models.InterviewResult(result.String)
		interviews = append(interviews, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("interviews", err)
	}
	return interviews, nil
}
