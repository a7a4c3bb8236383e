// internal/store/evaluations.go
package store

import (
	"context"
	"database/sql"

	"admission-engine/internal/common/database"
	"admission-engine/internal/common/errors"
	"admission-engine/internal/models"
)

// EvaluationStore reads the evaluation records owned by the evaluation
// subsystem. The engine never writes them.
type EvaluationStore struct {
	db *database.PostgresClient
}

func NewEvaluationStore(db *database.PostgresClient) *EvaluationStore {
	return &EvaluationStore{db: db}
}

// EvaluationsFor returns every evaluation attached to the application.
func (s *EvaluationStore) EvaluationsFor(ctx context.Context, applicationID string) ([]models.Evaluation, error) {
	query := `SELECT id, application_id, type, status, evaluator_id, score, final_recommendation, completed_at
		FROM evaluations
		WHERE application_id = $1`

	rows, err := s.db.Query(ctx, query, applicationID)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("evaluations", err)
	}
	defer rows.Close()

	var evals []models.Evaluation
	for rows.Next() {
		var ev models.Evaluation
		var evaluatorID sql.NullString
		var score sql.NullFloat64
		var recommendation sql.NullBool
		if err := rows.Scan(&ev.ID, &ev.ApplicationID, &ev.Type, &ev.Status,
			&evaluatorID, &score, &recommendation, &ev.CompletedAt); err != nil {
			return nil, errors.NewQueryExecutionFailedError("evaluations", err)
		}
		ev.EvaluatorID = evaluatorID.String
		ev.Score = score.Float64
		ev.FinalRecommendation = recommendation.Bool
		evals = append(evals, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("evaluations", err)
	}
	return evals, nil
}
