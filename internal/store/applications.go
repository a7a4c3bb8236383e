// internal/store/applications.go

// Package store implements the PostgreSQL persistence layer. Each store
// wraps the shared database client and speaks in domain models; SQL
// never leaks past this package.
package store

import (
	"context"
	"database/sql"
	"time"

	"admission-engine/internal/common/database"
	"admission-engine/internal/common/errors"
	"admission-engine/internal/common/logger"
	"admission-engine/internal/models"
)

type ApplicationStore struct {
	db     *database.PostgresClient
	logger logger.Logger
}

func NewApplicationStore(db *database.PostgresClient, log logger.Logger) *ApplicationStore {
	return &ApplicationStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "application-store"}),
	}
}

const applicationColumns = `id, student_id, account_id, status, created_at, updated_at`

// Load fetches one application by ID.
func (s *ApplicationStore) Load(ctx context.Context, applicationID string) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	var app models.Application
	err := s.db.QueryRow(ctx, query, applicationID).Scan(
		&app.ID, &app.StudentID, &app.AccountID, &app.Status, &app.CreatedAt, &app.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewApplicationNotFoundError(applicationID)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("applications", err)
	}
	return &app, nil
}

// ListActive returns every application in a non-terminal status, oldest
// first so long-waiting applications are evaluated before fresh ones.
func (s *ApplicationStore) ListActive(ctx context.Context) ([]models.Application, error) {
	query := `SELECT ` + applicationColumns + `
		FROM applications
		WHERE status NOT IN ($1, $2, $3)
		ORDER BY created_at ASC`

	rows, err := s.db.Query(ctx, query,
		models.StatusApproved, models.StatusRejected, models.StatusWaitlist)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("applications", err)
	}
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		var app models.Application
		if err := rows.Scan(&app.ID, &app.StudentID, &app.AccountID, &app.Status, &app.CreatedAt, &app.UpdatedAt); err != nil {
			return nil, errors.NewQueryExecutionFailedError("applications", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("applications", err)
	}
	return apps, nil
}

// UpdateStatus commits a status transition with an identity check: the
// row is only written when the persisted status still equals `from`.
// Zero affected rows means another evaluator moved the application
// first and surfaces as a stale-state conflict.
func (s *ApplicationStore) UpdateStatus(ctx context.Context, applicationID string, from, to models.Status, updatedAt time.Time) error {
	query := `UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`

	res, err := s.db.Exec(ctx, query, to, updatedAt, applicationID, from)
	if err != nil {
		return errors.NewQueryExecutionFailedError("applications", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.NewQueryExecutionFailedError("applications", err)
	}
	if affected == 0 {
		return errors.NewStaleStateConflictError(applicationID)
	}

	s.logger.Debug("application status updated", map[string]interface{}{
		"applicationId": applicationID,
		"from":          from,
		"to":            to,
	})
	return nil
}

// ContactFor resolves the guardian contact attached to the application's
// account.
func (s *ApplicationStore) ContactFor(ctx context.Context, applicationID string) (guardianName, email, phone string, err error) {
	query := `SELECT ac.guardian_name, ac.email, ac.phone
		FROM applications ap
		JOIN accounts ac ON ac.id = ap.account_id
		WHERE ap.id = $1`

	err = s.db.QueryRow(ctx, query, applicationID).Scan(&guardianName, &email, &phone)
	if err == sql.ErrNoRows {
		return "", "", "", errors.NewApplicationNotFoundError(applicationID)
	}
	if err != nil {
		return "", "", "", errors.NewQueryExecutionFailedError("accounts", err)
	}
	return guardianName, email, phone, nil
}
