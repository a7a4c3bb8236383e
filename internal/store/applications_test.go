// internal/store/applications_test.go
package store

import (
	"context"
	"testing"
	"time"

	"admission-engine/internal/common/database"
	"admission-engine/internal/common/errors"
	"admission-engine/internal/common/logger"
	"admission-engine/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*ApplicationStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	client := &database.PostgresClient{DB: db}
	return NewApplicationStore(client, logger.NewTestLogger(t)), mock
}

func TestApplicationStore_Load(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM applications WHERE id = \$1`).
		WithArgs("app-001").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "student_id", "account_id", "status", "created_at", "updated_at"}).
			AddRow("app-001", "student-001", "account-001", "PENDING", now, now))

	app, err := store.Load(context.Background(), "app-001")
	require.NoError(t, err)
	assert.Equal(t, "app-001", app.ID)
	assert.Equal(t, models.StatusPending, app.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_Load_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM applications WHERE id = \$1`).
		WithArgs("app-404").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "student_id", "account_id", "status", "created_at", "updated_at"}))

	_, err := store.Load(context.Background(), "app-404")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestApplicationStore_ListActive(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM applications\s+WHERE status NOT IN`).
		WithArgs("APPROVED", "REJECTED", "WAITLIST").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "student_id", "account_id", "status", "created_at", "updated_at"}).
			AddRow("app-001", "s-1", "a-1", "PENDING", now, now).
			AddRow("app-002", "s-2", "a-2", "UNDER_REVIEW", now, now))

	apps, err := store.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, models.StatusPending, apps[0].Status)
	assert.Equal(t, models.StatusUnderReview, apps[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_UpdateStatus(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectExec(`UPDATE applications SET status = \$1, updated_at = \$2 WHERE id = \$3 AND status = \$4`).
		WithArgs("UNDER_REVIEW", now, "app-001", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpdateStatus(context.Background(), "app-001", models.StatusPending, models.StatusUnderReview, now)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStore_UpdateStatus_StaleState(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	// Zero affected rows: another evaluator moved the application first.
	mock.ExpectExec(`UPDATE applications SET status = \$1, updated_at = \$2 WHERE id = \$3 AND status = \$4`).
		WithArgs("UNDER_REVIEW", now, "app-001", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.UpdateStatus(context.Background(), "app-001", models.StatusPending, models.StatusUnderReview, now)
	require.Error(t, err)
	assert.True(t, errors.IsStaleState(err))
}

func TestApplicationStore_ContactFor(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM applications ap\s+JOIN accounts ac`).
		WithArgs("app-001").
		WillReturnRows(sqlmock.NewRows([]string{"guardian_name", "email", "phone"}).
			AddRow("Alex Guardian", "guardian@example.com", "+1234567890"))

	name, email, phone, err := store.ContactFor(context.Background(), "app-001")
	require.NoError(t, err)
	assert.Equal(t, "Alex Guardian", name)
	assert.Equal(t, "guardian@example.com", email)
	assert.Equal(t, "+1234567890", phone)
}
