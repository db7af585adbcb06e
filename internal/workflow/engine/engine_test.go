// internal/workflow/engine/engine_test.go
package engine

import (
	"context"
	"testing"
	"time"

	wferrors "hiring-workflow/internal/common/errors"
	"hiring-workflow/internal/common/logger"
	"hiring-workflow/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeDispatcher struct {
	notifications []models.Notification
}

func (f *fakeDispatcher) Enqueue(n models.Notification) {
	f.notifications = append(f.notifications, n)
}

func newTestEngine(t *testing.T) (*Engine, sqlmock.Sqlmock, *fakeDispatcher) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dispatcher := &fakeDispatcher{}
	eng := New(db, dispatcher, nil, time.Minute, logger.NewTestLogger(t))
	return eng, mock, dispatcher
}

func appRows(id, candidateID string, status models.ApplicationStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "candidate_id", "job_id", "status", "created_at", "updated_at"}).
		AddRow(id, candidateID, "job-001", string(status), "2026-01-01T00:00:00Z", "2026-01-01T00:00:00Z")
}

func expectAppLock(mock sqlmock.Sqlmock, id, candidateID string, status models.ApplicationStatus) {
	mock.ExpectQuery(`SELECT id, candidate_id, job_id, status`).
		WithArgs(id).
		WillReturnRows(appRows(id, candidateID, status))
}

var (
	hiringManager = models.Actor{ID: "hm-001", Role: models.RoleHiringManager}
	candidate     = models.Actor{ID: "cand-001", Role: models.RoleCandidate}
)

// ==========================
// ChangeStatus Tests
// ==========================

func TestChangeStatus_Success(t *testing.T) {
	eng, mock, dispatcher := newTestEngine(t)

	mock.ExpectBegin()
	expectAppLock(mock, "app-001", "cand-001", models.StatusApplied)
	mock.ExpectExec(`UPDATE applications SET status`).
		WithArgs(string(models.StatusUnderReview), sqlmock.AnyArg(), "app-001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO workflow_history`).
		WithArgs(sqlmock.AnyArg(), "app-001", string(models.StatusUnderReview),
			string(models.ActionStatusChange), "hm-001", "moving forward", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	app, err := eng.ChangeStatus(context.Background(), "app-001",
		models.StatusUnderReview, "moving forward", hiringManager)

	assert.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, app.Status)

	// Timestamps are RFC3339 UTC
	_, err = time.Parse(time.RFC3339Nano, app.UpdatedAt)
	assert.NoError(t, err)

	// Notification dispatched only after commit
	assert.Len(t, dispatcher.notifications, 1)
	assert.Equal(t, models.NotificationStatusChanged, dispatcher.notifications[0].Type)
	assert.Equal(t, "cand-001", dispatcher.notifications[0].RecipientID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeStatus_IllegalTransitionRollsBack(t *testing.T) {
	eng, mock, dispatcher := newTestEngine(t)

	mock.ExpectBegin()
	expectAppLock(mock, "app-001", "cand-001", models.StatusHired)
	mock.ExpectRollback()

	_, err := eng.ChangeStatus(context.Background(), "app-001",
		models.StatusUnderReview, "", hiringManager)

	assert.Error(t, err)
	assert.Equal(t, wferrors.ErrCodeIllegalTransition, wferrors.CodeOf(err))
	assert.Empty(t, dispatcher.notifications)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeStatus_NotFound(t *testing.T) {
	eng, mock, dispatcher := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, candidate_id, job_id, status`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := eng.ChangeStatus(context.Background(), "missing",
		models.StatusUnderReview, "", hiringManager)

	assert.Equal(t, wferrors.ErrCodeNotFound, wferrors.CodeOf(err))
	assert.Empty(t, dispatcher.notifications)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeStatus_ForbiddenForCandidate(t *testing.T) {
	eng, mock, dispatcher := newTestEngine(t)

	mock.ExpectBegin()
	expectAppLock(mock, "app-001", "cand-001", models.StatusApplied)
	mock.ExpectRollback()

	_, err := eng.ChangeStatus(context.Background(), "app-001",
		models.StatusRejected, "", candidate)

	assert.Equal(t, wferrors.ErrCodeForbidden, wferrors.CodeOf(err))
	assert.Empty(t, dispatcher.notifications)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeStatus_InvalidTarget(t *testing.T) {
	eng, mock, _ := newTestEngine(t)

	_, err := eng.ChangeStatus(context.Background(), "app-001",
		models.ApplicationStatus("bogus"), "", hiringManager)

	assert.Equal(t, wferrors.ErrCodeValidationFailed, wferrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeStatus_ReapplySameStatusStillLedgered(t *testing.T) {
	eng, mock, dispatcher := newTestEngine(t)

	mock.ExpectBegin()
	expectAppLock(mock, "app-001", "cand-001", models.StatusUnderReview)
	mock.ExpectExec(`UPDATE applications SET status`).
		WithArgs(string(models.StatusUnderReview), sqlmock.AnyArg(), "app-001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO workflow_history`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	app, err := eng.ChangeStatus(context.Background(), "app-001",
		models.StatusUnderReview, "second look", hiringManager)

	assert.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, app.Status)
	assert.Len(t, dispatcher.notifications, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeStatus_CommitFailureIsRetryable(t *testing.T) {
	eng, mock, dispatcher := newTestEngine(t)

	mock.ExpectBegin()
	expectAppLock(mock, "app-001", "cand-001", models.StatusApplied)
	mock.ExpectExec(`UPDATE applications SET status`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO workflow_history`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(assert.AnError)

	_, err := eng.ChangeStatus(context.Background(), "app-001",
		models.StatusUnderReview, "", hiringManager)

	assert.Equal(t, wferrors.ErrCodeStoreUnavailable, wferrors.CodeOf(err))
	assert.True(t, wferrors.IsRetryable(err))
	assert.Empty(t, dispatcher.notifications)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// History Tests
// ==========================

func TestHistory_Success(t *testing.T) {
	eng, mock, _ := newTestEngine(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("app-001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`FROM workflow_history h`).
		WithArgs("app-001").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "application_id", "status", "action", "performed_by", "name", "notes", "performed_at",
		}).
			AddRow("h-2", "app-001", "under_review", "status_change", "hm-001", "Dana Reyes", "", "2026-01-02T00:00:00Z").
			AddRow("h-1", "app-001", "applied", "status_change", "cand-001", "", "", "2026-01-01T00:00:00Z"))

	entries, err := eng.History(context.Background(), "app-001")

	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "h-2", entries[0].ID)
	assert.Equal(t, "Dana Reyes", entries[0].PerformedByName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistory_ApplicationNotFound(t *testing.T) {
	eng, mock, _ := newTestEngine(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := eng.History(context.Background(), "missing")

	assert.Equal(t, wferrors.ErrCodeNotFound, wferrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
