// internal/workflow/ledger/ledger_test.go
package ledger

import (
	"context"
	"testing"
	"time"

	wferrors "hiring-workflow/internal/common/errors"
	"hiring-workflow/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Record Tests
// ==========================

func TestRecord_FillsIDAndTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO workflow_history`).
		WithArgs(sqlmock.AnyArg(), "app-001", string(models.StatusUnderReview),
			string(models.ActionStatusChange), "hm-001", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.HistoryEntry{
		ApplicationID: "app-001",
		Status:        models.StatusUnderReview,
		Action:        models.ActionStatusChange,
		PerformedBy:   "hm-001",
	}

	recorder := NewRecorder()
	err = recorder.Record(context.Background(), db, entry)

	assert.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.NotEmpty(t, entry.PerformedAt)

	_, err = time.Parse(time.RFC3339Nano, entry.PerformedAt)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_KeepsProvidedValues(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO workflow_history`).
		WithArgs("h-42", "app-001", string(models.StatusOfferMade),
			string(models.ActionMakeOffer), "hm-001", "renewed terms", "2026-03-01T12:00:00Z").
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.HistoryEntry{
		ID:            "h-42",
		ApplicationID: "app-001",
		Status:        models.StatusOfferMade,
		Action:        models.ActionMakeOffer,
		PerformedBy:   "hm-001",
		Notes:         "renewed terms",
		PerformedAt:   "2026-03-01T12:00:00Z",
	}

	recorder := NewRecorder()
	err = recorder.Record(context.Background(), db, entry)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_InsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO workflow_history`).
		WillReturnError(assert.AnError)

	recorder := NewRecorder()
	err = recorder.Record(context.Background(), db, &models.HistoryEntry{
		ApplicationID: "app-001",
		Status:        models.StatusUnderReview,
		Action:        models.ActionStatusChange,
		PerformedBy:   "hm-001",
	})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// History Tests
// ==========================

func TestHistory_NewestFirstWithActorNames(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`LEFT JOIN users u`).
		WithArgs("app-001").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "application_id", "status", "action", "performed_by", "name", "notes", "performed_at",
		}).
			AddRow("h-3", "app-001", "interview_scheduled", "schedule_interview", "hm-001", "Dana Reyes", "", "2026-01-03T00:00:00Z").
			AddRow("h-2", "app-001", "under_review", "status_change", "hm-001", "Dana Reyes", "", "2026-01-02T00:00:00Z").
			AddRow("h-1", "app-001", "applied", "status_change", "cand-001", "", "", "2026-01-01T00:00:00Z"))

	recorder := NewRecorder()
	entries, err := recorder.History(context.Background(), db, "app-001")

	assert.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, "h-3", entries[0].ID)
	assert.Equal(t, "h-1", entries[2].ID)
	assert.Equal(t, "Dana Reyes", entries[0].PerformedByName)
	assert.Equal(t, "", entries[2].PerformedByName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistory_QueryFailureIsRetryable(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`LEFT JOIN users u`).
		WillReturnError(assert.AnError)

	recorder := NewRecorder()
	_, err = recorder.History(context.Background(), db, "app-001")

	assert.Equal(t, wferrors.ErrCodeStoreUnavailable, wferrors.CodeOf(err))
	assert.True(t, wferrors.IsRetryable(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
