// internal/workflow/engine/interview.go
package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	wferrors "hiring-workflow/internal/common/errors"
	"hiring-workflow/internal/models"
	"hiring-workflow/internal/workflow/statemachine"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ScheduleInterviewInput carries the fields of a schedule request.
type ScheduleInterviewInput struct {
	ApplicationID string
	Type          models.InterviewType
	ScheduledDate string
	Location      string
	MeetingLink   string
	Interviewers  []string
	Notes         string
}

// ScheduleInterview creates a new interview round and drives the owning
// application to interview_scheduled. Multiple rounds are allowed; later
// rounds re-affirm the same status.
func (e *Engine) ScheduleInterview(ctx context.Context, input ScheduleInterviewInput, actor models.Actor) (*models.Interview, error) {
	if !input.Type.IsValid() {
		return nil, wferrors.NewValidationFailedError(fmt.Sprintf("unknown interview type: %s", input.Type))
	}
	if input.ScheduledDate == "" {
		return nil, wferrors.NewValidationFailedError("scheduledDate is required")
	}

	var created *models.Interview
	var candidateID string
	err := e.runInTx(ctx, models.ActionScheduleInterview, func(tx *sql.Tx) ([]models.Notification, error) {
		app, err := e.loadApplicationForUpdate(ctx, tx, input.ApplicationID)
		if err != nil {
			return nil, err
		}

		newStatus, err := statemachine.Apply(statemachine.Request{
			Current: app.Status,
			Action:  models.ActionScheduleInterview,
			Actor:   actor,
			IsOwner: actor.ID == app.CandidateID,
		})
		if err != nil {
			return nil, err
		}

		now := nowUTC()
		iv := &models.Interview{
			ID:            uuid.New().String(),
			ApplicationID: app.ID,
			Type:          input.Type,
			ScheduledDate: input.ScheduledDate,
			Location:      input.Location,
			MeetingLink:   input.MeetingLink,
			Interviewers:  input.Interviewers,
			Status:        models.InterviewScheduled,
			Notes:         input.Notes,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO interviews (
				id, application_id, type, scheduled_date, location, meeting_link,
				interviewers, status, notes, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
			iv.ID, iv.ApplicationID, iv.Type, iv.ScheduledDate, iv.Location,
			iv.MeetingLink, pq.Array(iv.Interviewers), iv.Status, iv.Notes, now,
		)
		if err != nil {
			return nil, wferrors.NewStoreUnavailableError(err)
		}

		if err := e.updateApplicationStatus(ctx, tx, app.ID, newStatus, now); err != nil {
			return nil, err
		}

		if err := e.recorder.Record(ctx, tx, &models.HistoryEntry{
			ApplicationID: app.ID,
			Status:        newStatus,
			Action:        models.ActionScheduleInterview,
			PerformedBy:   actor.ID,
			Notes:         input.Notes,
			PerformedAt:   now,
		}); err != nil {
			return nil, err
		}

		created = iv
		candidateID = app.CandidateID

		return []models.Notification{{
			ID:            uuid.New().String(),
			RecipientID:   app.CandidateID,
			Type:          models.NotificationInterviewInvitation,
			Priority:      "high",
			Message:       fmt.Sprintf("You have been invited to a %s interview on %s", iv.Type, iv.ScheduledDate),
			Link:          "/interviews/" + iv.ID,
			Data: map[string]interface{}{
				"interviewId":   iv.ID,
				"interviewType": string(iv.Type),
				"scheduledDate": iv.ScheduledDate,
			},
			ApplicationID: app.ID,
			CreatedAt:     now,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	// Invalidate only after commit so a concurrent read cannot re-fill the
	// cache with pre-commit rows.
	e.invalidateUpcoming(ctx, candidateID)
	return created, nil
}

// UpdateInterviewStatus resolves an interview. completed and no_show feed
// back into the application's status; cancelled leaves the pipeline where it
// was. A terminal interview is never reopened.
func (e *Engine) UpdateInterviewStatus(ctx context.Context, interviewID string, newStatus models.InterviewStatus, notes string, actor models.Actor) error {
	switch newStatus {
	case models.InterviewCompleted, models.InterviewCancelled, models.InterviewNoShow:
	default:
		return wferrors.NewValidationFailedError(fmt.Sprintf("unknown interview status: %s", newStatus))
	}

	var candidateID string
	err := e.runInTx(ctx, models.ActionUpdateInterview, func(tx *sql.Tx) ([]models.Notification, error) {
		iv, err := e.loadInterviewForUpdate(ctx, tx, interviewID)
		if err != nil {
			return nil, err
		}
		if iv.Status.IsTerminal() {
			return nil, wferrors.NewIllegalTransitionError(string(iv.Status), models.ActionUpdateInterview.String())
		}

		// Re-read the owning application inside the same transaction so it
		// cannot reach a terminal status mid-operation.
		app, err := e.loadApplicationForUpdate(ctx, tx, iv.ApplicationID)
		if err != nil {
			return nil, err
		}

		if _, err := statemachine.Apply(statemachine.Request{
			Current: app.Status,
			Action:  models.ActionUpdateInterview,
			Actor:   actor,
			IsOwner: actor.ID == app.CandidateID,
		}); err != nil {
			return nil, err
		}

		now := nowUTC()
		_, err = tx.ExecContext(ctx, `
			UPDATE interviews SET status = $1, notes = $2, updated_at = $3 WHERE id = $4`,
			newStatus, notes, now, iv.ID)
		if err != nil {
			return nil, wferrors.NewStoreUnavailableError(err)
		}

		resulting := statemachine.InterviewOutcome(app.Status, newStatus)
		if resulting != app.Status {
			if err := e.updateApplicationStatus(ctx, tx, app.ID, resulting, now); err != nil {
				return nil, err
			}
		}

		if err := e.recorder.Record(ctx, tx, &models.HistoryEntry{
			ApplicationID: app.ID,
			Status:        resulting,
			Action:        models.ActionUpdateInterview,
			PerformedBy:   actor.ID,
			Notes:         notes,
			PerformedAt:   now,
		}); err != nil {
			return nil, err
		}

		candidateID = app.CandidateID

		if resulting == app.Status {
			return nil, nil
		}
		return []models.Notification{{
			ID:            uuid.New().String(),
			RecipientID:   app.CandidateID,
			Type:          models.NotificationStatusChanged,
			Priority:      "normal",
			Message:       fmt.Sprintf("Your application status changed to %s", resulting),
			Link:          "/applications/" + app.ID,
			Data:          map[string]interface{}{"status": resulting.String()},
			ApplicationID: app.ID,
			CreatedAt:     now,
		}}, nil
	})
	if err != nil {
		return err
	}
	e.invalidateUpcoming(ctx, candidateID)
	return nil
}

func (e *Engine) loadInterviewForUpdate(ctx context.Context, tx *sql.Tx, interviewID string) (*models.Interview, error) {
	var iv models.Interview
	var interviewers pq.StringArray
	err := tx.QueryRowContext(ctx, `
		SELECT id, application_id, type, scheduled_date, location, meeting_link,
		       interviewers, status, notes, created_at, updated_at
		FROM interviews
		WHERE id = $1
		FOR UPDATE`, interviewID).
		Scan(&iv.ID, &iv.ApplicationID, &iv.Type, &iv.ScheduledDate, &iv.Location,
			&iv.MeetingLink, &interviewers, &iv.Status, &iv.Notes, &iv.CreatedAt, &iv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, wferrors.NewNotFoundError("interview", interviewID)
		}
		return nil, wferrors.NewStoreUnavailableError(err)
	}
	iv.Interviewers = interviewers
	return &iv, nil
}
