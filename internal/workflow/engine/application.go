// internal/workflow/engine/application.go
package engine

import (
	"context"
	"database/sql"
	"fmt"

	wferrors "hiring-workflow/internal/common/errors"
	"hiring-workflow/internal/models"
	"hiring-workflow/internal/workflow/statemachine"

	"github.com/google/uuid"
)

// ChangeStatus applies a direct status change (under_review, rejected, hired
// by a hiring actor; withdrawn by the owning candidate) and returns the
// updated application.
func (e *Engine) ChangeStatus(ctx context.Context, applicationID string, target models.ApplicationStatus, notes string, actor models.Actor) (*models.Application, error) {
	if !target.IsValid() {
		return nil, wferrors.NewValidationFailedError(fmt.Sprintf("unknown status: %s", target))
	}

	var updated *models.Application
	err := e.runInTx(ctx, models.ActionStatusChange, func(tx *sql.Tx) ([]models.Notification, error) {
		app, err := e.loadApplicationForUpdate(ctx, tx, applicationID)
		if err != nil {
			return nil, err
		}

		newStatus, err := statemachine.Apply(statemachine.Request{
			Current: app.Status,
			Action:  models.ActionStatusChange,
			Target:  target,
			Actor:   actor,
			IsOwner: actor.ID == app.CandidateID,
		})
		if err != nil {
			return nil, err
		}

		now := nowUTC()
		if err := e.updateApplicationStatus(ctx, tx, app.ID, newStatus, now); err != nil {
			return nil, err
		}

		if err := e.recorder.Record(ctx, tx, &models.HistoryEntry{
			ApplicationID: app.ID,
			Status:        newStatus,
			Action:        models.ActionStatusChange,
			PerformedBy:   actor.ID,
			Notes:         notes,
			PerformedAt:   now,
		}); err != nil {
			return nil, err
		}

		app.Status = newStatus
		app.UpdatedAt = now
		updated = app

		return []models.Notification{{
			ID:            uuid.New().String(),
			RecipientID:   app.CandidateID,
			Type:          models.NotificationStatusChanged,
			Priority:      "normal",
			Message:       fmt.Sprintf("Your application status changed to %s", newStatus),
			Link:          "/applications/" + app.ID,
			Data:          map[string]interface{}{"status": newStatus.String()},
			ApplicationID: app.ID,
			CreatedAt:     now,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// History returns the application's ledger, newest first.
func (e *Engine) History(ctx context.Context, applicationID string) ([]models.HistoryEntry, error) {
	var exists bool
	err := e.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM applications WHERE id = $1)`, applicationID).Scan(&exists)
	if err != nil {
		return nil, wferrors.NewStoreUnavailableError(err)
	}
	if !exists {
		return nil, wferrors.NewNotFoundError("application", applicationID)
	}

	return e.recorder.History(ctx, e.db, applicationID)
}
