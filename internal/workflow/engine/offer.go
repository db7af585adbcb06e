// internal/workflow/engine/offer.go
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
)

// MakeOfferInput carries the fields of an offer creation request.
type MakeOfferInput struct {
	ApplicationID string
	Salary        int
	StartDate     string
	Benefits      string
	Conditions    string
	Notes         string
}

// MakeOffer creates a pending offer and drives the application to
// offer_made. At most one pending offer may exist per application.
func (e *Engine) MakeOffer(ctx context.Context, input MakeOfferInput, actor models.Actor) (*models.Offer, error) {
	if input.Salary <= 0 {
		return nil, wferrors.NewValidationFailedError("salary must be positive")
	}
	if input.StartDate == "" {
		return nil, wferrors.NewValidationFailedError("startDate is required")
	}

	var created *models.Offer
	err := e.runInTx(ctx, models.ActionMakeOffer, func(tx *sql.Tx) ([]models.Notification, error) {
		app, err := e.loadApplicationForUpdate(ctx, tx, input.ApplicationID)
		if err != nil {
			return nil, err
		}

		newStatus, err := statemachine.Apply(statemachine.Request{
			Current: app.Status,
			Action:  models.ActionMakeOffer,
			Actor:   actor,
			IsOwner: actor.ID == app.CandidateID,
		})
		if err != nil {
			return nil, err
		}

		// One active offer at a time, regardless of caller role.
		var pending bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM offers
				WHERE application_id = $1 AND status = $2
			)`, app.ID, models.OfferPending).Scan(&pending)
		if err != nil {
			return nil, wferrors.NewStoreUnavailableError(err)
		}
		if pending {
			return nil, wferrors.NewConflictError(
				fmt.Sprintf("a pending offer already exists for application %s", app.ID))
		}

		now := nowUTC()
		offer := &models.Offer{
			ID:            uuid.New().String(),
			ApplicationID: app.ID,
			Salary:        input.Salary,
			StartDate:     input.StartDate,
			Benefits:      input.Benefits,
			Conditions:    input.Conditions,
			Status:        models.OfferPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO offers (
				id, application_id, salary, start_date, benefits, conditions,
				status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
			offer.ID, offer.ApplicationID, offer.Salary, offer.StartDate,
			offer.Benefits, offer.Conditions, offer.Status, now,
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
			Action:        models.ActionMakeOffer,
			PerformedBy:   actor.ID,
			Notes:         input.Notes,
			PerformedAt:   now,
		}); err != nil {
			return nil, err
		}

		created = offer

		return []models.Notification{{
			ID:            uuid.New().String(),
			RecipientID:   app.CandidateID,
			Type:          models.NotificationOfferMade,
			Priority:      "high",
			Message:       fmt.Sprintf("You have received an offer with a starting date of %s", offer.StartDate),
			Link:          "/offers/" + offer.ID,
			Data: map[string]interface{}{
				"offerId":   offer.ID,
				"salary":    offer.Salary,
				"startDate": offer.StartDate,
			},
			ApplicationID: app.ID,
			CreatedAt:     now,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RespondToOffer records the owning candidate's response. accepted and
// rejected are terminal for the offer; negotiating keeps both the offer and
// the application open (the application stays at offer_made).
func (e *Engine) RespondToOffer(ctx context.Context, offerID string, response models.OfferStatus, notes string, actor models.Actor) error {
	switch response {
	case models.OfferAccepted, models.OfferRejected, models.OfferNegotiating:
	default:
		return wferrors.NewValidationFailedError(fmt.Sprintf("unknown offer response: %s", response))
	}

	return e.runInTx(ctx, models.ActionRespondToOffer, func(tx *sql.Tx) ([]models.Notification, error) {
		offer, err := e.loadOfferForUpdate(ctx, tx, offerID)
		if err != nil {
			return nil, err
		}

		app, err := e.loadApplicationForUpdate(ctx, tx, offer.ApplicationID)
		if err != nil {
			return nil, err
		}

		if actor.ID != app.CandidateID {
			return nil, wferrors.NewForbiddenError("only the owning candidate may respond to an offer")
		}
		if !offer.Status.IsRespondable() {
			return nil, wferrors.NewIllegalTransitionError(string(offer.Status), models.ActionRespondToOffer.String())
		}

		newStatus, err := statemachine.Apply(statemachine.Request{
			Current: app.Status,
			Action:  models.ActionRespondToOffer,
			Target:  statemachine.OfferOutcome(response),
			Actor:   actor,
			IsOwner: true,
		})
		if err != nil {
			return nil, err
		}

		now := nowUTC()
		_, err = tx.ExecContext(ctx, `
			UPDATE offers SET status = $1, updated_at = $2 WHERE id = $3`,
			response, now, offer.ID)
		if err != nil {
			return nil, wferrors.NewStoreUnavailableError(err)
		}

		if err := e.updateApplicationStatus(ctx, tx, app.ID, newStatus, now); err != nil {
			return nil, err
		}

		if err := e.recorder.Record(ctx, tx, &models.HistoryEntry{
			ApplicationID: app.ID,
			Status:        newStatus,
			Action:        models.ActionRespondToOffer,
			PerformedBy:   actor.ID,
			Notes:         notes,
			PerformedAt:   now,
		}); err != nil {
			return nil, err
		}

		return nil, nil
	})
}

func (e *Engine) loadOfferForUpdate(ctx context.Context, tx *sql.Tx, offerID string) (*models.Offer, error) {
	var offer models.Offer
	err := tx.QueryRowContext(ctx, `
		SELECT id, application_id, salary, start_date, benefits, conditions,
		       status, created_at, updated_at
		FROM offers
		WHERE id = $1
		FOR UPDATE`, offerID).
		Scan(&offer.ID, &offer.ApplicationID, &offer.Salary, &offer.StartDate,
			&offer.Benefits, &offer.Conditions, &offer.Status, &offer.CreatedAt, &offer.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, wferrors.NewNotFoundError("offer", offerID)
		}
		return nil, wferrors.NewStoreUnavailableError(err)
	}
	return &offer, nil
}
