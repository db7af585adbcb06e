// Package statemachine decides whether a requested workflow transition is
// legal and computes the resulting application status. It is a pure function
// over (current status, action, actor); all persistence happens elsewhere.
package statemachine

import (
	wferrors "hiring-workflow/internal/common/errors"
	"hiring-workflow/internal/models"
)

// Request carries everything the legality table needs to decide one transition.
type Request struct {
	Current models.ApplicationStatus
	Action  models.WorkflowAction
	// Target is the requested resulting status for status_change and
	// respond_to_offer actions; ignored for the others.
	Target models.ApplicationStatus
	Actor  models.Actor
	// IsOwner is true when the actor is the application's owning candidate.
	IsOwner bool
}

// statusChangeTargets is the closed set of statuses a direct status_change
// may request, with the guard each target requires.
var statusChangeTargets = map[models.ApplicationStatus]struct {
	hiringOnly bool
	ownerOnly  bool
}{
	models.StatusUnderReview: {hiringOnly: true},
	models.StatusRejected:    {hiringOnly: true},
	models.StatusHired:       {hiringOnly: true},
	models.StatusWithdrawn:   {ownerOnly: true},
}

// scheduleFrom lists the statuses from which an interview may be scheduled.
// interview_scheduled is included: later rounds re-affirm the same status.
var scheduleFrom = map[models.ApplicationStatus]bool{
	models.StatusApplied:            true,
	models.StatusUnderReview:        true,
	models.StatusInterviewScheduled: true,
}

// offerFrom lists the statuses from which an offer may be made.
// offer_made is included so a fresh offer can follow a negotiating response;
// the single-pending-offer invariant is enforced by the offer sub-workflow.
var offerFrom = map[models.ApplicationStatus]bool{
	models.StatusInterviewCompleted: true,
	models.StatusUnderReview:        true,
	models.StatusOfferMade:          true,
}

// Apply validates the requested transition and returns the resulting status.
// It never silently no-ops: an illegal transition is always an explicit error.
// Re-applying the current status is accepted; each call is a distinct human
// action worth recording.
func Apply(req Request) (models.ApplicationStatus, error) {
	if req.Current.IsTerminal() {
		return "", wferrors.NewIllegalTransitionError(req.Current.String(), req.Action.String())
	}

	switch req.Action {
	case models.ActionStatusChange:
		return applyStatusChange(req)

	case models.ActionScheduleInterview:
		if !req.Actor.Role.IsHiring() {
			return "", wferrors.NewForbiddenError("schedule_interview requires a hiring role")
		}
		if !scheduleFrom[req.Current] {
			return "", wferrors.NewIllegalTransitionError(req.Current.String(), req.Action.String())
		}
		return models.StatusInterviewScheduled, nil

	case models.ActionMakeOffer:
		if !req.Actor.Role.IsHiring() {
			return "", wferrors.NewForbiddenError("make_offer requires a hiring role")
		}
		if !offerFrom[req.Current] {
			return "", wferrors.NewIllegalTransitionError(req.Current.String(), req.Action.String())
		}
		return models.StatusOfferMade, nil

	case models.ActionUpdateInterview:
		// Resulting status is computed by the interview sub-workflow from the
		// interview outcome; the table only gates hiring role and liveness.
		if !req.Actor.Role.IsHiring() {
			return "", wferrors.NewForbiddenError("update_interview requires a hiring role")
		}
		return req.Current, nil

	case models.ActionRespondToOffer:
		if !req.IsOwner {
			return "", wferrors.NewForbiddenError("only the owning candidate may respond to an offer")
		}
		if req.Current != models.StatusOfferMade {
			return "", wferrors.NewIllegalTransitionError(req.Current.String(), req.Action.String())
		}
		return req.Target, nil

	default:
		return "", wferrors.NewIllegalTransitionError(req.Current.String(), req.Action.String())
	}
}

func applyStatusChange(req Request) (models.ApplicationStatus, error) {
	guard, ok := statusChangeTargets[req.Target]
	if !ok {
		return "", wferrors.NewIllegalTransitionError(req.Current.String(), "status_change:"+req.Target.String())
	}
	if guard.hiringOnly && !req.Actor.Role.IsHiring() {
		return "", wferrors.NewForbiddenError("status_change to " + req.Target.String() + " requires a hiring role")
	}
	if guard.ownerOnly && !req.IsOwner {
		return "", wferrors.NewForbiddenError("withdraw is restricted to the owning candidate")
	}
	return req.Target, nil
}

// InterviewOutcome maps a terminal interview status to the resulting
// application status. cancelled leaves the pipeline where it was.
func InterviewOutcome(current models.ApplicationStatus, interviewStatus models.InterviewStatus) models.ApplicationStatus {
	switch interviewStatus {
	case models.InterviewCompleted:
		return models.StatusInterviewCompleted
	case models.InterviewNoShow:
		return models.StatusCandidateNoShow
	default:
		return current
	}
}

// OfferOutcome maps a candidate response to the resulting application status.
// negotiating loops back to offer_made.
func OfferOutcome(response models.OfferStatus) models.ApplicationStatus {
	switch response {
	case models.OfferAccepted:
		return models.StatusOfferAccepted
	case models.OfferRejected:
		return models.StatusOfferRejected
	default:
		return models.StatusOfferMade
	}
}
