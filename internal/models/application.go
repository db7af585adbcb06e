// internal/models/application.go
package models

// ApplicationStatus is the closed set of statuses an application can hold.
type ApplicationStatus string

const (
	StatusApplied            ApplicationStatus = "applied"
	StatusUnderReview        ApplicationStatus = "under_review"
	StatusInterviewScheduled ApplicationStatus = "interview_scheduled"
	StatusInterviewCompleted ApplicationStatus = "interview_completed"
	StatusCandidateNoShow    ApplicationStatus = "candidate_no_show"
	StatusOfferMade          ApplicationStatus = "offer_made"
	StatusOfferAccepted      ApplicationStatus = "offer_accepted"
	StatusOfferRejected      ApplicationStatus = "offer_rejected"
	StatusHired              ApplicationStatus = "hired"
	StatusRejected           ApplicationStatus = "rejected"
	StatusWithdrawn          ApplicationStatus = "withdrawn"
)

// IsValid checks whether the status is a member of the closed set.
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case StatusApplied, StatusUnderReview, StatusInterviewScheduled,
		StatusInterviewCompleted, StatusCandidateNoShow, StatusOfferMade,
		StatusOfferAccepted, StatusOfferRejected, StatusHired,
		StatusRejected, StatusWithdrawn:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is permitted.
func (s ApplicationStatus) IsTerminal() bool {
	switch s {
	case StatusHired, StatusRejected, StatusWithdrawn, StatusOfferRejected:
		return true
	default:
		return false
	}
}

func (s ApplicationStatus) String() string {
	return string(s)
}

// Application is the root aggregate: one candidate's submission to one job.
type Application struct {
	ID          string            `json:"id"`
	CandidateID string            `json:"candidateId"`
	JobID       string            `json:"jobId"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   string            `json:"createdAt"`
	UpdatedAt   string            `json:"updatedAt"`
}
