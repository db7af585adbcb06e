// internal/models/interview.go
package models

// InterviewType is the closed set of interview formats.
type InterviewType string

const (
	InterviewTypePhone     InterviewType = "phone"
	InterviewTypeVideo     InterviewType = "video"
	InterviewTypeInPerson  InterviewType = "in-person"
	InterviewTypeTechnical InterviewType = "technical"
	InterviewTypeFinal     InterviewType = "final"
)

func (t InterviewType) IsValid() bool {
	switch t {
	case InterviewTypePhone, InterviewTypeVideo, InterviewTypeInPerson,
		InterviewTypeTechnical, InterviewTypeFinal:
		return true
	default:
		return false
	}
}

// InterviewStatus is the closed set of interview states.
type InterviewStatus string

const (
	InterviewScheduled InterviewStatus = "scheduled"
	InterviewCompleted InterviewStatus = "completed"
	InterviewCancelled InterviewStatus = "cancelled"
	InterviewNoShow    InterviewStatus = "no_show"
)

func (s InterviewStatus) IsValid() bool {
	switch s {
	case InterviewScheduled, InterviewCompleted, InterviewCancelled, InterviewNoShow:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the interview can no longer change state.
// A new round is a new Interview row, never a reopened one.
func (s InterviewStatus) IsTerminal() bool {
	return s == InterviewCompleted || s == InterviewCancelled || s == InterviewNoShow
}

// Interview belongs to exactly one application; its terminal state drives
// the owning application's next status.
type Interview struct {
	ID            string          `json:"id"`
	ApplicationID string          `json:"applicationId"`
	Type          InterviewType   `json:"type"`
	ScheduledDate string          `json:"scheduledDate"`
	Location      string          `json:"location,omitempty"`
	MeetingLink   string          `json:"meetingLink,omitempty"`
	Interviewers  []string        `json:"interviewers"`
	Status        InterviewStatus `json:"status"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt"`
}
