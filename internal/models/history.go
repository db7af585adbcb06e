// internal/models/history.go
package models

// WorkflowAction names the workflow operation that produced a history entry.
type WorkflowAction string

const (
	ActionStatusChange      WorkflowAction = "status_change"
	ActionScheduleInterview WorkflowAction = "schedule_interview"
	ActionUpdateInterview   WorkflowAction = "update_interview"
	ActionMakeOffer         WorkflowAction = "make_offer"
	ActionRespondToOffer    WorkflowAction = "respond_to_offer"
)

func (a WorkflowAction) IsValid() bool {
	switch a {
	case ActionStatusChange, ActionScheduleInterview, ActionUpdateInterview,
		ActionMakeOffer, ActionRespondToOffer:
		return true
	default:
		return false
	}
}

func (a WorkflowAction) String() string {
	return string(a)
}

// HistoryEntry is one immutable record in an application's workflow ledger.
// Entries are never updated or deleted; ordering by PerformedAt (ties broken
// by ID) defines the canonical transition history.
type HistoryEntry struct {
	ID              string            `json:"id"`
	ApplicationID   string            `json:"applicationId"`
	Status          ApplicationStatus `json:"status"`
	Action          WorkflowAction    `json:"action"`
	PerformedBy     string            `json:"performedBy"`
	PerformedByName string            `json:"performedByName,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	PerformedAt     string            `json:"performedAt"`
}
