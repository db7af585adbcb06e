// internal/models/notification.go
package models

// Notification is the event handed to the dispatcher after a workflow
// action commits. Delivery is best-effort and never affects the action.
type Notification struct {
	ID            string                 `json:"id"`
	RecipientID   string                 `json:"recipientId"`
	Type          string                 `json:"type"`     // "interview_invitation", "offer_made", "status_changed"
	Priority      string                 `json:"priority"` // "normal", "high"
	Message       string                 `json:"message"`
	Link          string                 `json:"link,omitempty"`
	Data          map[string]interface{} `json:"data,omitempty"`
	ApplicationID string                 `json:"applicationId"`
	CreatedAt     string                 `json:"createdAt"`
}

const (
	NotificationInterviewInvitation = "interview_invitation"
	NotificationOfferMade           = "offer_made"
	NotificationStatusChanged       = "status_changed"
)
