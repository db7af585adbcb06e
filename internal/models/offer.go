// internal/models/offer.go
package models

// OfferStatus is the closed set of offer states.
type OfferStatus string

const (
	OfferPending     OfferStatus = "pending"
	OfferAccepted    OfferStatus = "accepted"
	OfferRejected    OfferStatus = "rejected"
	OfferNegotiating OfferStatus = "negotiating"
)

func (s OfferStatus) IsValid() bool {
	switch s {
	case OfferPending, OfferAccepted, OfferRejected, OfferNegotiating:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the offer accepts no further responses.
func (s OfferStatus) IsTerminal() bool {
	return s == OfferAccepted || s == OfferRejected
}

// IsRespondable reports whether a candidate response is still accepted.
func (s OfferStatus) IsRespondable() bool {
	return s == OfferPending || s == OfferNegotiating
}

// Offer belongs to exactly one application. At most one pending offer
// may exist per application at a time.
type Offer struct {
	ID            string      `json:"id"`
	ApplicationID string      `json:"applicationId"`
	Salary        int         `json:"salary"`
	StartDate     string      `json:"startDate"`
	Benefits      string      `json:"benefits,omitempty"`
	Conditions    string      `json:"conditions,omitempty"`
	Status        OfferStatus `json:"status"`
	CreatedAt     string      `json:"createdAt"`
	UpdatedAt     string      `json:"updatedAt"`
}
