package models

import "time"

// RequestStatus tracks one coach-selection negotiation attempt.
type RequestStatus string

const (
	RequestPending              RequestStatus = "pending"
	RequestAccepted             RequestStatus = "accepted"
	RequestAlternativeSuggested RequestStatus = "alternative_suggested"
	RequestAwaitingPayment      RequestStatus = "awaiting_payment"
	RequestCompleted            RequestStatus = "completed"
	RequestDeclined             RequestStatus = "declined"
)

func (s RequestStatus) Terminal() bool {
	return s == RequestCompleted || s == RequestDeclined
}

// Live reports whether the request still blocks creation of a new one for
// the same pair.
func (s RequestStatus) Live() bool {
	return !s.Terminal()
}

// SelectionRequest is a client's proposal to purchase one trainer package.
// The package fields always describe the single current package: accepting a
// suggested alternative overwrites them.
type SelectionRequest struct {
	ID              int64         `json:"id"`
	ClientID        int64         `json:"client_id"`
	TrainerID       int64         `json:"trainer_id"`
	PackageID       int64         `json:"package_id"`
	PackageName     string        `json:"package_name"`
	PackagePrice    float64       `json:"package_price"`
	PackageDuration int           `json:"package_duration_weeks"`
	ClientMessage   *string       `json:"client_message,omitempty"`
	Status          RequestStatus `json:"status"`

	SuggestedPackageID       *int64   `json:"suggested_package_id,omitempty"`
	SuggestedPackageName     *string  `json:"suggested_package_name,omitempty"`
	SuggestedPackagePrice    *float64 `json:"suggested_package_price,omitempty"`
	SuggestedPackageDuration *int     `json:"suggested_package_duration_weeks,omitempty"`
	TrainerResponse          *string  `json:"trainer_response,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Payment struct {
	ID               int64     `json:"id"`
	RequestID        int64     `json:"request_id"`
	ClientID         int64     `json:"client_id"`
	TrainerID        int64     `json:"trainer_id"`
	Amount           float64   `json:"amount"`
	Status           string    `json:"status"`
	CheckoutSession  *string   `json:"checkout_session,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// SelectionDetail bundles a request with its payment record, if any.
type SelectionDetail struct {
	SelectionRequest
	Payment     *Payment `json:"payment,omitempty"`
	CheckoutURL string   `json:"checkout_url,omitempty"`
}
