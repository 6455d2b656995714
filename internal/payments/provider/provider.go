// Package provider wraps the mobile money collection APIs. Each
// provider exposes the same two calls: request-to-pay and a status
// poll keyed on the reference we generated at initiation.
package provider

import "context"

// Provider-reported transaction states.
const (
	StatusPending    = "PENDING"
	StatusSuccessful = "SUCCESSFUL"
	StatusFailed     = "FAILED"
)

const (
	NameMTN    = "mtn"
	NameAirtel = "airtel"
)

type PaymentRequest struct {
	// Reference is our idempotency key for the collection, echoed back
	// on status polls.
	Reference string
	Amount    float64
	Currency  string
	// Phone is the payer MSISDN without a leading plus (256XXXXXXXXX).
	Phone string
	Note  string
}

type PaymentResponse struct {
	TransactionID string
	Status        string
}

type StatusResponse struct {
	Status        string
	TransactionID string
}

type Provider interface {
	Name() string
	RequestToPay(ctx context.Context, req PaymentRequest) (*PaymentResponse, error)
	Status(ctx context.Context, reference string) (*StatusResponse, error)
}
