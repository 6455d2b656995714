package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"spacebook/pkg/client"
)

type airtelProvider struct {
	http   *client.HttpClient
	apiKey string
}

func NewAirtel(httpClient *client.HttpClient, apiKey string) Provider {
	return &airtelProvider{
		http:   httpClient,
		apiKey: apiKey,
	}
}

func (p *airtelProvider) Name() string { return NameAirtel }

type airtelPayment struct {
	Reference   string            `json:"reference"`
	Subscriber  airtelSubscriber  `json:"subscriber"`
	Transaction airtelTransaction `json:"transaction"`
}

type airtelSubscriber struct {
	Country  string `json:"country"`
	Currency string `json:"currency"`
	MSISDN   string `json:"msisdn"`
}

type airtelTransaction struct {
	Amount   float64 `json:"amount"`
	Country  string  `json:"country"`
	Currency string  `json:"currency"`
	ID       string  `json:"id"`
}

func (p *airtelProvider) RequestToPay(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	body := airtelPayment{
		Reference: req.Note,
		Subscriber: airtelSubscriber{
			Country:  "UG",
			Currency: req.Currency,
			MSISDN:   req.Phone,
		},
		Transaction: airtelTransaction{
			Amount:   req.Amount,
			Country:  "UG",
			Currency: req.Currency,
			ID:       req.Reference,
		},
	}

	resp, err := p.http.POST(ctx, "/merchant/v1/payments/", body, p.headers())
	if err != nil {
		return nil, fmt.Errorf("airtel payment request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("airtel payment request rejected with status %d: %s", resp.StatusCode, resp.Body)
	}

	return &PaymentResponse{
		TransactionID: req.Reference,
		Status:        StatusPending,
	}, nil
}

func (p *airtelProvider) Status(ctx context.Context, transactionID string) (*StatusResponse, error) {
	resp, err := p.http.GET(ctx, "/standard/v1/payments/"+transactionID, p.headers())
	if err != nil {
		return nil, fmt.Errorf("airtel status poll failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("airtel status poll rejected with status %d: %s", resp.StatusCode, resp.Body)
	}

	var payload struct {
		Data struct {
			Transaction struct {
				Status string `json:"status"`
				ID     string `json:"id"`
			} `json:"transaction"`
		} `json:"data"`
	}
	if err := resp.DecodeJSON(&payload); err != nil {
		return nil, fmt.Errorf("airtel status response malformed: %w", err)
	}

	return &StatusResponse{
		Status:        normalizeAirtelStatus(payload.Data.Transaction.Status),
		TransactionID: transactionID,
	}, nil
}

// Airtel reports TS/TF/TIP where MTN reports full words; both map onto
// the shared status constants.
func normalizeAirtelStatus(s string) string {
	switch strings.ToUpper(s) {
	case "TS", StatusSuccessful:
		return StatusSuccessful
	case "TF", StatusFailed:
		return StatusFailed
	default:
		return StatusPending
	}
}

func (p *airtelProvider) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + p.apiKey,
		"X-Country":     "UG",
		"X-Currency":    "UGX",
	}
}
