package provider

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"spacebook/pkg/client"
)

// mtnProvider speaks the MTN MoMo collection API. Amounts go over the
// wire as strings per the MoMo contract.
type mtnProvider struct {
	http   *client.HttpClient
	apiKey string
	env    string
}

func NewMTN(httpClient *client.HttpClient, apiKey string) Provider {
	return &mtnProvider{
		http:   httpClient,
		apiKey: apiKey,
		env:    "sandbox",
	}
}

func (p *mtnProvider) Name() string { return NameMTN }

type mtnRequestToPay struct {
	Amount     string   `json:"amount"`
	Currency   string   `json:"currency"`
	ExternalID string   `json:"externalId"`
	Payer      mtnPayer `json:"payer"`
	PayerNote  string   `json:"payerMessage"`
}

type mtnPayer struct {
	PartyIDType string `json:"partyIdType"`
	PartyID     string `json:"partyId"`
}

func (p *mtnProvider) RequestToPay(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	referenceID := uuid.New().String()

	body := mtnRequestToPay{
		Amount:     strconv.FormatFloat(req.Amount, 'f', -1, 64),
		Currency:   req.Currency,
		ExternalID: req.Reference,
		Payer: mtnPayer{
			PartyIDType: "MSISDN",
			PartyID:     req.Phone,
		},
		PayerNote: req.Note,
	}

	resp, err := p.http.POST(ctx, "/collection/v1_0/requesttopay", body, p.headers(referenceID))
	if err != nil {
		return nil, fmt.Errorf("mtn request to pay failed: %w", err)
	}
	if resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("mtn request to pay rejected with status %d: %s", resp.StatusCode, resp.Body)
	}

	return &PaymentResponse{
		TransactionID: referenceID,
		Status:        StatusPending,
	}, nil
}

func (p *mtnProvider) Status(ctx context.Context, transactionID string) (*StatusResponse, error) {
	resp, err := p.http.GET(ctx, "/collection/v1_0/requesttopay/"+transactionID, p.headers(""))
	if err != nil {
		return nil, fmt.Errorf("mtn status poll failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mtn status poll rejected with status %d: %s", resp.StatusCode, resp.Body)
	}

	var payload struct {
		Status                 string `json:"status"`
		FinancialTransactionID string `json:"financialTransactionId"`
	}
	if err := resp.DecodeJSON(&payload); err != nil {
		return nil, fmt.Errorf("mtn status response malformed: %w", err)
	}

	return &StatusResponse{
		Status:        payload.Status,
		TransactionID: transactionID,
	}, nil
}

func (p *mtnProvider) headers(referenceID string) map[string]string {
	headers := map[string]string{
		"Ocp-Apim-Subscription-Key": p.apiKey,
		"X-Target-Environment":      p.env,
	}
	if referenceID != "" {
		headers["X-Reference-Id"] = referenceID
	}
	return headers
}
