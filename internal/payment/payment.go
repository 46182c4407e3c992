// Package payment wraps the payment gateway. Only the mock implementation
// ships here; it honors the gateway contract (amount/currency/customer/card
// token in, receipt with a canned decline reason out).
package payment

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

const (
	StatusSucceeded = "succeeded"
	StatusDeclined  = "declined"
)

var ErrGateway = errors.New("payment: gateway error")

type ChargeRequest struct {
	AmountCents int64
	Currency    string
	CustomerRef string
	CardToken   string
	Method      string
}

type Receipt struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	DeclineReason string `json:"decline_reason,omitempty"`
}

type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*Receipt, error)
}

// Mock simulates the hosted gateway. Magic card tokens trigger the canned
// decline reasons; anything else succeeds.
type Mock struct {
	log *slog.Logger
}

func NewMock(logger *slog.Logger) *Mock {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mock{log: logger}
}

var declineReasons = map[string]string{
	"tok_insufficient_funds": "insufficient_funds",
	"tok_expired_card":       "expired_card",
	"tok_declined":           "card_declined",
	"tok_incorrect_cvc":      "incorrect_cvc",
}

func (m *Mock) Charge(ctx context.Context, req ChargeRequest) (*Receipt, error) {
	if req.AmountCents <= 0 {
		return nil, errors.New("payment: amount must be positive")
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	tok := strings.TrimSpace(req.CardToken)
	if tok == "tok_gateway_error" {
		return nil, ErrGateway
	}
	if reason, ok := declineReasons[tok]; ok {
		m.log.Info("charge declined", "customer", req.CustomerRef, "amount_cents", req.AmountCents, "reason", reason)
		return &Receipt{Status: StatusDeclined, DeclineReason: reason}, nil
	}

	txn := uuid.NewString()
	m.log.Info("charge succeeded", "customer", req.CustomerRef, "amount_cents", req.AmountCents, "currency", req.Currency, "txn", txn)
	return &Receipt{TransactionID: txn, Status: StatusSucceeded}, nil
}
