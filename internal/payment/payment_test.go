package payment

import (
	"context"
	"errors"
	"testing"
)

func TestChargeSucceeds(t *testing.T) {
	m := NewMock(nil)
	r, err := m.Charge(context.Background(), ChargeRequest{
		AmountCents: 1250,
		CustomerRef: "user-1",
		CardToken:   "tok_visa",
		Method:      "card",
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.Status != StatusSucceeded {
		t.Fatalf("status = %q, want %q", r.Status, StatusSucceeded)
	}
	if r.TransactionID == "" {
		t.Fatal("successful charge must carry a transaction id")
	}
	if r.DeclineReason != "" {
		t.Fatalf("unexpected decline reason %q", r.DeclineReason)
	}
}

func TestChargeDeclineReasons(t *testing.T) {
	cases := []struct {
		token  string
		reason string
	}{
		{"tok_insufficient_funds", "insufficient_funds"},
		{"tok_expired_card", "expired_card"},
		{"tok_declined", "card_declined"},
		{"tok_incorrect_cvc", "incorrect_cvc"},
	}
	m := NewMock(nil)
	for _, tc := range cases {
		t.Run(tc.token, func(t *testing.T) {
			r, err := m.Charge(context.Background(), ChargeRequest{
				AmountCents: 500,
				CardToken:   tc.token,
			})
			if err != nil {
				t.Fatal(err)
			}
			if r.Status != StatusDeclined {
				t.Fatalf("status = %q, want %q", r.Status, StatusDeclined)
			}
			if r.DeclineReason != tc.reason {
				t.Fatalf("reason = %q, want %q", r.DeclineReason, tc.reason)
			}
			if r.TransactionID != "" {
				t.Fatal("declined charge should not carry a transaction id")
			}
		})
	}
}

func TestChargeGatewayError(t *testing.T) {
	m := NewMock(nil)
	_, err := m.Charge(context.Background(), ChargeRequest{
		AmountCents: 500,
		CardToken:   "tok_gateway_error",
	})
	if !errors.Is(err, ErrGateway) {
		t.Fatalf("err = %v, want ErrGateway", err)
	}
}

func TestChargeRejectsNonPositiveAmount(t *testing.T) {
	m := NewMock(nil)
	for _, amt := range []int64{0, -100} {
		if _, err := m.Charge(context.Background(), ChargeRequest{AmountCents: amt, CardToken: "tok_visa"}); err == nil {
			t.Errorf("amount %d should be rejected", amt)
		}
	}
}
